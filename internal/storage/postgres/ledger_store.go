package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
// Optimistic versioning: updates carry `WHERE version = $expected` and a
// zero row count means the record moved (or never existed).
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

const duelColumns = `
	address, challenger_a, challenger_b, arbiter,
	stake_lamports, deposited_a, deposited_b,
	deadline_deposit, deadline_crowd, resolve_not_before,
	crowd_pool_a, crowd_pool_b,
	spread_pool_creators, spread_pool_arbiter, spread_pool_protocol,
	spread_bps, creator_share_bps, arbiter_share_bps, protocol_share_bps,
	status, winner_side, treasury, bump,
	principal_withdrawn, escrow_lamports, version, created_at
`

// CreateDuel inserts a new duel with version 1.
func (s *LedgerStore) CreateDuel(ctx context.Context, d *domain.Duel) error {
	if d == nil || d.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO duels (` + duelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	d.Version = 1
	_, err := s.pool.Exec(ctx, query, duelArgs(d)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert duel: %w", err)
	}
	return nil
}

// GetDuel retrieves a duel by address.
func (s *LedgerStore) GetDuel(ctx context.Context, addr domain.Identity) (*domain.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE address = $1`

	row := s.pool.QueryRow(ctx, query, addr[:])
	d, err := scanDuel(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get duel: %w", err)
	}
	return d, nil
}

// UpdateDuel commits a mutated duel read at expectedVersion.
func (s *LedgerStore) UpdateDuel(ctx context.Context, d *domain.Duel, expectedVersion uint64) error {
	if d == nil || d.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, updateDuelQuery, updateDuelArgs(d, expectedVersion)...)
	if err != nil {
		return fmt.Errorf("update duel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.duelConflict(ctx, d.Address)
	}
	d.Version = expectedVersion + 1
	return nil
}

const updateDuelQuery = `
	UPDATE duels SET
		deposited_a = $2, deposited_b = $3,
		crowd_pool_a = $4, crowd_pool_b = $5,
		spread_pool_creators = $6, spread_pool_arbiter = $7, spread_pool_protocol = $8,
		status = $9, winner_side = $10,
		principal_withdrawn = $11, escrow_lamports = $12,
		version = version + 1
	WHERE address = $1 AND version = $13
`

func updateDuelArgs(d *domain.Duel, expectedVersion uint64) []any {
	return []any{
		d.Address[:],
		d.DepositedA, d.DepositedB,
		int64(d.CrowdPoolA), int64(d.CrowdPoolB),
		int64(d.SpreadPoolCreators), int64(d.SpreadPoolArbiter), int64(d.SpreadPoolProtocol),
		int16(d.Status), winnerArg(d.WinnerSide),
		d.PrincipalWithdrawn, int64(d.EscrowLamports),
		int64(expectedVersion),
	}
}

// duelConflict distinguishes a missing record from a stale version.
func (s *LedgerStore) duelConflict(ctx context.Context, addr domain.Identity) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM duels WHERE address = $1)`, addr[:]).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duel existence: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrVersionConflict
}

const supportColumns = `
	address, duel, backer, side, net_amount, claimed, bump, version, created_at
`

// GetSupport retrieves a support position by address.
func (s *LedgerStore) GetSupport(ctx context.Context, addr domain.Identity) (*domain.SupportPosition, error) {
	query := `SELECT ` + supportColumns + ` FROM support_positions WHERE address = $1`

	row := s.pool.QueryRow(ctx, query, addr[:])
	p, err := scanSupport(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get support position: %w", err)
	}
	return p, nil
}

// ListSupportsByDuel retrieves all positions for a duel, oldest first.
func (s *LedgerStore) ListSupportsByDuel(ctx context.Context, duel domain.Identity) ([]*domain.SupportPosition, error) {
	query := `
		SELECT ` + supportColumns + `
		FROM support_positions
		WHERE duel = $1
		ORDER BY created_at ASC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, duel[:])
	if err != nil {
		return nil, fmt.Errorf("list support positions: %w", err)
	}
	defer rows.Close()

	var result []*domain.SupportPosition
	for rows.Next() {
		p, err := scanSupport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan support position: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate support positions: %w", err)
	}
	return result, nil
}

// UpdateDuelAndSupport atomically commits a duel mutation and a support
// insert/update in one transaction.
func (s *LedgerStore) UpdateDuelAndSupport(ctx context.Context, d *domain.Duel, expectedDuelVersion uint64,
	p *domain.SupportPosition, expectedSupportVersion uint64) error {
	if d == nil || p == nil || d.Address.IsZero() || p.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, updateDuelQuery, updateDuelArgs(d, expectedDuelVersion)...)
	if err != nil {
		return fmt.Errorf("update duel in tx: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.duelConflict(ctx, d.Address)
	}

	if expectedSupportVersion == 0 {
		query := `
			INSERT INTO support_positions (` + supportColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err = tx.Exec(ctx, query,
			p.Address[:], p.Duel[:], p.Backer[:], int16(p.Side),
			int64(p.NetAmount), p.Claimed, int16(p.Bump), int64(1), p.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert support position: %w", err)
		}
	} else {
		query := `
			UPDATE support_positions SET
				net_amount = $2, claimed = $3, version = version + 1
			WHERE address = $1 AND version = $4
		`
		tag, err := tx.Exec(ctx, query,
			p.Address[:], int64(p.NetAmount), p.Claimed, int64(expectedSupportVersion),
		)
		if err != nil {
			return fmt.Errorf("update support position: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrVersionConflict
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	d.Version = expectedDuelVersion + 1
	p.Version = expectedSupportVersion + 1
	return nil
}

func duelArgs(d *domain.Duel) []any {
	return []any{
		d.Address[:], d.ChallengerA[:], d.ChallengerB[:], d.Arbiter[:],
		int64(d.StakeLamports), d.DepositedA, d.DepositedB,
		d.DeadlineDeposit, d.DeadlineCrowd, d.ResolveNotBefore,
		int64(d.CrowdPoolA), int64(d.CrowdPoolB),
		int64(d.SpreadPoolCreators), int64(d.SpreadPoolArbiter), int64(d.SpreadPoolProtocol),
		int32(d.SpreadBps), int32(d.CreatorShareBps), int32(d.ArbiterShareBps), int32(d.ProtocolShareBps),
		int16(d.Status), winnerArg(d.WinnerSide), d.Treasury[:], int16(d.Bump),
		d.PrincipalWithdrawn, int64(d.EscrowLamports), int64(d.Version), d.CreatedAt,
	}
}

func winnerArg(w *domain.Side) any {
	if w == nil {
		return nil
	}
	return int16(*w)
}

// scanDuel reads a duel row in duelColumns order.
func scanDuel(row pgx.Row) (*domain.Duel, error) {
	var (
		d                                                 domain.Duel
		address, challengerA, challengerB, arbiter        []byte
		treasury                                          []byte
		stake, poolA, poolB, spC, spA, spP, escrow, ver   int64
		spreadBps, creatorBps, arbiterBps, protocolBps    int32
		status, bump                                      int16
		winner                                            *int16
	)

	err := row.Scan(
		&address, &challengerA, &challengerB, &arbiter,
		&stake, &d.DepositedA, &d.DepositedB,
		&d.DeadlineDeposit, &d.DeadlineCrowd, &d.ResolveNotBefore,
		&poolA, &poolB,
		&spC, &spA, &spP,
		&spreadBps, &creatorBps, &arbiterBps, &protocolBps,
		&status, &winner, &treasury, &bump,
		&d.PrincipalWithdrawn, &escrow, &ver, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	copy(d.Address[:], address)
	copy(d.ChallengerA[:], challengerA)
	copy(d.ChallengerB[:], challengerB)
	copy(d.Arbiter[:], arbiter)
	copy(d.Treasury[:], treasury)
	d.StakeLamports = uint64(stake)
	d.CrowdPoolA = uint64(poolA)
	d.CrowdPoolB = uint64(poolB)
	d.SpreadPoolCreators = uint64(spC)
	d.SpreadPoolArbiter = uint64(spA)
	d.SpreadPoolProtocol = uint64(spP)
	d.SpreadBps = uint16(spreadBps)
	d.CreatorShareBps = uint16(creatorBps)
	d.ArbiterShareBps = uint16(arbiterBps)
	d.ProtocolShareBps = uint16(protocolBps)
	d.Status = domain.DuelStatus(status)
	d.Bump = uint8(bump)
	d.EscrowLamports = uint64(escrow)
	d.Version = uint64(ver)
	if winner != nil {
		side := domain.Side(*winner)
		d.WinnerSide = &side
	}
	return &d, nil
}

// scanSupport reads a support row in supportColumns order.
func scanSupport(row pgx.Row) (*domain.SupportPosition, error) {
	var (
		p              domain.SupportPosition
		address, duel  []byte
		backer         []byte
		side, bump     int16
		net, ver       int64
	)

	err := row.Scan(&address, &duel, &backer, &side, &net, &p.Claimed, &bump, &ver, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	copy(p.Address[:], address)
	copy(p.Duel[:], duel)
	copy(p.Backer[:], backer)
	p.Side = domain.Side(side)
	p.NetAmount = uint64(net)
	p.Bump = uint8(bump)
	p.Version = uint64(ver)
	return &p, nil
}
