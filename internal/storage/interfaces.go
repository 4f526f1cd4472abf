package storage

import (
	"context"

	"duel-crowd-bets/internal/domain"
)

// LedgerStore persists duel and support records. Commits are atomic and
// guarded by optimistic versioning: an update names the version it read and
// fails with ErrVersionConflict if the record moved underneath it. Two
// conflicting transitions against the same duel therefore cannot both
// commit; one is rejected and must be retried by its caller.
type LedgerStore interface {
	// CreateDuel inserts a new duel at its derived address with version 1.
	// Returns ErrDuplicateKey if the address is already occupied.
	CreateDuel(ctx context.Context, d *domain.Duel) error

	// GetDuel retrieves a duel by address. Returns ErrNotFound if not exists.
	GetDuel(ctx context.Context, addr domain.Identity) (*domain.Duel, error)

	// UpdateDuel commits a mutated duel read at expectedVersion. On success
	// the stored (and passed) version is expectedVersion+1.
	UpdateDuel(ctx context.Context, d *domain.Duel, expectedVersion uint64) error

	// GetSupport retrieves a support position by address. Returns
	// ErrNotFound if not exists.
	GetSupport(ctx context.Context, addr domain.Identity) (*domain.SupportPosition, error)

	// ListSupportsByDuel retrieves all support positions for a duel,
	// ordered by creation time then address.
	ListSupportsByDuel(ctx context.Context, duel domain.Identity) ([]*domain.SupportPosition, error)

	// UpdateDuelAndSupport atomically commits a duel mutation together with
	// an insert (expectedSupportVersion == 0) or update of one support
	// position. Either both commit or neither does.
	UpdateDuelAndSupport(ctx context.Context, d *domain.Duel, expectedDuelVersion uint64,
		p *domain.SupportPosition, expectedSupportVersion uint64) error
}

// EventStore persists the append-only instruction event history.
type EventStore interface {
	// Insert appends one committed ledger event.
	Insert(ctx context.Context, e *domain.LedgerEvent) error

	// ListByDuel retrieves events for a duel, oldest first.
	ListByDuel(ctx context.Context, duel domain.Identity, limit int) ([]*domain.LedgerEvent, error)
}
