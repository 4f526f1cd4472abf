package clickhouse

import (
	"context"
	"fmt"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse. The history is
// append-only; MergeTree needs no uniqueness and the ledger itself is the
// system of record.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// sideColumn encodes the optional side: -1 when not applicable.
func sideColumn(s *domain.Side) int8 {
	if s == nil {
		return -1
	}
	return int8(*s)
}

// Insert appends one committed ledger event.
func (s *EventStore) Insert(ctx context.Context, e *domain.LedgerEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO ledger_events (
			duel, actor, kind, side, amount, net_amount, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		e.Duel.String(), e.Actor.String(), string(e.Kind),
		sideColumn(e.Side), e.Amount, e.NetAmount, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert ledger event: %w", err)
	}
	return nil
}

// ListByDuel retrieves events for a duel, oldest first.
func (s *EventStore) ListByDuel(ctx context.Context, duel domain.Identity, limit int) ([]*domain.LedgerEvent, error) {
	query := `
		SELECT duel, actor, kind, side, amount, net_amount, timestamp
		FROM ledger_events
		WHERE duel = ?
		ORDER BY timestamp ASC
	`
	args := []any{duel.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger events: %w", err)
	}
	defer rows.Close()

	var result []*domain.LedgerEvent
	for rows.Next() {
		var (
			duelStr, actorStr, kind string
			side                    int8
			e                       domain.LedgerEvent
		)
		if err := rows.Scan(&duelStr, &actorStr, &kind, &side, &e.Amount, &e.NetAmount, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan ledger event: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		if e.Duel, err = domain.ParseIdentity(duelStr); err != nil {
			return nil, fmt.Errorf("parse event duel: %w", err)
		}
		if e.Actor, err = domain.ParseIdentity(actorStr); err != nil {
			return nil, fmt.Errorf("parse event actor: %w", err)
		}
		if side >= 0 {
			s := domain.Side(side)
			e.Side = &s
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger events: %w", err)
	}
	return result, nil
}
