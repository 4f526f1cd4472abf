package memory

import (
	"context"
	"sync"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events []*domain.LedgerEvent
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Insert appends one committed ledger event.
func (s *EventStore) Insert(_ context.Context, e *domain.LedgerEvent) error {
	if e == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := *e
	s.events = append(s.events, &c)
	return nil
}

// ListByDuel retrieves events for a duel in insertion order.
func (s *EventStore) ListByDuel(_ context.Context, duel domain.Identity, limit int) ([]*domain.LedgerEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LedgerEvent
	for _, e := range s.events {
		if e.Duel != duel {
			continue
		}
		c := *e
		result = append(result, &c)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
