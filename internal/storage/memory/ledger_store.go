package memory

import (
	"context"
	"sort"
	"sync"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
// All records are deep-copied on the way in and out.
type LedgerStore struct {
	mu       sync.RWMutex
	duels    map[domain.Identity]*domain.Duel
	supports map[domain.Identity]*domain.SupportPosition
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		duels:    make(map[domain.Identity]*domain.Duel),
		supports: make(map[domain.Identity]*domain.SupportPosition),
	}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// CreateDuel inserts a new duel with version 1. Returns ErrDuplicateKey if
// the address is already occupied.
func (s *LedgerStore) CreateDuel(_ context.Context, d *domain.Duel) error {
	if d == nil || d.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.duels[d.Address]; exists {
		return storage.ErrDuplicateKey
	}

	d.Version = 1
	s.duels[d.Address] = d.Clone()
	return nil
}

// GetDuel retrieves a duel by address.
func (s *LedgerStore) GetDuel(_ context.Context, addr domain.Identity) (*domain.Duel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.duels[addr]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d.Clone(), nil
}

// UpdateDuel commits a mutated duel read at expectedVersion.
func (s *LedgerStore) UpdateDuel(_ context.Context, d *domain.Duel, expectedVersion uint64) error {
	if d == nil || d.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateDuelLocked(d, expectedVersion)
}

func (s *LedgerStore) updateDuelLocked(d *domain.Duel, expectedVersion uint64) error {
	current, ok := s.duels[d.Address]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Version != expectedVersion {
		return storage.ErrVersionConflict
	}

	d.Version = expectedVersion + 1
	s.duels[d.Address] = d.Clone()
	return nil
}

// GetSupport retrieves a support position by address.
func (s *LedgerStore) GetSupport(_ context.Context, addr domain.Identity) (*domain.SupportPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.supports[addr]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p.Clone(), nil
}

// ListSupportsByDuel retrieves all positions for a duel, ordered by creation
// time then address.
func (s *LedgerStore) ListSupportsByDuel(_ context.Context, duel domain.Identity) ([]*domain.SupportPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SupportPosition
	for _, p := range s.supports {
		if p.Duel == duel {
			result = append(result, p.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return lessIdentity(result[i].Address, result[j].Address)
	})
	return result, nil
}

// UpdateDuelAndSupport atomically commits a duel mutation and a support
// insert/update.
func (s *LedgerStore) UpdateDuelAndSupport(_ context.Context, d *domain.Duel, expectedDuelVersion uint64,
	p *domain.SupportPosition, expectedSupportVersion uint64) error {
	if d == nil || p == nil || d.Address.IsZero() || p.Address.IsZero() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the support commit before touching the duel so the pair
	// stays all-or-nothing.
	current, exists := s.supports[p.Address]
	if expectedSupportVersion == 0 {
		if exists {
			return storage.ErrDuplicateKey
		}
	} else {
		if !exists {
			return storage.ErrNotFound
		}
		if current.Version != expectedSupportVersion {
			return storage.ErrVersionConflict
		}
	}

	if err := s.updateDuelLocked(d, expectedDuelVersion); err != nil {
		return err
	}

	p.Version = expectedSupportVersion + 1
	s.supports[p.Address] = p.Clone()
	return nil
}

func lessIdentity(a, b domain.Identity) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
