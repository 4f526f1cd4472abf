package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/storage"
)

func ident(b byte) domain.Identity {
	var id domain.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func testDuel(addr byte) *domain.Duel {
	return &domain.Duel{
		Address:          ident(addr),
		ChallengerA:      ident(1),
		ChallengerB:      ident(2),
		Arbiter:          ident(3),
		StakeLamports:    1_000_000,
		DeadlineDeposit:  100,
		DeadlineCrowd:    200,
		ResolveNotBefore: 300,
		SpreadBps:        200,
		CreatorShareBps:  5000,
		ArbiterShareBps:  2000,
		ProtocolShareBps: 3000,
		Status:           domain.StatusOpen,
		Treasury:         ident(4),
	}
}

func TestCreateDuel_AndGet(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	d := testDuel(10)
	require.NoError(t, s.CreateDuel(ctx, d))
	require.Equal(t, uint64(1), d.Version)

	got, err := s.GetDuel(ctx, d.Address)
	require.NoError(t, err)
	require.Equal(t, d, got)

	// Stored copy is independent of the caller's struct.
	d.CrowdPoolA = 999
	again, err := s.GetDuel(ctx, d.Address)
	require.NoError(t, err)
	require.Zero(t, again.CrowdPoolA)
}

func TestCreateDuel_Duplicate(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	require.NoError(t, s.CreateDuel(ctx, testDuel(10)))
	err := s.CreateDuel(ctx, testDuel(10))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestGetDuel_NotFound(t *testing.T) {
	s := NewLedgerStore()
	_, err := s.GetDuel(context.Background(), ident(99))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateDuel_VersionConflict(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	d := testDuel(10)
	require.NoError(t, s.CreateDuel(ctx, d))

	// Two readers at version 1; only the first commit wins.
	first := d.Clone()
	first.DepositedA = true
	require.NoError(t, s.UpdateDuel(ctx, first, 1))
	require.Equal(t, uint64(2), first.Version)

	second := d.Clone()
	second.DepositedB = true
	err := s.UpdateDuel(ctx, second, 1)
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	got, err := s.GetDuel(ctx, d.Address)
	require.NoError(t, err)
	require.True(t, got.DepositedA)
	require.False(t, got.DepositedB)
}

func TestUpdateDuel_NotFound(t *testing.T) {
	s := NewLedgerStore()
	err := s.UpdateDuel(context.Background(), testDuel(10), 1)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateDuelAndSupport_InsertAndAccumulate(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	d := testDuel(10)
	require.NoError(t, s.CreateDuel(ctx, d))

	p := &domain.SupportPosition{
		Address:   ident(20),
		Duel:      d.Address,
		Backer:    ident(5),
		Side:      domain.SideA,
		NetAmount: 490_000,
	}
	mutated := d.Clone()
	mutated.CrowdPoolA = 490_000
	require.NoError(t, s.UpdateDuelAndSupport(ctx, mutated, 1, p, 0))
	require.Equal(t, uint64(1), p.Version)

	got, err := s.GetSupport(ctx, p.Address)
	require.NoError(t, err)
	require.Equal(t, p, got)

	// Accumulate into the existing position.
	p2 := got.Clone()
	p2.NetAmount += 490_000
	mutated2 := mutated.Clone()
	mutated2.CrowdPoolA += 490_000
	require.NoError(t, s.UpdateDuelAndSupport(ctx, mutated2, 2, p2, 1))

	got2, err := s.GetSupport(ctx, p.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(980_000), got2.NetAmount)
	require.Equal(t, uint64(2), got2.Version)
}

func TestUpdateDuelAndSupport_AllOrNothing(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	d := testDuel(10)
	require.NoError(t, s.CreateDuel(ctx, d))

	p := &domain.SupportPosition{Address: ident(20), Duel: d.Address, Backer: ident(5), NetAmount: 1}
	mutated := d.Clone()
	mutated.CrowdPoolA = 1

	// Stale duel version: neither record must change.
	err := s.UpdateDuelAndSupport(ctx, mutated, 7, p, 0)
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	_, err = s.GetSupport(ctx, p.Address)
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := s.GetDuel(ctx, d.Address)
	require.NoError(t, err)
	require.Zero(t, got.CrowdPoolA)
}

func TestUpdateDuelAndSupport_DuplicateInsert(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	d := testDuel(10)
	require.NoError(t, s.CreateDuel(ctx, d))

	p := &domain.SupportPosition{Address: ident(20), Duel: d.Address, Backer: ident(5), NetAmount: 1}
	require.NoError(t, s.UpdateDuelAndSupport(ctx, d.Clone(), 1, p, 0))

	// Inserting again at the same address must fail before the duel moves.
	err := s.UpdateDuelAndSupport(ctx, d.Clone(), 2, p.Clone(), 0)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestListSupportsByDuel_Ordering(t *testing.T) {
	s := NewLedgerStore()
	ctx := context.Background()

	d := testDuel(10)
	require.NoError(t, s.CreateDuel(ctx, d))

	version := uint64(1)
	for i, created := range []int64{30, 10, 20} {
		p := &domain.SupportPosition{
			Address:   ident(byte(40 + i)),
			Duel:      d.Address,
			Backer:    ident(byte(50 + i)),
			Side:      domain.SideA,
			NetAmount: 1,
			CreatedAt: created,
		}
		require.NoError(t, s.UpdateDuelAndSupport(ctx, d.Clone(), version, p, 0))
		version++
		d.Version = version
	}

	list, err := s.ListSupportsByDuel(ctx, d.Address)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, int64(10), list[0].CreatedAt)
	require.Equal(t, int64(20), list[1].CreatedAt)
	require.Equal(t, int64(30), list[2].CreatedAt)

	other, err := s.ListSupportsByDuel(ctx, ident(99))
	require.NoError(t, err)
	require.Empty(t, other)
}
