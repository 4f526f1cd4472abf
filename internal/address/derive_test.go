package address

import (
	"testing"

	"github.com/stretchr/testify/require"

	"duel-crowd-bets/internal/domain"
)

func ident(b byte) domain.Identity {
	var id domain.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

func TestDuel_Deterministic(t *testing.T) {
	arbiter := ident(1)
	a := ident(2)
	b := ident(3)

	addr1, bump1, err := Duel(arbiter, a, b)
	require.NoError(t, err)

	addr2, bump2, err := Duel(arbiter, a, b)
	require.NoError(t, err)

	require.Equal(t, addr1, addr2, "same tuple must derive the same address")
	require.Equal(t, bump1, bump2)
	require.False(t, addr1.IsZero())
}

func TestDuel_DistinctTuples(t *testing.T) {
	arbiter := ident(1)
	a := ident(2)
	b := ident(3)

	base, _, err := Duel(arbiter, a, b)
	require.NoError(t, err)

	// Swapping challenger order is a different tuple.
	swapped, _, err := Duel(arbiter, b, a)
	require.NoError(t, err)
	require.NotEqual(t, base, swapped)

	// A different arbiter over the same challengers is a different duel.
	other, _, err := Duel(ident(9), a, b)
	require.NoError(t, err)
	require.NotEqual(t, base, other)
}

func TestDuel_OffCurve(t *testing.T) {
	addr, _, err := Duel(ident(4), ident(5), ident(6))
	require.NoError(t, err)
	require.False(t, isOnCurve(addr[:]), "derived address must not have a private key")
}

func TestSupport_Deterministic(t *testing.T) {
	duelAddr, _, err := Duel(ident(1), ident(2), ident(3))
	require.NoError(t, err)

	backer := ident(7)

	addrA1, _, err := Support(duelAddr, backer, domain.SideA)
	require.NoError(t, err)
	addrA2, _, err := Support(duelAddr, backer, domain.SideA)
	require.NoError(t, err)
	require.Equal(t, addrA1, addrA2)

	// Same backer, other side: separate record.
	addrB, _, err := Support(duelAddr, backer, domain.SideB)
	require.NoError(t, err)
	require.NotEqual(t, addrA1, addrB)

	// Different backer, same side: separate record.
	addrOther, _, err := Support(duelAddr, ident(8), domain.SideA)
	require.NoError(t, err)
	require.NotEqual(t, addrA1, addrOther)
}

func TestSupport_DistinctFromDuelAddress(t *testing.T) {
	duelAddr, _, err := Duel(ident(1), ident(2), ident(3))
	require.NoError(t, err)

	supportAddr, _, err := Support(duelAddr, ident(2), domain.SideA)
	require.NoError(t, err)
	require.NotEqual(t, duelAddr, supportAddr)
}
