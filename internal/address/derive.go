// Package address computes deterministic, collision-resistant record
// addresses from the parties that define a record. Any party can recompute
// an address offline; no registry is involved.
package address

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"duel-crowd-bets/internal/domain"
)

// ProgramID is the protocol's own identity; it domain-separates derived
// addresses from those of unrelated protocols.
const ProgramID = "5iRExHjkQzwidM7EwCu8eVpeBAPnJ8qVuHi3y7gZbaeX"

// Seed prefixes per record kind.
const (
	seedDuel    = "bet"
	seedSupport = "support"
)

// derivedAddressTag terminates the hash input; it keeps derived addresses
// from colliding with hashes computed for any other purpose.
const derivedAddressTag = "ProgramDerivedAddress"

// ErrNoValidBump is returned if no bump in [0,255] yields an off-curve
// address. Probability is negligible (~(1/2)^256) but the search is finite.
var ErrNoValidBump = errors.New("no valid bump seed found")

var programID = mustProgramID()

func mustProgramID() domain.Identity {
	raw, err := base58.Decode(ProgramID)
	if err != nil || len(raw) != domain.IdentityLen {
		panic("address: invalid program id constant")
	}
	var id domain.Identity
	copy(id[:], raw)
	return id
}

// Duel derives the duel record address for (arbiter, challengerA,
// challengerB), together with the bump seed that produced it.
func Duel(arbiter, challengerA, challengerB domain.Identity) (domain.Identity, uint8, error) {
	return derive([][]byte{
		[]byte(seedDuel),
		arbiter[:],
		challengerA[:],
		challengerB[:],
	})
}

// Support derives the support record address for (duel, backer, side).
func Support(duel, backer domain.Identity, side domain.Side) (domain.Identity, uint8, error) {
	return derive([][]byte{
		[]byte(seedSupport),
		duel[:],
		backer[:],
		{byte(side)},
	})
}

// derive searches bump seeds from 255 downwards for the first hash image
// that is not a valid ed25519 curve point, so the address provably has no
// private key and can only be controlled by the protocol.
func derive(seeds [][]byte) (domain.Identity, uint8, error) {
	for i := 0; i <= 255; i++ {
		bump := uint8(255 - i)

		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID[:]...)
		data = append(data, []byte(derivedAddressTag)...)

		hash := sha256.Sum256(data)
		if !isOnCurve(hash[:]) {
			var addr domain.Identity
			copy(addr[:], hash[:])
			return addr, bump, nil
		}
	}
	return domain.Identity{}, 0, ErrNoValidBump
}

func isOnCurve(point []byte) bool {
	if len(point) != domain.IdentityLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
