package domain

// SupportPosition records one backer's crowd wager on one side of a duel.
// Exactly one position exists per (duel, backer, side); repeated support on
// the same side accumulates into NetAmount.
type SupportPosition struct {
	Address Identity // derived record address

	Duel   Identity // the duel this position belongs to
	Backer Identity
	Side   Side

	// NetAmount is the post-fee amount credited to the side's crowd pool.
	NetAmount uint64
	Claimed   bool

	Bump uint8

	// Version supports optimistic concurrency in storage.
	Version uint64

	CreatedAt int64 // record creation timestamp (s)
}

// Clone returns a copy.
func (p *SupportPosition) Clone() *SupportPosition {
	c := *p
	return &c
}
