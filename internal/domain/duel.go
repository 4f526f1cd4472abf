package domain

// Duel is the escrow record for one 1-vs-1 wager.
// Corresponds to the duels table in PostgreSQL; the byte layout used for
// interop lives in internal/codec.
type Duel struct {
	Address Identity // derived record address

	ChallengerA Identity
	ChallengerB Identity
	Arbiter     Identity

	// Principal stake, in lamports. Each challenger must deposit exactly
	// StakeLamports before the deposit deadline.
	StakeLamports uint64
	DepositedA    bool
	DepositedB    bool

	// Unix timestamps (seconds).
	DeadlineDeposit  int64 // deposits accepted strictly before this
	DeadlineCrowd    int64 // crowd support accepted strictly before this
	ResolveNotBefore int64 // arbiter may declare a winner from this moment

	// Net (post-fee) crowd support per side.
	CrowdPoolA uint64
	CrowdPoolB uint64

	// Accumulated, unpaid spread fee shares.
	SpreadPoolCreators uint64
	SpreadPoolArbiter  uint64
	SpreadPoolProtocol uint64

	// Fee configuration in basis points. CreatorShareBps + ArbiterShareBps +
	// ProtocolShareBps == 10000.
	SpreadBps        uint16
	CreatorShareBps  uint16
	ArbiterShareBps  uint16
	ProtocolShareBps uint16

	Status     DuelStatus
	WinnerSide *Side // set iff Status == StatusResolved

	Treasury Identity
	Bump     uint8

	// PrincipalWithdrawn guards withdraw_principal re-entry.
	PrincipalWithdrawn bool

	// EscrowLamports is the total value currently held by the record:
	// every deposit, support and payout moves through it. It backs the
	// value-conservation invariant.
	EscrowLamports uint64

	// Version supports optimistic concurrency in storage. Zero for a
	// record that has never been committed.
	Version uint64

	CreatedAt int64 // record creation timestamp (s)
}

// CrowdPool returns the net pool for the given side.
func (d *Duel) CrowdPool(side Side) uint64 {
	if side == SideA {
		return d.CrowdPoolA
	}
	return d.CrowdPoolB
}

// Deposited reports whether the challenger on the given side has posted stake.
func (d *Duel) Deposited(side Side) bool {
	if side == SideA {
		return d.DepositedA
	}
	return d.DepositedB
}

// BothDeposited reports whether both challengers have posted stake.
func (d *Duel) BothDeposited() bool {
	return d.DepositedA && d.DepositedB
}

// Challenger returns the challenger identity for the given side.
func (d *Duel) Challenger(side Side) Identity {
	if side == SideA {
		return d.ChallengerA
	}
	return d.ChallengerB
}

// SpreadTotal returns the sum of the unpaid fee sub-pools.
func (d *Duel) SpreadTotal() uint64 {
	return d.SpreadPoolCreators + d.SpreadPoolArbiter + d.SpreadPoolProtocol
}

// Clone returns a deep copy.
func (d *Duel) Clone() *Duel {
	c := *d
	if d.WinnerSide != nil {
		w := *d.WinnerSide
		c.WinnerSide = &w
	}
	return &c
}
