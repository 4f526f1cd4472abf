package domain

// EventKind names a committed ledger transition.
type EventKind string

const (
	EventDuelCreated        EventKind = "DuelCreated"
	EventStakeDeposited     EventKind = "StakeDeposited"
	EventSupportPlaced      EventKind = "SupportPlaced"
	EventWinnerDeclared     EventKind = "WinnerDeclared"
	EventPrincipalWithdrawn EventKind = "PrincipalWithdrawn"
	EventSupportClaimed     EventKind = "SupportClaimed"
	EventSpreadWithdrawn    EventKind = "SpreadWithdrawn"
)

// LedgerEvent is emitted after a transition commits. Amount fields are only
// meaningful for the kinds that move value; Side is meaningful for
// SupportPlaced, WinnerDeclared and SupportClaimed.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	Duel      Identity  `json:"duel"`
	Actor     Identity  `json:"actor"`
	Side      *Side     `json:"side,omitempty"`
	Amount    uint64    `json:"amount"`    // gross value moved by the transition
	NetAmount uint64    `json:"netAmount"` // post-fee value, SupportPlaced only
	Timestamp int64     `json:"timestamp"` // ledger time at commit (s)
}
