package engine

import "errors"

// Transition errors. Every error is detected before any state mutation; a
// failed instruction commits nothing.
var (
	// ErrInvalidParameters rejects malformed create inputs (zero stake,
	// unordered deadlines, fee shares not summing to 10000 bps).
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrRecordAlreadyExists rejects creating a duel whose derived address
	// is already occupied.
	ErrRecordAlreadyExists = errors.New("record already exists")

	// ErrRecordNotFound is returned when the addressed record does not exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnauthorized rejects a caller acting in a role they do not hold.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDepositWindowClosed rejects deposits at or after the deposit deadline.
	ErrDepositWindowClosed = errors.New("deposit window closed")

	// ErrCrowdWindowClosed rejects support at or after the crowd deadline.
	ErrCrowdWindowClosed = errors.New("crowd window closed")

	// ErrResolveWindowNotOpen rejects winner declaration before the
	// resolve time, arbiter or not.
	ErrResolveWindowNotOpen = errors.New("resolve window not open")

	// ErrDepositsIncomplete rejects transitions that need both principals
	// escrowed first.
	ErrDepositsIncomplete = errors.New("deposits incomplete")

	// ErrDuelNotOpen rejects mutations of a resolved or cancelled duel.
	ErrDuelNotOpen = errors.New("duel not open")

	// ErrDuelNotResolved rejects payouts before a winner is declared.
	ErrDuelNotResolved = errors.New("duel not resolved")

	// ErrAlreadyDeposited rejects a second stake deposit by the same challenger.
	ErrAlreadyDeposited = errors.New("already deposited")

	// ErrAlreadyWithdrawn rejects a second principal withdrawal.
	ErrAlreadyWithdrawn = errors.New("already withdrawn")

	// ErrAlreadyClaimed rejects a second claim on the same support position.
	ErrAlreadyClaimed = errors.New("already claimed")

	// ErrWrongSide rejects a claim on a losing-side position; the support
	// is forfeit and redistributed to winning-side backers.
	ErrWrongSide = errors.New("wrong side")

	// ErrInvalidAmount rejects zero support, or support so small the
	// post-fee net amount is zero.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNothingToWithdraw rejects spread withdrawal when all sub-pools
	// are zero.
	ErrNothingToWithdraw = errors.New("nothing to withdraw")

	// ErrTreasuryMismatch rejects a spread withdrawal naming a treasury
	// other than the one recorded on the duel.
	ErrTreasuryMismatch = errors.New("treasury mismatch")

	// ErrArithmeticOverflow rejects any computation that would leave the
	// unsigned 64-bit range instead of wrapping.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
)
