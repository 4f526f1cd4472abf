// Package codec defines the byte-exact wire layout of ledger records and
// the deterministic instruction selectors. Field order and widths match
// the records already stored by the deployed program; changing them breaks
// interop with every existing record.
package codec

import "crypto/sha256"

// SelectorLen is the width of instruction selectors and account
// discriminators.
const SelectorLen = 8

// Instruction names, hashed under the "global:" namespace.
const (
	InstrCreate            = "create_bet"
	InstrDeposit           = "deposit_participant"
	InstrSupport           = "support_bet"
	InstrDeclareWinner     = "declare_winner"
	InstrWithdrawPrincipal = "withdraw_principal"
	InstrClaimSupport      = "claim_support"
	InstrWithdrawSpread    = "withdraw_spread"
)

// Account names, hashed under the "account:" namespace.
const (
	accountDuel    = "Bet"
	accountSupport = "SupportPosition"
)

// Selector returns the 8-byte selector for a namespaced name, e.g.
// Selector("global", "create_bet").
func Selector(namespace, name string) [SelectorLen]byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var sel [SelectorLen]byte
	copy(sel[:], sum[:SelectorLen])
	return sel
}

// InstructionSelector returns the selector for one of the seven operations.
func InstructionSelector(name string) [SelectorLen]byte {
	return Selector("global", name)
}

var (
	duelDiscriminator    = Selector("account", accountDuel)
	supportDiscriminator = Selector("account", accountSupport)
)

// DuelDiscriminator returns the duel record discriminator.
func DuelDiscriminator() [SelectorLen]byte { return duelDiscriminator }

// SupportDiscriminator returns the support record discriminator.
func SupportDiscriminator() [SelectorLen]byte { return supportDiscriminator }
