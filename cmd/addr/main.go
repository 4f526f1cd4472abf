// Package main derives ledger record addresses and instruction selectors
// without touching any store. Useful for cross-checking clients and for
// seeding test fixtures.
package main

import (
	"flag"
	"fmt"
	"os"

	"duel-crowd-bets/internal/address"
	"duel-crowd-bets/internal/codec"
	"duel-crowd-bets/internal/domain"
)

func main() {
	// Parse flags
	arbiter := flag.String("arbiter", "", "Arbiter identity (base58)")
	challengerA := flag.String("challenger-a", "", "Challenger A identity (base58)")
	challengerB := flag.String("challenger-b", "", "Challenger B identity (base58)")
	duel := flag.String("duel", "", "Duel address (base58), for support derivation")
	backer := flag.String("backer", "", "Backer identity (base58), for support derivation")
	side := flag.String("side", "", "Side (A or B), for support derivation")
	selectors := flag.Bool("selectors", false, "Print instruction selectors and record discriminators")
	flag.Parse()

	if *selectors {
		printSelectors()
		return
	}

	switch {
	case *duel != "" || *backer != "" || *side != "":
		deriveSupport(*duel, *backer, *side)
	case *arbiter != "" || *challengerA != "" || *challengerB != "":
		deriveDuel(*arbiter, *challengerA, *challengerB)
	default:
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  addr --arbiter X --challenger-a Y --challenger-b Z")
		fmt.Fprintln(os.Stderr, "  addr --duel D --backer B --side A|B")
		fmt.Fprintln(os.Stderr, "  addr --selectors")
		os.Exit(2)
	}
}

func deriveDuel(arbiter, challengerA, challengerB string) {
	arb := mustIdentity("arbiter", arbiter)
	a := mustIdentity("challenger-a", challengerA)
	b := mustIdentity("challenger-b", challengerB)

	addr, bump, err := address.Duel(arb, a, b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving duel address: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("duel address: %s\n", addr)
	fmt.Printf("bump:         %d\n", bump)
}

func deriveSupport(duel, backer, side string) {
	d := mustIdentity("duel", duel)
	b := mustIdentity("backer", backer)
	s, ok := domain.ParseSide(side)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: --side must be A or B")
		os.Exit(1)
	}

	addr, bump, err := address.Support(d, b, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving support address: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("support address: %s\n", addr)
	fmt.Printf("bump:            %d\n", bump)
}

func printSelectors() {
	names := []string{
		codec.InstrCreate,
		codec.InstrDeposit,
		codec.InstrSupport,
		codec.InstrDeclareWinner,
		codec.InstrWithdrawPrincipal,
		codec.InstrClaimSupport,
		codec.InstrWithdrawSpread,
	}
	for _, name := range names {
		sel := codec.InstructionSelector(name)
		fmt.Printf("%-20s %x\n", name, sel)
	}
	fmt.Printf("%-20s %x\n", "account:duel", codec.DuelDiscriminator())
	fmt.Printf("%-20s %x\n", "account:support", codec.SupportDiscriminator())
}

func mustIdentity(field, raw string) domain.Identity {
	if raw == "" {
		fmt.Fprintf(os.Stderr, "Error: --%s is required\n", field)
		os.Exit(1)
	}
	id, err := domain.ParseIdentity(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing --%s: %v\n", field, err)
		os.Exit(1)
	}
	return id
}
