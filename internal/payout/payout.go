// Package payout holds the pure fee and payout arithmetic. Everything is
// integer basis-point math with explicit floor division; intermediates that
// can exceed 64 bits go through math/bits. Results are bit-exact and must
// stay that way: stored records and claims depend on reproducing them.
package payout

import (
	"errors"
	"math/bits"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// ErrOverflow is returned when a computation would exceed the uint64 range.
var ErrOverflow = errors.New("arithmetic overflow")

// FeeSplit is the three-way division of one spread fee.
type FeeSplit struct {
	Creators uint64
	Arbiter  uint64
	Protocol uint64
}

// SpreadFee computes fee = floor(gross * spreadBps / 10000) and the net
// amount credited to the crowd pool.
func SpreadFee(gross uint64, spreadBps uint16) (fee, net uint64, err error) {
	fee, err = mulDivFloor(gross, uint64(spreadBps), BpsDenominator)
	if err != nil {
		return 0, 0, err
	}
	return fee, gross - fee, nil
}

// SplitSpreadFee divides fee between creators, arbiter and protocol.
// Creator and arbiter shares floor; the protocol takes the remainder, so the
// three always sum exactly to fee.
func SplitSpreadFee(fee uint64, creatorShareBps, arbiterShareBps uint16) (FeeSplit, error) {
	creators, err := mulDivFloor(fee, uint64(creatorShareBps), BpsDenominator)
	if err != nil {
		return FeeSplit{}, err
	}
	arbiter, err := mulDivFloor(fee, uint64(arbiterShareBps), BpsDenominator)
	if err != nil {
		return FeeSplit{}, err
	}
	return FeeSplit{
		Creators: creators,
		Arbiter:  arbiter,
		Protocol: fee - creators - arbiter,
	}, nil
}

// SplitCreators divides the creators' sub-pool evenly between the two
// challengers, remainder to challenger A.
func SplitCreators(pool uint64) (a, b uint64) {
	b = pool / 2
	return pool - b, b
}

// ClaimPayout computes a winning backer's payout: their net stake back plus
// a pro-rata share of the losing pool,
//
//	net + floor(net * losingPool / winningPool)
//
// A zero winning pool means no winning positions exist; the degenerate
// zero-share result keeps the formula total (the losing pool stays in
// escrow rather than dividing by zero).
func ClaimPayout(net, winningPool, losingPool uint64) (uint64, error) {
	if winningPool == 0 {
		return net, nil
	}
	if net > winningPool {
		// A position can never exceed the pool it is part of.
		return 0, ErrOverflow
	}
	share, err := mulDivFloor(net, losingPool, winningPool)
	if err != nil {
		return 0, err
	}
	return addChecked(net, share)
}

// mulDivFloor computes floor(a * b / div) with a 128-bit intermediate.
func mulDivFloor(a, b, div uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi >= div {
		// Quotient would not fit in 64 bits.
		return 0, ErrOverflow
	}
	q, _ := bits.Div64(hi, lo, div)
	return q, nil
}

// AddChecked adds two uint64 values, rejecting wraparound.
func AddChecked(a, b uint64) (uint64, error) {
	return addChecked(a, b)
}

func addChecked(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// MulChecked multiplies two uint64 values, rejecting wraparound.
func MulChecked(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}
