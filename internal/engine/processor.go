// Package engine validates and applies ledger transitions. Each instruction
// is a wait-free read of the addressed records followed by a single atomic
// commit; serialization per duel comes from the store's optimistic
// versioning, and a conflicting writer gets storage.ErrVersionConflict to
// retry. The engine itself performs no retries, no logging and no waiting.
package engine

import (
	"context"
	"errors"
	"fmt"

	"duel-crowd-bets/internal/address"
	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/payout"
	"duel-crowd-bets/internal/storage"
)

// EventSink receives events for transitions that committed. Publishing is
// best-effort and happens after the commit; a sink must not block.
type EventSink interface {
	Publish(ctx context.Context, e domain.LedgerEvent)
}

type nopSink struct{}

func (nopSink) Publish(context.Context, domain.LedgerEvent) {}

// Processor applies the seven ledger instructions.
type Processor struct {
	store storage.LedgerStore
	clock Clock
	sink  EventSink
}

// NewProcessor creates a Processor. A nil sink discards events.
func NewProcessor(store storage.LedgerStore, clock Clock, sink EventSink) *Processor {
	if sink == nil {
		sink = nopSink{}
	}
	return &Processor{store: store, clock: clock, sink: sink}
}

// CreateParams are the create_bet instruction arguments. ChallengerA is the
// paying creator.
type CreateParams struct {
	ChallengerA domain.Identity
	ChallengerB domain.Identity
	Arbiter     domain.Identity
	Treasury    domain.Identity

	StakeLamports uint64

	DeadlineDeposit  int64
	DeadlineCrowd    int64
	ResolveNotBefore int64

	SpreadBps        uint16
	CreatorShareBps  uint16
	ArbiterShareBps  uint16
	ProtocolShareBps uint16
}

// Create allocates a new duel record at its derived address.
func (p *Processor) Create(ctx context.Context, params CreateParams) (*domain.Duel, error) {
	now := p.clock.Now()

	if params.StakeLamports == 0 {
		return nil, fmt.Errorf("%w: stake must be positive", ErrInvalidParameters)
	}
	if params.ChallengerA.IsZero() || params.ChallengerB.IsZero() ||
		params.Arbiter.IsZero() || params.Treasury.IsZero() {
		return nil, fmt.Errorf("%w: zero identity", ErrInvalidParameters)
	}
	if params.DeadlineDeposit <= now {
		return nil, fmt.Errorf("%w: deposit deadline not in the future", ErrInvalidParameters)
	}
	if !(params.DeadlineDeposit < params.DeadlineCrowd && params.DeadlineCrowd < params.ResolveNotBefore) {
		return nil, fmt.Errorf("%w: deadlines must be strictly increasing", ErrInvalidParameters)
	}
	if params.SpreadBps > payout.BpsDenominator {
		return nil, fmt.Errorf("%w: spread %d bps exceeds 10000", ErrInvalidParameters, params.SpreadBps)
	}
	shareSum := int(params.CreatorShareBps) + int(params.ArbiterShareBps) + int(params.ProtocolShareBps)
	if shareSum != payout.BpsDenominator {
		return nil, fmt.Errorf("%w: fee shares sum to %d bps, want 10000", ErrInvalidParameters, shareSum)
	}

	addr, bump, err := address.Duel(params.Arbiter, params.ChallengerA, params.ChallengerB)
	if err != nil {
		return nil, fmt.Errorf("derive duel address: %w", err)
	}

	d := &domain.Duel{
		Address:          addr,
		ChallengerA:      params.ChallengerA,
		ChallengerB:      params.ChallengerB,
		Arbiter:          params.Arbiter,
		StakeLamports:    params.StakeLamports,
		DeadlineDeposit:  params.DeadlineDeposit,
		DeadlineCrowd:    params.DeadlineCrowd,
		ResolveNotBefore: params.ResolveNotBefore,
		SpreadBps:        params.SpreadBps,
		CreatorShareBps:  params.CreatorShareBps,
		ArbiterShareBps:  params.ArbiterShareBps,
		ProtocolShareBps: params.ProtocolShareBps,
		Status:           domain.StatusOpen,
		Treasury:         params.Treasury,
		Bump:             bump,
		CreatedAt:        now,
	}

	if err := p.store.CreateDuel(ctx, d); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: duel %s", ErrRecordAlreadyExists, addr)
		}
		return nil, fmt.Errorf("create duel: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventDuelCreated,
		Duel:      addr,
		Actor:     params.ChallengerA,
		Amount:    params.StakeLamports,
		Timestamp: now,
	})
	return d.Clone(), nil
}

// DepositParams are the deposit_participant instruction arguments.
type DepositParams struct {
	Caller domain.Identity
	Duel   domain.Identity
}

// DepositResult reports the escrowed stake.
type DepositResult struct {
	Amount uint64
	Side   domain.Side
}

// Deposit escrows one challenger's stake.
func (p *Processor) Deposit(ctx context.Context, params DepositParams) (*DepositResult, error) {
	d, err := p.getDuel(ctx, params.Duel)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()

	if d.Status != domain.StatusOpen {
		return nil, fmt.Errorf("%w: status %s", ErrDuelNotOpen, d.Status)
	}

	var side domain.Side
	switch params.Caller {
	case d.ChallengerA:
		side = domain.SideA
	case d.ChallengerB:
		side = domain.SideB
	default:
		return nil, fmt.Errorf("%w: caller is not a challenger", ErrUnauthorized)
	}

	if d.Deposited(side) {
		return nil, ErrAlreadyDeposited
	}
	if now >= d.DeadlineDeposit {
		return nil, ErrDepositWindowClosed
	}

	escrow, err := payout.AddChecked(d.EscrowLamports, d.StakeLamports)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}

	version := d.Version
	if side == domain.SideA {
		d.DepositedA = true
	} else {
		d.DepositedB = true
	}
	d.EscrowLamports = escrow

	if err := p.store.UpdateDuel(ctx, d, version); err != nil {
		return nil, fmt.Errorf("commit deposit: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventStakeDeposited,
		Duel:      d.Address,
		Actor:     params.Caller,
		Side:      &side,
		Amount:    d.StakeLamports,
		Timestamp: now,
	})
	return &DepositResult{Amount: d.StakeLamports, Side: side}, nil
}

// SupportParams are the support_bet instruction arguments. GrossAmount is
// the full amount the backer transfers; the spread fee comes out of it.
type SupportParams struct {
	Backer      domain.Identity
	Duel        domain.Identity
	Side        domain.Side
	GrossAmount uint64
}

// SupportResult reports the fee taken and the net credit.
type SupportResult struct {
	Fee      uint64
	Net      uint64
	Position *domain.SupportPosition
}

// Support places a crowd wager on one side.
func (p *Processor) Support(ctx context.Context, params SupportParams) (*SupportResult, error) {
	if !params.Side.IsValid() {
		return nil, fmt.Errorf("%w: invalid side", ErrInvalidParameters)
	}
	d, err := p.getDuel(ctx, params.Duel)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()

	if d.Status != domain.StatusOpen {
		return nil, fmt.Errorf("%w: status %s", ErrDuelNotOpen, d.Status)
	}
	if !d.BothDeposited() {
		return nil, ErrDepositsIncomplete
	}
	if now >= d.DeadlineCrowd {
		return nil, ErrCrowdWindowClosed
	}
	if params.GrossAmount == 0 {
		return nil, fmt.Errorf("%w: gross amount is zero", ErrInvalidAmount)
	}

	fee, net, err := payout.SpreadFee(params.GrossAmount, d.SpreadBps)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	if net == 0 {
		return nil, fmt.Errorf("%w: amount too small after %d bps spread", ErrInvalidAmount, d.SpreadBps)
	}
	split, err := payout.SplitSpreadFee(fee, d.CreatorShareBps, d.ArbiterShareBps)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}

	supportAddr, bump, err := address.Support(d.Address, params.Backer, params.Side)
	if err != nil {
		return nil, fmt.Errorf("derive support address: %w", err)
	}

	pos, err := p.store.GetSupport(ctx, supportAddr)
	var posVersion uint64
	switch {
	case err == nil:
		posVersion = pos.Version
		if pos.NetAmount, err = payout.AddChecked(pos.NetAmount, net); err != nil {
			return nil, ErrArithmeticOverflow
		}
	case errors.Is(err, storage.ErrNotFound):
		pos = &domain.SupportPosition{
			Address:   supportAddr,
			Duel:      d.Address,
			Backer:    params.Backer,
			Side:      params.Side,
			NetAmount: net,
			Bump:      bump,
			CreatedAt: now,
		}
	default:
		return nil, fmt.Errorf("get support position: %w", err)
	}

	duelVersion := d.Version
	if err := creditPools(d, params.Side, net, split, params.GrossAmount); err != nil {
		return nil, err
	}

	if err := p.store.UpdateDuelAndSupport(ctx, d, duelVersion, pos, posVersion); err != nil {
		return nil, fmt.Errorf("commit support: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventSupportPlaced,
		Duel:      d.Address,
		Actor:     params.Backer,
		Side:      &params.Side,
		Amount:    params.GrossAmount,
		NetAmount: net,
		Timestamp: now,
	})
	return &SupportResult{Fee: fee, Net: net, Position: pos.Clone()}, nil
}

// creditPools applies one support wager to the duel's pools with overflow
// checks; the duel is only committed if every addition fits.
func creditPools(d *domain.Duel, side domain.Side, net uint64, split payout.FeeSplit, gross uint64) error {
	var err error
	if side == domain.SideA {
		d.CrowdPoolA, err = payout.AddChecked(d.CrowdPoolA, net)
	} else {
		d.CrowdPoolB, err = payout.AddChecked(d.CrowdPoolB, net)
	}
	if err != nil {
		return ErrArithmeticOverflow
	}
	if d.SpreadPoolCreators, err = payout.AddChecked(d.SpreadPoolCreators, split.Creators); err != nil {
		return ErrArithmeticOverflow
	}
	if d.SpreadPoolArbiter, err = payout.AddChecked(d.SpreadPoolArbiter, split.Arbiter); err != nil {
		return ErrArithmeticOverflow
	}
	if d.SpreadPoolProtocol, err = payout.AddChecked(d.SpreadPoolProtocol, split.Protocol); err != nil {
		return ErrArithmeticOverflow
	}
	if d.EscrowLamports, err = payout.AddChecked(d.EscrowLamports, gross); err != nil {
		return ErrArithmeticOverflow
	}
	return nil
}

// DeclareWinnerParams are the declare_winner instruction arguments.
type DeclareWinnerParams struct {
	Caller domain.Identity
	Duel   domain.Identity
	Winner domain.Side
}

// DeclareWinner resolves the duel. No funds move here: payouts are claimed
// separately so they need not serialize through the arbiter.
func (p *Processor) DeclareWinner(ctx context.Context, params DeclareWinnerParams) (*domain.Duel, error) {
	if !params.Winner.IsValid() {
		return nil, fmt.Errorf("%w: invalid side", ErrInvalidParameters)
	}
	d, err := p.getDuel(ctx, params.Duel)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()

	if d.Status != domain.StatusOpen {
		return nil, fmt.Errorf("%w: status %s", ErrDuelNotOpen, d.Status)
	}
	if params.Caller != d.Arbiter {
		return nil, fmt.Errorf("%w: caller is not the arbiter", ErrUnauthorized)
	}
	if !d.BothDeposited() {
		return nil, ErrDepositsIncomplete
	}
	if now < d.ResolveNotBefore {
		return nil, ErrResolveWindowNotOpen
	}

	version := d.Version
	winner := params.Winner
	d.Status = domain.StatusResolved
	d.WinnerSide = &winner

	if err := p.store.UpdateDuel(ctx, d, version); err != nil {
		return nil, fmt.Errorf("commit winner: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventWinnerDeclared,
		Duel:      d.Address,
		Actor:     params.Caller,
		Side:      &winner,
		Timestamp: now,
	})
	return d.Clone(), nil
}

// WithdrawPrincipalParams are the withdraw_principal instruction arguments.
type WithdrawPrincipalParams struct {
	Caller domain.Identity
	Duel   domain.Identity
}

// WithdrawPrincipalResult reports the combined stake paid out.
type WithdrawPrincipalResult struct {
	Amount uint64
}

// WithdrawPrincipal pays both stakes to the winning challenger, once.
func (p *Processor) WithdrawPrincipal(ctx context.Context, params WithdrawPrincipalParams) (*WithdrawPrincipalResult, error) {
	d, err := p.getDuel(ctx, params.Duel)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()

	if d.Status != domain.StatusResolved || d.WinnerSide == nil {
		return nil, ErrDuelNotResolved
	}
	if params.Caller != d.Challenger(*d.WinnerSide) {
		return nil, fmt.Errorf("%w: caller is not the winning challenger", ErrUnauthorized)
	}
	if d.PrincipalWithdrawn {
		return nil, ErrAlreadyWithdrawn
	}

	amount, err := payout.MulChecked(d.StakeLamports, 2)
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	if amount > d.EscrowLamports {
		return nil, ErrArithmeticOverflow
	}

	version := d.Version
	d.PrincipalWithdrawn = true
	d.EscrowLamports -= amount

	if err := p.store.UpdateDuel(ctx, d, version); err != nil {
		return nil, fmt.Errorf("commit principal withdrawal: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventPrincipalWithdrawn,
		Duel:      d.Address,
		Actor:     params.Caller,
		Amount:    amount,
		Timestamp: now,
	})
	return &WithdrawPrincipalResult{Amount: amount}, nil
}

// ClaimSupportParams are the claim_support instruction arguments. Side names
// which of the backer's positions is claimed.
type ClaimSupportParams struct {
	Backer domain.Identity
	Duel   domain.Identity
	Side   domain.Side
}

// ClaimSupportResult reports the payout transferred to the backer.
type ClaimSupportResult struct {
	Payout uint64
}

// ClaimSupport pays a winning backer their net stake plus a pro-rata share
// of the losing pool.
func (p *Processor) ClaimSupport(ctx context.Context, params ClaimSupportParams) (*ClaimSupportResult, error) {
	if !params.Side.IsValid() {
		return nil, fmt.Errorf("%w: invalid side", ErrInvalidParameters)
	}
	d, err := p.getDuel(ctx, params.Duel)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()

	if d.Status != domain.StatusResolved || d.WinnerSide == nil {
		return nil, ErrDuelNotResolved
	}

	supportAddr, _, err := address.Support(d.Address, params.Backer, params.Side)
	if err != nil {
		return nil, fmt.Errorf("derive support address: %w", err)
	}
	pos, err := p.store.GetSupport(ctx, supportAddr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: support position %s", ErrRecordNotFound, supportAddr)
		}
		return nil, fmt.Errorf("get support position: %w", err)
	}

	winner := *d.WinnerSide
	if pos.Side != winner {
		return nil, ErrWrongSide
	}
	if pos.Claimed {
		return nil, ErrAlreadyClaimed
	}

	amount, err := payout.ClaimPayout(pos.NetAmount, d.CrowdPool(winner), d.CrowdPool(winner.Opposite()))
	if err != nil {
		return nil, ErrArithmeticOverflow
	}
	if amount > d.EscrowLamports {
		return nil, ErrArithmeticOverflow
	}

	duelVersion := d.Version
	posVersion := pos.Version
	d.EscrowLamports -= amount
	pos.Claimed = true

	if err := p.store.UpdateDuelAndSupport(ctx, d, duelVersion, pos, posVersion); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventSupportClaimed,
		Duel:      d.Address,
		Actor:     params.Backer,
		Side:      &pos.Side,
		Amount:    amount,
		Timestamp: now,
	})
	return &ClaimSupportResult{Payout: amount}, nil
}

// WithdrawSpreadParams are the withdraw_spread instruction arguments. The
// instruction is open to anyone; payees are the identities recorded on the
// duel, and Treasury must match the recorded treasury.
type WithdrawSpreadParams struct {
	Caller   domain.Identity
	Duel     domain.Identity
	Treasury domain.Identity
}

// WithdrawSpreadResult reports the four fee transfers.
type WithdrawSpreadResult struct {
	CreatorA uint64
	CreatorB uint64
	Arbiter  uint64
	Protocol uint64
}

// WithdrawSpread drains the accumulated fee sub-pools. Callable repeatedly:
// the pools refill from later support while the duel is open, and after
// resolution one final drain empties them for good.
func (p *Processor) WithdrawSpread(ctx context.Context, params WithdrawSpreadParams) (*WithdrawSpreadResult, error) {
	d, err := p.getDuel(ctx, params.Duel)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()

	if params.Treasury != d.Treasury {
		return nil, fmt.Errorf("%w: recorded treasury is %s", ErrTreasuryMismatch, d.Treasury)
	}

	total := d.SpreadTotal()
	if total == 0 {
		return nil, ErrNothingToWithdraw
	}
	if total > d.EscrowLamports {
		return nil, ErrArithmeticOverflow
	}

	creatorA, creatorB := payout.SplitCreators(d.SpreadPoolCreators)
	result := &WithdrawSpreadResult{
		CreatorA: creatorA,
		CreatorB: creatorB,
		Arbiter:  d.SpreadPoolArbiter,
		Protocol: d.SpreadPoolProtocol,
	}

	version := d.Version
	d.EscrowLamports -= total
	d.SpreadPoolCreators = 0
	d.SpreadPoolArbiter = 0
	d.SpreadPoolProtocol = 0

	if err := p.store.UpdateDuel(ctx, d, version); err != nil {
		return nil, fmt.Errorf("commit spread withdrawal: %w", err)
	}

	p.sink.Publish(ctx, domain.LedgerEvent{
		Kind:      domain.EventSpreadWithdrawn,
		Duel:      d.Address,
		Actor:     params.Caller,
		Amount:    total,
		Timestamp: now,
	})
	return result, nil
}

func (p *Processor) getDuel(ctx context.Context, addr domain.Identity) (*domain.Duel, error) {
	d, err := p.store.GetDuel(ctx, addr)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: duel %s", ErrRecordNotFound, addr)
		}
		return nil, fmt.Errorf("get duel: %w", err)
	}
	return d, nil
}
