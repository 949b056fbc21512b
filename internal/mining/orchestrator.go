// Package mining coordinates a full mining attempt: balance and price
// lookups, eligibility, the on-chain payout, and quota accounting.
package mining

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/eligibility"
	"solay-backend/internal/observability"
	"solay-backend/internal/reward"
	"solay-backend/internal/spl"
	"solay-backend/internal/storage"
)

// ErrInvalidWallet marks a request whose wallet is not a valid address.
var ErrInvalidWallet = errors.New("invalid wallet address")

// BalanceClient reads a wallet's token balance.
type BalanceClient interface {
	GetTokenBalance(ctx context.Context, owner, mint string) (float64, error)
}

// PriceClient reads the current token price.
type PriceClient interface {
	GetPrice(ctx context.Context, mint string) (float64, error)
}

// TransferClient executes the reward payout and returns the confirmed
// transaction signature.
type TransferClient interface {
	Transfer(ctx context.Context, toWallet string, amount float64) (string, error)
}

// Outcome classifies how a mining attempt ended.
type Outcome string

const (
	OutcomeGranted             Outcome = "granted"
	OutcomeInsufficientHolding Outcome = "insufficient_holding"
	OutcomeQuotaExceeded       Outcome = "quota_exceeded"
	OutcomeTransferFailed      Outcome = "transfer_failed"
)

// MineResult is the outcome of one mining attempt.
type MineResult struct {
	Outcome Outcome
	Reward  float64 // issued amount, zero unless granted
	Tx      string  // transaction signature, empty unless granted
}

// UserInfo is the wallet status snapshot served to clients.
type UserInfo struct {
	Balance       float64 `json:"balance"`
	PriceEUR      float64 `json:"price_eur"`
	CurrentReward float64 `json:"current_reward"`
	MiningLeft    float64 `json:"mining_left"`
	CanMine       bool    `json:"can_mine"`
}

// Options configures the orchestrator.
type Options struct {
	Balance  BalanceClient
	Price    PriceClient
	Transfer TransferClient
	Gate     *eligibility.Gate
	Calc     *reward.Calculator
	Ledger   storage.QuotaLedger
	Log      storage.MiningLogStore
	Events   storage.RewardEventSink
	Mint     string
	MinHold  float64

	// LookupTimeout bounds each upstream read (balance, price).
	LookupTimeout time.Duration
	Logger        *log.Logger
}

const defaultLookupTimeout = 10 * time.Second

// Orchestrator runs the mining flow. Balance and price lookups degrade
// on failure instead of failing the request: a balance read error is
// treated as a zero balance, a price read error as price 1. The quota
// is committed only after the transfer is confirmed on chain.
type Orchestrator struct {
	balance       BalanceClient
	price         PriceClient
	transfer      TransferClient
	gate          *eligibility.Gate
	calc          *reward.Calculator
	ledger        storage.QuotaLedger
	logStore      storage.MiningLogStore
	events        storage.RewardEventSink
	mint          string
	minHold       float64
	lookupTimeout time.Duration
	logger        *log.Logger
}

// NewOrchestrator creates an orchestrator from its dependencies.
func NewOrchestrator(opts Options) *Orchestrator {
	o := &Orchestrator{
		balance:       opts.Balance,
		price:         opts.Price,
		transfer:      opts.Transfer,
		gate:          opts.Gate,
		calc:          opts.Calc,
		ledger:        opts.Ledger,
		logStore:      opts.Log,
		events:        opts.Events,
		mint:          opts.Mint,
		minHold:       opts.MinHold,
		lookupTimeout: opts.LookupTimeout,
		logger:        opts.Logger,
	}
	if o.lookupTimeout <= 0 {
		o.lookupTimeout = defaultLookupTimeout
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// observe reads the wallet's balance and the token price, degrading on
// lookup failures.
func (o *Orchestrator) observe(ctx context.Context, wallet string) domain.MiningAttempt {
	bctx, cancel := context.WithTimeout(ctx, o.lookupTimeout)
	balance, err := o.balance.GetTokenBalance(bctx, wallet, o.mint)
	cancel()
	if err != nil {
		o.logger.Printf("[mining] balance lookup failed for %s: %v", wallet, err)
		observability.RecordBalanceLookupError()
		balance = 0
	}

	pctx, cancel := context.WithTimeout(ctx, o.lookupTimeout)
	price, err := o.price.GetPrice(pctx, o.mint)
	cancel()
	if err != nil {
		o.logger.Printf("[mining] price lookup failed: %v", err)
		observability.RecordPriceLookupError()
		price = 1
	}

	return domain.MiningAttempt{Wallet: wallet, Balance: balance, Price: price}
}

// UserInfo reports the wallet's balance, the current reward quote, and
// how much quota is left today.
func (o *Orchestrator) UserInfo(ctx context.Context, wallet string) (*UserInfo, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	attempt := o.observe(ctx, wallet)
	quote := o.calc.Quote(attempt)

	remaining, err := o.ledger.Remaining(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("read quota for %s: %w", wallet, err)
	}

	return &UserInfo{
		Balance:       attempt.Balance,
		PriceEUR:      attempt.Price,
		CurrentReward: quote.Amount,
		MiningLeft:    remaining,
		CanMine:       attempt.Balance >= o.minHold && quote.Amount > 0 && quote.Amount <= remaining,
	}, nil
}

// Mine executes one mining attempt end to end.
func (o *Orchestrator) Mine(ctx context.Context, wallet string) (*MineResult, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	attempt := o.observe(ctx, wallet)

	decision, err := o.gate.Check(ctx, attempt)
	if err != nil {
		return nil, err
	}
	if !decision.Approved {
		outcome := denialOutcome(decision.Reason)
		observability.RecordAttempt(string(outcome))
		observability.RecordDenial(string(decision.Reason))
		o.emitEvent(attempt, outcome, 0, "")
		return &MineResult{Outcome: outcome}, nil
	}

	observability.RecordTransferSubmitted()
	started := time.Now()
	tx, err := o.transfer.Transfer(ctx, wallet, decision.Reward)
	if err != nil {
		o.logger.Printf("[mining] transfer of %v to %s failed: %v", decision.Reward, wallet, err)
		observability.RecordTransferFailed()
		observability.RecordAttempt(string(OutcomeTransferFailed))
		o.emitEvent(attempt, OutcomeTransferFailed, decision.Reward, "")
		return &MineResult{Outcome: OutcomeTransferFailed}, nil
	}
	observability.RecordTransferConfirmed(time.Since(started))

	// The tokens are on chain at this point. A commit failure must not
	// turn the attempt into a denial; it is logged and the result stands.
	if err := o.ledger.Commit(ctx, wallet, decision.Reward); err != nil {
		o.logger.Printf("[mining] quota commit failed for %s after confirmed tx %s: %v", wallet, tx, err)
	}

	if err := o.logStore.Insert(ctx, &domain.MiningLogEntry{
		Wallet: wallet,
		Amount: decision.Reward,
		Tx:     tx,
	}); err != nil {
		o.logger.Printf("[mining] mining log insert failed for %s tx %s: %v", wallet, tx, err)
	}

	observability.RecordAttempt(string(OutcomeGranted))
	observability.RecordReward(decision.Reward)
	o.emitEvent(attempt, OutcomeGranted, decision.Reward, tx)

	return &MineResult{Outcome: OutcomeGranted, Reward: decision.Reward, Tx: tx}, nil
}

// History returns the wallet's completed reward transfers.
func (o *Orchestrator) History(ctx context.Context, wallet string) ([]*domain.MiningLogEntry, error) {
	if err := validateWallet(wallet); err != nil {
		return nil, err
	}
	return o.logStore.GetByWallet(ctx, wallet)
}

// emitEvent appends an analytics event. Best-effort: sink failures are
// logged and ignored.
func (o *Orchestrator) emitEvent(attempt domain.MiningAttempt, outcome Outcome, amount float64, tx string) {
	if o.events == nil {
		return
	}
	now := time.Now()
	event := &domain.RewardEvent{
		Wallet:      attempt.Wallet,
		Day:         domain.DayKey(now),
		Outcome:     string(outcome),
		Amount:      amount,
		Balance:     attempt.Balance,
		Price:       attempt.Price,
		Tx:          tx,
		TimestampMs: now.UnixMilli(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.lookupTimeout)
	defer cancel()
	if err := o.events.InsertBulk(ctx, []*domain.RewardEvent{event}); err != nil {
		o.logger.Printf("[mining] reward event insert failed: %v", err)
	}
}

func denialOutcome(reason eligibility.Reason) Outcome {
	switch reason {
	case eligibility.ReasonInsufficientHolding:
		return OutcomeInsufficientHolding
	case eligibility.ReasonQuotaExceeded:
		return OutcomeQuotaExceeded
	default:
		return OutcomeTransferFailed
	}
}

// validateWallet checks that the wallet is a well-formed base58 public key.
func validateWallet(wallet string) error {
	if wallet == "" {
		return ErrInvalidWallet
	}
	if _, err := spl.DecodeAddress(wallet); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWallet, err)
	}
	return nil
}
