// Package eligibility decides whether a wallet may receive a reward
// right now. The gate reads quota state but never modifies it; the
// quota is committed only after the payout is confirmed on chain.
package eligibility

import (
	"context"
	"fmt"

	"solay-backend/internal/domain"
	"solay-backend/internal/reward"
	"solay-backend/internal/storage"
)

// Reason classifies why a mining attempt was denied.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonInsufficientHolding Reason = "insufficient_holding"
	ReasonQuotaExceeded       Reason = "quota_exceeded"
)

// Decision is the outcome of an eligibility check.
type Decision struct {
	Approved bool
	Reason   Reason
	// Reward is the quoted amount when approved, zero otherwise.
	Reward float64
}

// Gate evaluates mining attempts against the holding requirement and
// the wallet's remaining daily quota.
type Gate struct {
	minHold float64
	calc    *reward.Calculator
	ledger  storage.QuotaLedger
}

// NewGate creates a gate. minHold is the minimum token balance (core
// units) a wallet must hold to mine.
func NewGate(minHold float64, calc *reward.Calculator, ledger storage.QuotaLedger) *Gate {
	return &Gate{minHold: minHold, calc: calc, ledger: ledger}
}

// Check evaluates the attempt. It returns an error only when the quota
// ledger cannot be read; denial outcomes are reported via the decision.
func (g *Gate) Check(ctx context.Context, attempt domain.MiningAttempt) (Decision, error) {
	if attempt.Balance < g.minHold {
		return Decision{Reason: ReasonInsufficientHolding}, nil
	}

	quote := g.calc.Quote(attempt)

	remaining, err := g.ledger.Remaining(ctx, attempt.Wallet)
	if err != nil {
		return Decision{}, fmt.Errorf("read quota for %s: %w", attempt.Wallet, err)
	}
	if quote.Amount > remaining {
		return Decision{Reason: ReasonQuotaExceeded}, nil
	}

	return Decision{Approved: true, Reward: quote.Amount}, nil
}
