// Package reward computes the per-attempt reward quote. The calculator
// is pure: no I/O, no clock, no shared state.
package reward

import (
	"math"

	"solay-backend/internal/domain"
)

// Default distribution parameters.
const (
	DefaultBaseReward        = 50.0
	DefaultFullRewardBalance = 100000.0
	DefaultMinReward         = 0.1
)

// Params configures the reward formula.
type Params struct {
	BaseReward        float64 // reward for a full-balance holder
	FullRewardBalance float64 // balance at which the reward stops scaling
	MinReward         float64 // floor applied after the price reduction
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	return Params{
		BaseReward:        DefaultBaseReward,
		FullRewardBalance: DefaultFullRewardBalance,
		MinReward:         DefaultMinReward,
	}
}

// Calculator maps (balance, price) to a reward quote.
type Calculator struct {
	params Params
}

// NewCalculator creates a calculator with the given parameters.
func NewCalculator(params Params) *Calculator {
	return &Calculator{params: params}
}

// Quote computes the reward for one attempt. Holding FullRewardBalance
// or more earns BaseReward; below that the reward scales linearly with
// balance. Every whole price unit then removes 10% of the reward; the
// reduction is unclamped, so above price 10 the MinReward floor is the
// effective result regardless of balance.
func (c *Calculator) Quote(a domain.MiningAttempt) domain.RewardQuote {
	reward := c.params.BaseReward
	if a.Balance < c.params.FullRewardBalance {
		reward = round2(c.params.BaseReward * a.Balance / c.params.FullRewardBalance)
	}

	reduction := math.Floor(a.Price) * 0.1
	reward = round2(reward * (1 - reduction))

	if reward < c.params.MinReward {
		reward = c.params.MinReward
	}
	return domain.RewardQuote{Amount: reward}
}

// round2 rounds to the nearest 0.01, halves away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
