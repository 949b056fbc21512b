package domain

import "time"

// MiningAttempt describes one mining request as observed by the gate.
// Transient, never persisted.
type MiningAttempt struct {
	Wallet  string  // holder address, opaque beyond non-empty
	Balance float64 // observed token balance, core units
	Price   float64 // observed token price in EUR, 1 when the feed is unavailable
}

// RewardQuote is the calculator output for one attempt. Transient.
type RewardQuote struct {
	Amount float64 // core units, two decimal places
}

// MiningLogEntry records one completed reward transfer.
// Corresponds to mining_log table in PostgreSQL.
type MiningLogEntry struct {
	ID        int64
	Wallet    string
	Amount    float64
	Tx        string // transaction signature
	CreatedAt time.Time
}

// RewardEvent is the analytics record emitted for every mining outcome.
// Corresponds to reward_events table in ClickHouse.
type RewardEvent struct {
	Wallet      string
	Day         string // UTC date key of the attempt
	Outcome     string // granted | insufficient_holding | quota_exceeded | transfer_failed
	Amount      float64
	Balance     float64
	Price       float64
	Tx          string // empty unless granted
	TimestampMs int64
}
