package domain

import "time"

// WalletDayRecord represents one wallet's issuance state for one UTC day.
// Corresponds to wallet_day_quota table in PostgreSQL.
type WalletDayRecord struct {
	Wallet string  // token holder address (base58)
	Day    string  // UTC calendar date, YYYY-MM-DD
	Mined  float64 // cumulative reward issued this day, core units
}

// DayKey returns the UTC calendar date key for t.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
