package storage

import (
	"context"

	"solay-backend/internal/domain"
)

// QuotaLedger is the authoritative record of how much reward each wallet
// has been issued today. The day key is the UTC calendar date; a record
// whose stored date differs from the current date is reset to zero before
// any read or write. Implementations must make Commit atomic per wallet:
// two concurrent commits for the same wallet must never both succeed when
// their sum exceeds the daily limit.
type QuotaLedger interface {
	// Remaining returns how much the wallet may still receive today,
	// clamped to [0, limit].
	Remaining(ctx context.Context, wallet string) (float64, error)

	// MinedToday returns the amount already issued to the wallet today.
	MinedToday(ctx context.Context, wallet string) (float64, error)

	// Commit atomically checks mined+amount against the daily limit and
	// adds amount on success. Returns ErrOverLimit, with no change, when
	// the limit would be exceeded.
	Commit(ctx context.Context, wallet string, amount float64) error
}

// MiningLogStore records completed reward transfers. Append-only.
type MiningLogStore interface {
	// Insert adds a log entry for a confirmed transfer.
	Insert(ctx context.Context, e *domain.MiningLogEntry) error

	// GetByWallet retrieves all entries for a wallet, ordered by creation time ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.MiningLogEntry, error)
}

// RewardEventSink receives append-only reward events for analytics.
// Sinks are best-effort: the orchestrator never fails a request over a
// sink error.
type RewardEventSink interface {
	// InsertBulk appends a batch of events.
	InsertBulk(ctx context.Context, events []*domain.RewardEvent) error
}
