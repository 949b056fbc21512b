package clickhouse

import (
	"context"
	"fmt"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

// RewardEventSink implements storage.RewardEventSink using ClickHouse.
// Events are append-only analytics data; the MergeTree table does not
// enforce uniqueness and none is needed.
type RewardEventSink struct {
	conn *Conn
}

// NewRewardEventSink creates a new RewardEventSink.
func NewRewardEventSink(conn *Conn) *RewardEventSink {
	return &RewardEventSink{conn: conn}
}

// Compile-time interface check.
var _ storage.RewardEventSink = (*RewardEventSink)(nil)

// InsertBulk appends a batch of events.
func (s *RewardEventSink) InsertBulk(ctx context.Context, events []*domain.RewardEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO reward_events (
			wallet, day, outcome, amount, balance, price, tx, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		if e == nil {
			return storage.ErrInvalidInput
		}
		err = batch.Append(
			e.Wallet, e.Day, e.Outcome,
			e.Amount, e.Balance, e.Price,
			e.Tx, uint64(e.TimestampMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
