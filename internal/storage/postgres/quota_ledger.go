package postgres

import (
	"context"
	"fmt"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

// QuotaLedger implements storage.QuotaLedger using PostgreSQL.
//
// The check-and-add in Commit is a single guarded upsert, so concurrent
// commits for the same wallet serialize on the row lock and can never
// jointly exceed the limit. Rows for superseded days are deleted on the
// next commit for that wallet; absence of a row means nothing was issued
// today.
type QuotaLedger struct {
	pool  *Pool
	limit float64
	now   func() time.Time
}

// NewQuotaLedger creates a Postgres-backed quota ledger with the given daily limit.
func NewQuotaLedger(pool *Pool, limit float64) *QuotaLedger {
	return &QuotaLedger{pool: pool, limit: limit, now: time.Now}
}

// Compile-time interface check.
var _ storage.QuotaLedger = (*QuotaLedger)(nil)

// Remaining returns how much the wallet may still receive today.
func (l *QuotaLedger) Remaining(ctx context.Context, wallet string) (float64, error) {
	mined, err := l.MinedToday(ctx, wallet)
	if err != nil {
		return 0, err
	}

	left := l.limit - mined
	if left < 0 {
		left = 0
	}
	return left, nil
}

// MinedToday returns the amount already issued to the wallet today.
func (l *QuotaLedger) MinedToday(ctx context.Context, wallet string) (float64, error) {
	if wallet == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		SELECT mined FROM wallet_day_quota
		WHERE wallet = $1 AND day = $2
	`

	var mined float64
	err := l.pool.QueryRow(ctx, query, wallet, domain.DayKey(l.now())).Scan(&mined)
	if err != nil {
		if isNotFoundError(err) {
			// No record for today: nothing issued yet.
			return 0, nil
		}
		return 0, fmt.Errorf("query mined today: %w", err)
	}
	return mined, nil
}

// Commit atomically adds amount to today's total for the wallet.
func (l *QuotaLedger) Commit(ctx context.Context, wallet string, amount float64) error {
	if wallet == "" || amount < 0 || amount > l.limit {
		if wallet == "" || amount < 0 {
			return storage.ErrInvalidInput
		}
		return storage.ErrOverLimit
	}

	day := domain.DayKey(l.now())

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Supersede any record left over from a previous day.
	if _, err := tx.Exec(ctx, `DELETE FROM wallet_day_quota WHERE wallet = $1 AND day <> $2`, wallet, day); err != nil {
		return fmt.Errorf("supersede stale quota rows: %w", err)
	}

	// Guarded upsert: the WHERE clause rejects the update when the new
	// total would exceed the limit, in which case no row comes back.
	query := `
		INSERT INTO wallet_day_quota (wallet, day, mined)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet, day) DO UPDATE
		SET mined = wallet_day_quota.mined + EXCLUDED.mined
		WHERE wallet_day_quota.mined + EXCLUDED.mined <= $4
		RETURNING mined
	`

	var mined float64
	if err := tx.QueryRow(ctx, query, wallet, day, amount, l.limit).Scan(&mined); err != nil {
		if isNotFoundError(err) {
			return storage.ErrOverLimit
		}
		return fmt.Errorf("commit quota: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
