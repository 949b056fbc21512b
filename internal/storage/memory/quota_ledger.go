package memory

import (
	"context"
	"sync"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

// QuotaLedger is an in-memory implementation of storage.QuotaLedger.
// Each wallet owns one record guarded by its own lock, so commits for
// different wallets never contend with each other.
type QuotaLedger struct {
	limit float64
	now   func() time.Time

	mu      sync.Mutex
	records map[string]*walletDay
}

// walletDay is the live record for one wallet. mu serializes the
// check-and-add in Commit against concurrent callers.
type walletDay struct {
	mu    sync.Mutex
	day   string
	mined float64
}

// Option configures QuotaLedger.
type Option func(*QuotaLedger)

// WithClock overrides the wall clock, for day-rollover tests.
func WithClock(now func() time.Time) Option {
	return func(l *QuotaLedger) {
		l.now = now
	}
}

// NewQuotaLedger creates an in-memory quota ledger with the given daily limit.
func NewQuotaLedger(limit float64, opts ...Option) *QuotaLedger {
	l := &QuotaLedger{
		limit:   limit,
		now:     time.Now,
		records: make(map[string]*walletDay),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ storage.QuotaLedger = (*QuotaLedger)(nil)

// record returns the wallet's record, creating it lazily. Only the map
// access is under the ledger lock; callers lock the record itself.
func (l *QuotaLedger) record(wallet string) *walletDay {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[wallet]
	if !ok {
		rec = &walletDay{}
		l.records[wallet] = rec
	}
	return rec
}

// rollover resets the record when its stored date is not today.
// Caller must hold rec.mu.
func (l *QuotaLedger) rollover(rec *walletDay) {
	today := domain.DayKey(l.now())
	if rec.day != today {
		rec.day = today
		rec.mined = 0
	}
}

// Remaining returns how much the wallet may still receive today.
func (l *QuotaLedger) Remaining(_ context.Context, wallet string) (float64, error) {
	if wallet == "" {
		return 0, storage.ErrInvalidInput
	}

	rec := l.record(wallet)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	l.rollover(rec)
	left := l.limit - rec.mined
	if left < 0 {
		left = 0
	}
	return left, nil
}

// MinedToday returns the amount already issued to the wallet today.
func (l *QuotaLedger) MinedToday(_ context.Context, wallet string) (float64, error) {
	if wallet == "" {
		return 0, storage.ErrInvalidInput
	}

	rec := l.record(wallet)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	l.rollover(rec)
	return rec.mined, nil
}

// Commit atomically adds amount to today's total for the wallet.
func (l *QuotaLedger) Commit(_ context.Context, wallet string, amount float64) error {
	if wallet == "" || amount < 0 {
		return storage.ErrInvalidInput
	}

	rec := l.record(wallet)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	l.rollover(rec)
	if rec.mined+amount > l.limit {
		return storage.ErrOverLimit
	}
	rec.mined += amount
	return nil
}
