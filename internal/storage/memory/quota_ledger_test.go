package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solay-backend/internal/storage"
)

const testLimit = 2000.0

func TestQuotaLedger_RemainingIdempotent(t *testing.T) {
	ledger := NewQuotaLedger(testLimit)
	ctx := context.Background()

	first, err := ledger.Remaining(ctx, "walletA")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	second, err := ledger.Remaining(ctx, "walletA")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}

	if first != testLimit || second != testLimit {
		t.Errorf("expected %v remaining for fresh wallet, got %v then %v", testLimit, first, second)
	}
}

func TestQuotaLedger_CommitAdditivity(t *testing.T) {
	ledger := NewQuotaLedger(testLimit)
	ctx := context.Background()

	amounts := []float64{45.0, 50.0, 0.1, 25.5}
	var sum float64
	for _, a := range amounts {
		if err := ledger.Commit(ctx, "walletA", a); err != nil {
			t.Fatalf("Commit(%v) failed: %v", a, err)
		}
		sum += a
	}

	mined, err := ledger.MinedToday(ctx, "walletA")
	if err != nil {
		t.Fatalf("MinedToday failed: %v", err)
	}
	if mined != sum {
		t.Errorf("expected mined %v, got %v", sum, mined)
	}

	left, err := ledger.Remaining(ctx, "walletA")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if left != testLimit-sum {
		t.Errorf("expected remaining %v, got %v", testLimit-sum, left)
	}
}

func TestQuotaLedger_OverLimit(t *testing.T) {
	ledger := NewQuotaLedger(testLimit)
	ctx := context.Background()

	if err := ledger.Commit(ctx, "walletA", 1980); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// 1980 + 45 > 2000: must fail and leave the ledger unchanged.
	err := ledger.Commit(ctx, "walletA", 45)
	if !errors.Is(err, storage.ErrOverLimit) {
		t.Fatalf("expected ErrOverLimit, got %v", err)
	}

	mined, err := ledger.MinedToday(ctx, "walletA")
	if err != nil {
		t.Fatalf("MinedToday failed: %v", err)
	}
	if mined != 1980 {
		t.Errorf("failed commit must not change mined: got %v", mined)
	}

	// The exact remainder still fits.
	if err := ledger.Commit(ctx, "walletA", 20); err != nil {
		t.Errorf("commit of exact remainder failed: %v", err)
	}
}

func TestQuotaLedger_DayRollover(t *testing.T) {
	day := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	var mu sync.Mutex
	now := day
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	ledger := NewQuotaLedger(testLimit, WithClock(clock))
	ctx := context.Background()

	if err := ledger.Commit(ctx, "walletA", 1999); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	mu.Lock()
	now = day.Add(time.Hour) // past midnight UTC
	mu.Unlock()

	left, err := ledger.Remaining(ctx, "walletA")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if left != testLimit {
		t.Errorf("expected full quota %v after rollover, got %v", testLimit, left)
	}

	mined, err := ledger.MinedToday(ctx, "walletA")
	if err != nil {
		t.Fatalf("MinedToday failed: %v", err)
	}
	if mined != 0 {
		t.Errorf("expected mined reset to 0 after rollover, got %v", mined)
	}
}

func TestQuotaLedger_WalletsIndependent(t *testing.T) {
	ledger := NewQuotaLedger(testLimit)
	ctx := context.Background()

	if err := ledger.Commit(ctx, "walletA", testLimit); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	left, err := ledger.Remaining(ctx, "walletB")
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if left != testLimit {
		t.Errorf("walletB quota affected by walletA commits: %v", left)
	}
}

func TestQuotaLedger_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()

	// Two in-flight commits that each fit individually but not together
	// must produce exactly one success.
	for i := 0; i < 100; i++ {
		ledger := NewQuotaLedger(testLimit)
		if err := ledger.Commit(ctx, "walletA", 1980); err != nil {
			t.Fatalf("setup commit failed: %v", err)
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(j int) {
				defer wg.Done()
				errs[j] = ledger.Commit(ctx, "walletA", 15)
			}(j)
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
			} else if !errors.Is(err, storage.ErrOverLimit) {
				t.Fatalf("unexpected commit error: %v", err)
			}
		}
		if successes != 1 {
			t.Fatalf("expected exactly one success, got %d", successes)
		}

		mined, err := ledger.MinedToday(ctx, "walletA")
		if err != nil {
			t.Fatalf("MinedToday failed: %v", err)
		}
		if mined != 1995 {
			t.Fatalf("expected mined 1995, got %v", mined)
		}
	}
}

func TestQuotaLedger_EmptyWallet(t *testing.T) {
	ledger := NewQuotaLedger(testLimit)
	ctx := context.Background()

	if _, err := ledger.Remaining(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty wallet, got %v", err)
	}
	if err := ledger.Commit(ctx, "", 1); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty wallet, got %v", err)
	}
	if err := ledger.Commit(ctx, "walletA", -1); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative amount, got %v", err)
	}
}
