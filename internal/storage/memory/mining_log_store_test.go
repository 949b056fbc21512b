package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

func TestMiningLogStore_InsertAndGet(t *testing.T) {
	store := NewMiningLogStore()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	entries := []*domain.MiningLogEntry{
		{Wallet: "walletA", Amount: 45.0, Tx: "sig1", CreatedAt: base},
		{Wallet: "walletB", Amount: 0.1, Tx: "sig2", CreatedAt: base.Add(time.Minute)},
		{Wallet: "walletA", Amount: 20.0, Tx: "sig3", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByWallet(ctx, "walletA")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for walletA, got %d", len(got))
	}
	if got[0].Tx != "sig1" || got[1].Tx != "sig3" {
		t.Errorf("entries not ordered by creation time: %v, %v", got[0].Tx, got[1].Tx)
	}
	if got[0].ID == 0 || got[1].ID == 0 {
		t.Errorf("expected assigned IDs, got %d and %d", got[0].ID, got[1].ID)
	}
}

func TestMiningLogStore_InvalidInput(t *testing.T) {
	store := NewMiningLogStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil entry, got %v", err)
	}
	if err := store.Insert(ctx, &domain.MiningLogEntry{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty wallet, got %v", err)
	}
}
