package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

func TestMiningLogStore_InsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMiningLogStore(pool)
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	entries := []*domain.MiningLogEntry{
		{Wallet: "walletA", Amount: 45.0, Tx: "sig1", CreatedAt: base},
		{Wallet: "walletB", Amount: 0.1, Tx: "sig2", CreatedAt: base.Add(time.Minute)},
		{Wallet: "walletA", Amount: 20.0, Tx: "sig3", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, store.Insert(ctx, e))
		assert.NotZero(t, e.ID, "Insert must assign the row ID")
	}

	got, err := store.GetByWallet(ctx, "walletA")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sig1", got[0].Tx)
	assert.Equal(t, "sig3", got[1].Tx)
	assert.Equal(t, 45.0, got[0].Amount)

	got, err = store.GetByWallet(ctx, "walletC")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMiningLogStore_InvalidInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMiningLogStore(pool)
	ctx := context.Background()

	err := store.Insert(ctx, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Insert(ctx, &domain.MiningLogEntry{Amount: 1})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
