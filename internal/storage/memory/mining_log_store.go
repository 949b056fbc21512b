package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

// MiningLogStore is an in-memory implementation of storage.MiningLogStore.
type MiningLogStore struct {
	mu     sync.RWMutex
	nextID int64
	data   []*domain.MiningLogEntry
}

// NewMiningLogStore creates a new in-memory mining log store.
func NewMiningLogStore() *MiningLogStore {
	return &MiningLogStore{nextID: 1}
}

var _ storage.MiningLogStore = (*MiningLogStore)(nil)

// Insert adds a log entry for a confirmed transfer.
func (s *MiningLogStore) Insert(_ context.Context, e *domain.MiningLogEntry) error {
	if e == nil || e.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	copy.ID = s.nextID
	s.nextID++
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = time.Now()
	}
	s.data = append(s.data, &copy)
	return nil
}

// GetByWallet retrieves all entries for a wallet, ordered by creation time ASC.
func (s *MiningLogStore) GetByWallet(_ context.Context, wallet string) ([]*domain.MiningLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.MiningLogEntry
	for _, e := range s.data {
		if e.Wallet == wallet {
			copy := *e
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
