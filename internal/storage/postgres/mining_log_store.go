package postgres

import (
	"context"
	"fmt"
	"time"

	"solay-backend/internal/domain"
	"solay-backend/internal/storage"
)

// MiningLogStore implements storage.MiningLogStore using PostgreSQL.
type MiningLogStore struct {
	pool *Pool
}

// NewMiningLogStore creates a new MiningLogStore.
func NewMiningLogStore(pool *Pool) *MiningLogStore {
	return &MiningLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MiningLogStore = (*MiningLogStore)(nil)

// Insert adds a log entry for a confirmed transfer.
func (s *MiningLogStore) Insert(ctx context.Context, e *domain.MiningLogEntry) error {
	if e == nil || e.Wallet == "" {
		return storage.ErrInvalidInput
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO mining_log (wallet, amount, tx, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	if err := s.pool.QueryRow(ctx, query, e.Wallet, e.Amount, e.Tx, e.CreatedAt).Scan(&e.ID); err != nil {
		return fmt.Errorf("insert mining log: %w", err)
	}
	return nil
}

// GetByWallet retrieves all entries for a wallet, ordered by creation time ASC.
func (s *MiningLogStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.MiningLogEntry, error) {
	query := `
		SELECT id, wallet, amount, tx, created_at
		FROM mining_log
		WHERE wallet = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query mining log: %w", err)
	}
	defer rows.Close()

	var result []*domain.MiningLogEntry
	for rows.Next() {
		var e domain.MiningLogEntry
		if err := rows.Scan(&e.ID, &e.Wallet, &e.Amount, &e.Tx, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mining log row: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mining log rows: %w", err)
	}

	return result, nil
}
