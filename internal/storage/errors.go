package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOverLimit is returned by QuotaLedger.Commit when adding the
	// amount would push the wallet past its daily limit. The ledger is
	// left unchanged.
	ErrOverLimit = errors.New("daily limit exceeded")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
