// Package transfer executes SPL token reward payouts from the service wallet.
package transfer

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"solay-backend/internal/solana"
	"solay-backend/internal/spl"
)

// Confirmer waits for a submitted signature to reach confirmed commitment.
type Confirmer interface {
	WaitForSignature(ctx context.Context, signature string) error
}

// Default confirmation behavior.
const (
	DefaultConfirmTimeout = 60 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

// Options configures Sender.
type Options struct {
	RPC      solana.RPCClient
	Keypair  *spl.Keypair
	Mint     string
	Decimals int

	// Confirmer is optional; when nil (or on confirmer failure) the
	// sender falls back to polling getSignatureStatuses.
	Confirmer Confirmer

	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Logger         *log.Logger
}

// Sender submits reward transfers and waits for confirmation.
type Sender struct {
	rpc            solana.RPCClient
	keypair        *spl.Keypair
	mint           string
	decimals       int
	confirmer      Confirmer
	confirmTimeout time.Duration
	pollInterval   time.Duration
	logger         *log.Logger

	sourceOnce sync.Once
	sourceATA  string
	sourceErr  error
}

// NewSender creates a transfer sender for the service wallet.
func NewSender(opts Options) *Sender {
	s := &Sender{
		rpc:            opts.RPC,
		keypair:        opts.Keypair,
		mint:           opts.Mint,
		decimals:       opts.Decimals,
		confirmer:      opts.Confirmer,
		confirmTimeout: opts.ConfirmTimeout,
		pollInterval:   opts.PollInterval,
		logger:         opts.Logger,
	}
	if s.confirmTimeout <= 0 {
		s.confirmTimeout = DefaultConfirmTimeout
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// source derives the service wallet's token account once and caches it.
func (s *Sender) source() (string, error) {
	s.sourceOnce.Do(func() {
		s.sourceATA, s.sourceErr = spl.FindAssociatedTokenAddress(s.keypair.Address(), s.mint)
	})
	return s.sourceATA, s.sourceErr
}

// Transfer sends amount (core units) of the mint to the wallet and
// returns the confirmed transaction signature. The recipient's token
// account is created in the same transaction when it does not exist.
func (s *Sender) Transfer(ctx context.Context, toWallet string, amount float64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("non-positive transfer amount %v", amount)
	}
	baseUnits := uint64(math.Round(amount * math.Pow10(s.decimals)))

	sourceATA, err := s.source()
	if err != nil {
		return "", fmt.Errorf("derive service token account: %w", err)
	}
	destATA, err := spl.FindAssociatedTokenAddress(toWallet, s.mint)
	if err != nil {
		return "", fmt.Errorf("derive recipient token account: %w", err)
	}

	var instructions []spl.Instruction
	info, err := s.rpc.GetAccountInfo(ctx, destATA)
	if err != nil {
		return "", fmt.Errorf("check recipient token account: %w", err)
	}
	if info == nil {
		instructions = append(instructions,
			spl.NewCreateATAIdempotentInstruction(s.keypair.Address(), destATA, toWallet, s.mint))
	}
	instructions = append(instructions,
		spl.NewTransferInstruction(sourceATA, destATA, s.keypair.Address(), baseUnits))

	blockhash, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch blockhash: %w", err)
	}

	signed, err := spl.BuildTransaction(s.keypair, blockhash, instructions)
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}

	signature, err := s.rpc.SendTransaction(ctx, signed)
	if err != nil {
		return "", fmt.Errorf("send transaction: %w", err)
	}

	if err := s.confirm(ctx, signature); err != nil {
		return "", err
	}
	return signature, nil
}

// confirm waits for the signature via the WebSocket confirmer when one
// is wired, falling back to status polling if the subscription fails.
func (s *Sender) confirm(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	if s.confirmer != nil {
		err := s.confirmer.WaitForSignature(ctx, signature)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("confirm %s: %w", signature, err)
		}
		// Subscription-level failure: the poll below is authoritative.
		s.logger.Printf("signature subscription failed for %s, polling instead: %v", signature, err)
	}

	return s.pollSignature(ctx, signature)
}

// pollSignature polls getSignatureStatuses until the transaction is
// confirmed, fails, or ctx expires.
func (s *Sender) pollSignature(ctx context.Context, signature string) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		statuses, err := s.rpc.GetSignatureStatuses(ctx, []string{signature})
		if err == nil && len(statuses) == 1 && statuses[0] != nil {
			status := statuses[0]
			if status.Failed() {
				return fmt.Errorf("transaction %s failed: %v", signature, status.Err)
			}
			if status.Confirmed() {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}
