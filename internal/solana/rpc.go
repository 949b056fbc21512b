package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface used by the service.
type RPCClient interface {
	// GetTokenBalance returns the owner's balance of the given mint in core units.
	GetTokenBalance(ctx context.Context, owner, mint string) (float64, error)

	// GetLatestBlockhash retrieves a recent blockhash for transaction assembly.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a signed base64 transaction, returning its signature.
	SendTransaction(ctx context.Context, signedTxBase64 string) (string, error)

	// GetSignatureStatuses retrieves confirmation statuses, positionally
	// aligned with the input signatures.
	GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SignatureStatus, error)

	// GetAccountInfo retrieves account info, nil when the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// Compile-time interface check.
var _ RPCClient = (*HTTPClient)(nil)
