// Package spl builds and signs SPL token transactions without a node-side
// wallet: keypair handling, associated token account derivation, and
// legacy message serialization.
package spl

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Keypair is the ed25519 signing keypair of the service wallet.
type Keypair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// ParseSecret decodes a wallet secret in either of the formats the
// Solana tooling produces: a JSON array of byte values (64-byte secret
// key or 32-byte seed, as exported by solana-keygen) or a base58 string.
func ParseSecret(secret string) (*Keypair, error) {
	if secret == "" {
		return nil, fmt.Errorf("empty wallet secret")
	}

	var ints []int
	if err := json.Unmarshal([]byte(secret), &ints); err == nil {
		raw := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("secret byte %d out of range at index %d", v, i)
			}
			raw[i] = byte(v)
		}
		return fromSecretBytes(raw)
	}

	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("decode base58 secret: %w", err)
	}
	return fromSecretBytes(raw)
}

// fromSecretBytes accepts a 64-byte secret key or a 32-byte seed.
func fromSecretBytes(raw []byte) (*Keypair, error) {
	switch len(raw) {
	case ed25519.PrivateKeySize:
		priv := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
		if !bytes.Equal(priv[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
			return nil, fmt.Errorf("secret key public half does not match seed")
		}
		return &Keypair{
			PublicKey:  priv.Public().(ed25519.PublicKey),
			PrivateKey: priv,
		}, nil
	case ed25519.SeedSize:
		priv := ed25519.NewKeyFromSeed(raw)
		return &Keypair{
			PublicKey:  priv.Public().(ed25519.PublicKey),
			PrivateKey: priv,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported secret length %d: want 32 or 64 bytes", len(raw))
	}
}

// Address returns the wallet's base58 public key.
func (k *Keypair) Address() string {
	return base58.Encode(k.PublicKey)
}

// Sign signs the message with the wallet's private key.
func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.PrivateKey, message)
}
