package spl

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program addresses.
const (
	TokenProgramID           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramID = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	SystemProgramID          = "11111111111111111111111111111111"
)

// pdaMarker terminates program-derived address seed hashing.
const pdaMarker = "ProgramDerivedAddress"

// DecodeAddress decodes a base58 address into its 32 raw bytes.
func DecodeAddress(addr string) ([]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", addr, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("address %q is %d bytes, want 32", addr, len(raw))
	}
	return raw, nil
}

// FindAssociatedTokenAddress derives the associated token account for
// (wallet, mint): the program-derived address over the seeds
// [wallet, token program, mint] under the associated token program,
// found at the highest bump that lands off the ed25519 curve.
func FindAssociatedTokenAddress(wallet, mint string) (string, error) {
	walletRaw, err := DecodeAddress(wallet)
	if err != nil {
		return "", err
	}
	mintRaw, err := DecodeAddress(mint)
	if err != nil {
		return "", err
	}
	tokenProgRaw, err := DecodeAddress(TokenProgramID)
	if err != nil {
		return "", err
	}
	ataProgRaw, err := DecodeAddress(AssociatedTokenProgramID)
	if err != nil {
		return "", err
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		h.Write(walletRaw)
		h.Write(tokenProgRaw)
		h.Write(mintRaw)
		h.Write([]byte{byte(bump)})
		h.Write(ataProgRaw)
		h.Write([]byte(pdaMarker))
		candidate := h.Sum(nil)

		if !isOnCurve(candidate) {
			return base58.Encode(candidate), nil
		}
	}

	return "", fmt.Errorf("no off-curve associated token address for wallet %s", wallet)
}

// isOnCurve reports whether b is a valid ed25519 curve point. Program
// derived addresses must not be valid points, so nobody holds a private
// key for them.
func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
