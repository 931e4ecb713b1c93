// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pda derives the deterministic addresses that locate every record
// owned by the credit program. A supplied address is only accepted when it
// matches the freshly derived one.
package pda

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrAddressMismatch  = errors.New("address mismatch")
	ErrIdentityRequired = errors.New("namespace requires an identity")
)

// Namespace is the fixed seed tag of one kind of record.
type Namespace string

const (
	Settings       Namespace = "credit_setting"
	TokenReference Namespace = "dpr_token"
	Participant    Namespace = "user"
	MintAuthority  Namespace = "mint_authority"
)

// NeedsIdentity returns true if addresses in [n] are derived per identity.
func (n Namespace) NeedsIdentity() bool {
	return n == Participant
}

// Seeds returns the derivation seeds of [n] for [identity]. [identity] is
// ignored for singleton namespaces.
func Seeds(n Namespace, identity solana.PublicKey) [][]byte {
	if n.NeedsIdentity() {
		return [][]byte{[]byte(n), identity.Bytes()}
	}
	return [][]byte{[]byte(n)}
}

// Derive returns the address of the [n] record owned by [programID] and the
// bump that proves it lies off the curve.
func Derive(programID solana.PublicKey, n Namespace, identity solana.PublicKey) (solana.PublicKey, uint8, error) {
	if n.NeedsIdentity() && identity.IsZero() {
		return solana.PublicKey{}, 0, fmt.Errorf("%w: %s", ErrIdentityRequired, n)
	}
	return solana.FindProgramAddress(Seeds(n, identity), programID)
}

// Verify derives the [n] address and rejects [supplied] unless it matches.
// The bump is returned so callers can sign for the address.
func Verify(programID solana.PublicKey, n Namespace, identity solana.PublicKey, supplied solana.PublicKey) (uint8, error) {
	expected, bump, err := Derive(programID, n, identity)
	if err != nil {
		return 0, err
	}
	if !expected.Equals(supplied) {
		return 0, fmt.Errorf("%w: %s expected %s, got %s", ErrAddressMismatch, n, expected, supplied)
	}
	return bump, nil
}

// SignerSeeds returns the seeds, bump included, that prove authority over the
// [n] address of [identity].
func SignerSeeds(n Namespace, identity solana.PublicKey, bump uint8) [][]byte {
	return append(Seeds(n, identity), []byte{bump})
}

// AssociatedAccount returns the token account of [owner] for [mint].
func AssociatedAccount(owner solana.PublicKey, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}
