// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE} -destination=mock_tokens.go . Tokens

package program

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/token"
)

var _ Tokens = (*token.Service)(nil)

// Tokens is the fungible-token program rewards are minted through.
type Tokens interface {
	CreateAssociatedAccount(
		ctx context.Context,
		hctx *host.Context,
		payer solana.PublicKey,
		owner solana.PublicKey,
		mint solana.PublicKey,
	) (solana.PublicKey, error)
	MintTo(
		ctx context.Context,
		hctx *host.Context,
		mint solana.PublicKey,
		dest solana.PublicKey,
		authority solana.PublicKey,
		seeds [][]byte,
		amount uint64,
	) error
}
