// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token is the fungible-token program credit rewards are minted
// through.
package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/consts"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/pda"
)

var (
	ErrWrongAuthority         = errors.New("wrong mint authority")
	ErrMintMismatch           = errors.New("token account belongs to another mint")
	ErrWrongAssociatedOwner   = errors.New("associated account owned by another wallet")
	ErrUnknownInstruction     = errors.New("unknown token instruction")
	ErrNotEnoughAccounts      = errors.New("not enough accounts")
	ErrMissingSignature       = errors.New("missing signature")
	ErrInvalidInstructionData = errors.New("invalid instruction data")
)

const (
	MintLen    = consts.AddressLen + consts.Uint64Len + consts.ByteLen
	AccountLen = 2*consts.AddressLen + consts.Uint64Len
)

// ProgramID is the address the token program runs under.
var ProgramID = solana.TokenProgramID

type Mint struct {
	MintAuthority solana.PublicKey
	Supply        uint64
	Decimals      uint8
}

type Account struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}

var _ host.Program = (*Service)(nil)

type Service struct{}

func New() *Service {
	return &Service{}
}

func (*Service) ID() solana.PublicKey {
	return ProgramID
}

// CreateMint allocates [mint] with [authority] as the only identity allowed
// to mint.
func (*Service) CreateMint(
	ctx context.Context,
	hctx *host.Context,
	payer solana.PublicKey,
	mint solana.PublicKey,
	authority solana.PublicKey,
	decimals uint8,
) error {
	if err := hctx.Accounts.CreateAccount(ctx, payer, mint, MintLen, ProgramID); err != nil {
		return err
	}
	return store(ctx, hctx.Accounts, mint, Mint{MintAuthority: authority, Decimals: decimals})
}

// CreateAssociatedAccount returns the associated token account of [owner]
// for [mint], creating it on the first call.
func (*Service) CreateAssociatedAccount(
	ctx context.Context,
	hctx *host.Context,
	payer solana.PublicKey,
	owner solana.PublicKey,
	mint solana.PublicKey,
) (solana.PublicKey, error) {
	addr, err := pda.AssociatedAccount(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := GetMint(ctx, hctx.Accounts, mint); err != nil {
		return solana.PublicKey{}, err
	}
	exists, err := hctx.Accounts.Exists(ctx, addr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if exists {
		acct, err := GetAccount(ctx, hctx.Accounts, addr)
		if err != nil {
			return solana.PublicKey{}, err
		}
		if !acct.Mint.Equals(mint) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrMintMismatch, addr)
		}
		if !acct.Owner.Equals(owner) {
			return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrWrongAssociatedOwner, addr)
		}
		return addr, nil
	}
	if err := hctx.Accounts.CreateAccount(ctx, payer, addr, AccountLen, ProgramID); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, store(ctx, hctx.Accounts, addr, Account{Mint: mint, Owner: owner})
}

// MintTo credits [amount] new tokens of [mint] to [dest]. [authority] must be
// the mint authority and either sign the transaction or be the address
// [seeds] derive under the calling program.
func (*Service) MintTo(
	ctx context.Context,
	hctx *host.Context,
	mint solana.PublicKey,
	dest solana.PublicKey,
	authority solana.PublicKey,
	seeds [][]byte,
	amount uint64,
) error {
	m, err := GetMint(ctx, hctx.Accounts, mint)
	if err != nil {
		return err
	}
	if !m.MintAuthority.Equals(authority) {
		return fmt.Errorf("%w: mint %s expects %s, got %s", ErrWrongAuthority, mint, m.MintAuthority, authority)
	}
	if !hctx.IsSigner(authority) {
		if len(seeds) == 0 {
			return fmt.Errorf("%w: %s did not sign", ErrWrongAuthority, authority)
		}
		derived, err := solana.CreateProgramAddress(seeds, hctx.ProgramID)
		if err != nil || !derived.Equals(authority) {
			return fmt.Errorf("%w: seeds do not derive %s", ErrWrongAuthority, authority)
		}
	}
	acct, err := GetAccount(ctx, hctx.Accounts, dest)
	if err != nil {
		return err
	}
	if !acct.Mint.Equals(mint) {
		return fmt.Errorf("%w: %s", ErrMintMismatch, dest)
	}
	if m.Supply, err = smath.Add(m.Supply, amount); err != nil {
		return err
	}
	if acct.Amount, err = smath.Add(acct.Amount, amount); err != nil {
		return err
	}
	if err := store(ctx, hctx.Accounts, mint, *m); err != nil {
		return err
	}
	return store(ctx, hctx.Accounts, dest, *acct)
}

func GetMint(ctx context.Context, accounts *host.Accounts, addr solana.PublicKey) (*Mint, error) {
	return load[Mint](ctx, accounts, addr)
}

func GetAccount(ctx context.Context, accounts *host.Accounts, addr solana.PublicKey) (*Account, error) {
	return load[Account](ctx, accounts, addr)
}

func load[T any](ctx context.Context, accounts *host.Accounts, addr solana.PublicKey) (*T, error) {
	acct, err := accounts.Owned(ctx, ProgramID, addr)
	if err != nil {
		return nil, err
	}
	return codec.DecodeDirect[T](acct.Data)
}

func store[T any](ctx context.Context, accounts *host.Accounts, addr solana.PublicKey, value T) error {
	b, err := codec.EncodeDirect(value)
	if err != nil {
		return err
	}
	return accounts.SetData(ctx, ProgramID, addr, b)
}
