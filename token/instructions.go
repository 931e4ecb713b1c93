// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/pda"
)

const (
	CreateMintID uint8 = iota
	CreateAssociatedAccountID
	MintToID
)

type CreateMintArgs struct {
	Authority solana.PublicKey
	Decimals  uint8
}

type MintToArgs struct {
	Amount uint64
}

// NewCreateMintInstruction creates [mint], paid for by [payer]. Both sign.
func NewCreateMintInstruction(payer, mint, authority solana.PublicKey, decimals uint8) (*solana.GenericInstruction, error) {
	return newInstruction(CreateMintID, CreateMintArgs{Authority: authority, Decimals: decimals}, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(mint).WRITE().SIGNER(),
	})
}

// NewCreateAssociatedAccountInstruction creates the [mint] account of [owner].
func NewCreateAssociatedAccountInstruction(payer, owner, mint solana.PublicKey) (*solana.GenericInstruction, error) {
	addr, err := pda.AssociatedAccount(owner, mint)
	if err != nil {
		return nil, err
	}
	return newInstruction(CreateAssociatedAccountID, struct{}{}, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(addr).WRITE(),
		solana.Meta(owner),
		solana.Meta(mint),
	})
}

// NewMintToInstruction mints [amount] to [dest], signed by [authority].
func NewMintToInstruction(mint, dest, authority solana.PublicKey, amount uint64) (*solana.GenericInstruction, error) {
	return newInstruction(MintToID, MintToArgs{Amount: amount}, solana.AccountMetaSlice{
		solana.Meta(mint).WRITE(),
		solana.Meta(dest).WRITE(),
		solana.Meta(authority).SIGNER(),
	})
}

func newInstruction[T any](id uint8, args T, accounts solana.AccountMetaSlice) (*solana.GenericInstruction, error) {
	body, err := codec.Serialize(args)
	if err != nil {
		return nil, err
	}
	data := append([]byte{id}, body...)
	return solana.NewInstruction(ProgramID, accounts, data), nil
}

func (s *Service) Execute(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstructionData
	}
	switch data[0] {
	case CreateMintID:
		if len(accounts) < 2 {
			return ErrNotEnoughAccounts
		}
		args, err := codec.Deserialize[CreateMintArgs](data[1:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
		}
		payer, mint := accounts[0].PublicKey, accounts[1].PublicKey
		if !hctx.IsSigner(payer) || !hctx.IsSigner(mint) {
			return ErrMissingSignature
		}
		return s.CreateMint(ctx, hctx, payer, mint, args.Authority, args.Decimals)
	case CreateAssociatedAccountID:
		if len(accounts) < 4 {
			return ErrNotEnoughAccounts
		}
		payer := accounts[0].PublicKey
		if !hctx.IsSigner(payer) {
			return ErrMissingSignature
		}
		_, err := s.CreateAssociatedAccount(ctx, hctx, payer, accounts[2].PublicKey, accounts[3].PublicKey)
		return err
	case MintToID:
		if len(accounts) < 3 {
			return ErrNotEnoughAccounts
		}
		args, err := codec.Deserialize[MintToArgs](data[1:])
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
		}
		return s.MintTo(ctx, hctx, accounts[0].PublicKey, accounts[1].PublicKey, accounts[2].PublicKey, nil, args.Amount)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownInstruction, data[0])
	}
}
