// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/pda"
	"github.com/ava-labs/creditvm/settings"
)

// Instruction tags. The tag is the first byte of instruction data and is
// followed by the borsh encoding of the instruction arguments.
const (
	InitID uint8 = iota
	AddCreditID
	SetTokenReferenceID
	ClaimID
	UpdateSettingsID
)

// Number of accounts each instruction expects, in the order documented on
// its builder.
const (
	initAccounts              = 4
	addCreditAccounts         = 4
	setTokenReferenceAccounts = 3
	claimAccounts             = 7
	updateSettingsAccounts    = 2
)

type InitArgs struct {
	Entries []settings.Entry
	Token   solana.PublicKey
}

type AddCreditArgs struct {
	Identity    solana.PublicKey
	CampaignID  uint16
	Delta       int32
	RewardSince uint32
}

type SetTokenReferenceArgs struct {
	Token solana.PublicKey
}

type ClaimArgs struct{}

type UpdateSettingsArgs struct {
	Entries []settings.Entry
}

func instructionName(id uint8) string {
	switch id {
	case InitID:
		return "init"
	case AddCreditID:
		return "add_credit"
	case SetTokenReferenceID:
		return "set_token_reference"
	case ClaimID:
		return "claim"
	case UpdateSettingsID:
		return "update_settings"
	default:
		return "unknown"
	}
}

// EncodeInstruction prefixes the borsh encoding of [args] with [id].
func EncodeInstruction[T any](id uint8, args T) ([]byte, error) {
	body, err := codec.Serialize(args)
	if err != nil {
		return nil, err
	}
	return append([]byte{id}, body...), nil
}

func decodeArgs[T any](body []byte) (*T, error) {
	args, err := codec.Deserialize[T](body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	return args, nil
}

func derive(programID solana.PublicKey, n pda.Namespace, identity solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := pda.Derive(programID, n, identity)
	return addr, err
}

// NewInitInstruction creates the settings, token reference and mint
// authority accounts of [programID], paid for by [payer], who becomes the
// settings authority.
//
// Accounts: payer (signer, writable), settings, token reference, mint
// authority (all writable).
func NewInitInstruction(
	programID solana.PublicKey,
	payer solana.PublicKey,
	entries []settings.Entry,
	token solana.PublicKey,
) (*solana.GenericInstruction, error) {
	settingsAddr, err := derive(programID, pda.Settings, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	tokenAddr, err := derive(programID, pda.TokenReference, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	mintAuthority, err := derive(programID, pda.MintAuthority, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	data, err := EncodeInstruction(InitID, InitArgs{Entries: entries, Token: token})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(settingsAddr).WRITE(),
		solana.Meta(tokenAddr).WRITE(),
		solana.Meta(mintAuthority).WRITE(),
	}, data), nil
}

// NewAddCreditInstruction adjusts the credit of [identity] by [delta].
//
// Accounts: payer (signer, writable), authority (signer), settings,
// participant record (writable).
func NewAddCreditInstruction(
	programID solana.PublicKey,
	payer solana.PublicKey,
	authority solana.PublicKey,
	identity solana.PublicKey,
	campaign uint16,
	delta int32,
	rewardSince uint32,
) (*solana.GenericInstruction, error) {
	settingsAddr, err := derive(programID, pda.Settings, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	record, err := derive(programID, pda.Participant, identity)
	if err != nil {
		return nil, err
	}
	data, err := EncodeInstruction(AddCreditID, AddCreditArgs{
		Identity:    identity,
		CampaignID:  campaign,
		Delta:       delta,
		RewardSince: rewardSince,
	})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(authority).SIGNER(),
		solana.Meta(settingsAddr),
		solana.Meta(record).WRITE(),
	}, data), nil
}

// NewSetTokenReferenceInstruction points rewards at [token].
//
// Accounts: authority (signer), settings, token reference (writable).
func NewSetTokenReferenceInstruction(
	programID solana.PublicKey,
	authority solana.PublicKey,
	token solana.PublicKey,
) (*solana.GenericInstruction, error) {
	settingsAddr, err := derive(programID, pda.Settings, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	tokenAddr, err := derive(programID, pda.TokenReference, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	data, err := EncodeInstruction(SetTokenReferenceID, SetTokenReferenceArgs{Token: token})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(authority).SIGNER(),
		solana.Meta(settingsAddr),
		solana.Meta(tokenAddr).WRITE(),
	}, data), nil
}

// NewClaimInstruction mints the reward [participant] has accrued in [mint].
//
// Accounts: participant (signer, writable), mint authority, participant
// record (writable), receiving account (writable), token reference, mint
// (writable), settings.
func NewClaimInstruction(
	programID solana.PublicKey,
	participant solana.PublicKey,
	mint solana.PublicKey,
) (*solana.GenericInstruction, error) {
	mintAuthority, err := derive(programID, pda.MintAuthority, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	record, err := derive(programID, pda.Participant, participant)
	if err != nil {
		return nil, err
	}
	receiving, err := pda.AssociatedAccount(participant, mint)
	if err != nil {
		return nil, err
	}
	tokenAddr, err := derive(programID, pda.TokenReference, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	settingsAddr, err := derive(programID, pda.Settings, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	data, err := EncodeInstruction(ClaimID, ClaimArgs{})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(participant).WRITE().SIGNER(),
		solana.Meta(mintAuthority),
		solana.Meta(record).WRITE(),
		solana.Meta(receiving).WRITE(),
		solana.Meta(tokenAddr),
		solana.Meta(mint).WRITE(),
		solana.Meta(settingsAddr),
	}, data), nil
}

// NewUpdateSettingsInstruction replaces the reward-rate table.
//
// Accounts: authority (signer, writable), settings (writable).
func NewUpdateSettingsInstruction(
	programID solana.PublicKey,
	authority solana.PublicKey,
	entries []settings.Entry,
) (*solana.GenericInstruction, error) {
	settingsAddr, err := derive(programID, pda.Settings, solana.PublicKey{})
	if err != nil {
		return nil, err
	}
	data, err := EncodeInstruction(UpdateSettingsID, UpdateSettingsArgs{Entries: entries})
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(authority).WRITE().SIGNER(),
		solana.Meta(settingsAddr).WRITE(),
	}, data), nil
}
