// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/consts"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/ledger"
	"github.com/ava-labs/creditvm/settings"
)

// Layout of program-owned slots:
//
//	settings         -> direct [SettingsRecord]
//	token reference  -> direct [TokenReference]
//	participant      -> framed [ledger.Record] in a [ParticipantSlotLen] slot

// SettingsRecord is the stored form of a [settings.Table].
type SettingsRecord struct {
	Authority solana.PublicKey
	Entries   []settings.Entry
}

type TokenReference struct {
	Token solana.PublicKey
}

// HasData returns true if a slot holding data lives at [addr].
func HasData(ctx context.Context, accounts *host.Accounts, addr solana.PublicKey) (bool, error) {
	acct, err := accounts.Get(ctx, addr)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(acct.Data) > 0, nil
}

func encodeSettings(table *settings.Table) ([]byte, error) {
	return codec.EncodeDirect(SettingsRecord{
		Authority: table.Authority(),
		Entries:   table.Entries(),
	})
}

// CreateSettings allocates the settings slot sized to [table].
func CreateSettings(
	ctx context.Context,
	accounts *host.Accounts,
	program solana.PublicKey,
	payer solana.PublicKey,
	addr solana.PublicKey,
	table *settings.Table,
) error {
	b, err := encodeSettings(table)
	if err != nil {
		return err
	}
	if err := accounts.CreateAccount(ctx, payer, addr, len(b), program); err != nil {
		return err
	}
	return accounts.SetData(ctx, program, addr, b)
}

// ReplaceSettings overwrites the settings slot with [table], resizing it
// when the encoded length changes.
func ReplaceSettings(
	ctx context.Context,
	accounts *host.Accounts,
	program solana.PublicKey,
	payer solana.PublicKey,
	addr solana.PublicKey,
	table *settings.Table,
) error {
	b, err := encodeSettings(table)
	if err != nil {
		return err
	}
	if err := accounts.Realloc(ctx, payer, program, addr, len(b)); err != nil {
		return err
	}
	return accounts.SetData(ctx, program, addr, b)
}

func GetSettings(ctx context.Context, accounts *host.Accounts, program solana.PublicKey, addr solana.PublicKey) (*settings.Table, error) {
	acct, err := accounts.Owned(ctx, program, addr)
	if err != nil {
		return nil, err
	}
	r, err := codec.DecodeDirect[SettingsRecord](acct.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: settings %s", err, addr)
	}
	table, err := settings.New(r.Authority, r.Entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", codec.ErrCorruptRecord, err)
	}
	return table, nil
}

func CreateTokenReference(
	ctx context.Context,
	accounts *host.Accounts,
	program solana.PublicKey,
	payer solana.PublicKey,
	addr solana.PublicKey,
	token solana.PublicKey,
) error {
	if err := accounts.CreateAccount(ctx, payer, addr, TokenReferenceLen, program); err != nil {
		return err
	}
	return PutTokenReference(ctx, accounts, program, addr, token)
}

func PutTokenReference(
	ctx context.Context,
	accounts *host.Accounts,
	program solana.PublicKey,
	addr solana.PublicKey,
	token solana.PublicKey,
) error {
	b, err := codec.EncodeDirect(TokenReference{Token: token})
	if err != nil {
		return err
	}
	return accounts.SetData(ctx, program, addr, b)
}

func GetTokenReference(ctx context.Context, accounts *host.Accounts, program solana.PublicKey, addr solana.PublicKey) (solana.PublicKey, error) {
	acct, err := accounts.Owned(ctx, program, addr)
	if err != nil {
		return solana.PublicKey{}, err
	}
	r, err := codec.DecodeDirect[TokenReference](acct.Data)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: token reference %s", err, addr)
	}
	return r.Token, nil
}

// CreateParticipant allocates a full participant slot at [addr] and frames
// [record] into it.
func CreateParticipant(
	ctx context.Context,
	accounts *host.Accounts,
	program solana.PublicKey,
	payer solana.PublicKey,
	addr solana.PublicKey,
	record *ledger.Record,
) error {
	if err := accounts.CreateAccount(ctx, payer, addr, ParticipantSlotLen, program); err != nil {
		return err
	}
	return PutParticipant(ctx, accounts, program, addr, record)
}

// PutParticipant frames [record] into the existing slot at [addr]. Bytes past
// the new payload keep whatever they held.
func PutParticipant(
	ctx context.Context,
	accounts *host.Accounts,
	program solana.PublicKey,
	addr solana.PublicKey,
	record *ledger.Record,
) error {
	acct, err := accounts.Owned(ctx, program, addr)
	if err != nil {
		return err
	}
	slot := make([]byte, len(acct.Data))
	copy(slot, acct.Data)
	if err := codec.EncodeFramed(slot, *record); err != nil {
		return fmt.Errorf("%w: participant %s", err, addr)
	}
	return accounts.SetData(ctx, program, addr, slot)
}

// GetParticipant decodes the record framed in the slot at [addr].
func GetParticipant(ctx context.Context, accounts *host.Accounts, program solana.PublicKey, addr solana.PublicKey) (*ledger.Record, error) {
	acct, err := accounts.Owned(ctx, program, addr)
	if err != nil {
		return nil, err
	}
	record, err := DecodeParticipant(acct.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: participant %s", err, addr)
	}
	return record, nil
}

// DecodeParticipant decodes a framed participant slot.
func DecodeParticipant(slot []byte) (*ledger.Record, error) {
	payload, err := codec.ReadFramed(slot)
	if err != nil {
		return nil, err
	}
	if len(payload) < ledger.RecordHeaderLen {
		return nil, fmt.Errorf("%w: %w", codec.ErrCorruptRecord, codec.ErrInsufficientLength)
	}
	// Bound the history before handing it to the decoder.
	if n := binary.LittleEndian.Uint32(payload[historyCountOffset:]); n > consts.MaxHistory {
		return nil, fmt.Errorf("%w: history holds %d level changes", codec.ErrCorruptRecord, n)
	}
	record, err := codec.DecodeDirect[ledger.Record](payload)
	if err != nil {
		return nil, err
	}
	if err := record.Verify(); err != nil {
		return nil, err
	}
	return record, nil
}
