// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/gagliardetto/solana-go"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/consts"
	"github.com/ava-labs/creditvm/keys"
	"github.com/ava-labs/creditvm/state"
)

const (
	accountPrefix byte = 0x0

	// MaxAccountDataLen is the largest slot an account can hold.
	MaxAccountDataLen = 10 * 1024

	accountOverhead = consts.AddressLen + consts.Uint64Len + consts.Uint32Len
)

// Account is a slot of program-owned data funded with lamports.
type Account struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// AccountKey is the state key holding the account at [addr].
func AccountKey(addr solana.PublicKey) []byte {
	k := make([]byte, 0, 1+consts.AddressLen)
	k = append(k, accountPrefix)
	k = append(k, addr[:]...)
	// Only fails when the size cannot be expressed in chunks.
	encoded, _ := keys.Encode(k, accountOverhead+MaxAccountDataLen)
	return encoded
}

// Accounts reads and writes accounts through a state view. Every write that
// touches account data is checked against the account owner.
type Accounts struct {
	mu state.Mutable
}

func NewAccounts(mu state.Mutable) *Accounts {
	return &Accounts{mu: mu}
}

// Get returns the account at [addr] or [database.ErrNotFound].
func (a *Accounts) Get(ctx context.Context, addr solana.PublicKey) (*Account, error) {
	v, err := a.mu.GetValue(ctx, AccountKey(addr))
	if err != nil {
		return nil, err
	}
	acct, err := codec.Deserialize[Account](v)
	if err != nil {
		return nil, fmt.Errorf("%w: account %s", err, addr)
	}
	return acct, nil
}

// Exists returns true if an account with data or lamports lives at [addr].
func (a *Accounts) Exists(ctx context.Context, addr solana.PublicKey) (bool, error) {
	_, err := a.Get(ctx, addr)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Owned returns the account at [addr] after checking it belongs to [owner].
func (a *Accounts) Owned(ctx context.Context, owner solana.PublicKey, addr solana.PublicKey) (*Account, error) {
	acct, err := a.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !acct.Owner.Equals(owner) {
		return nil, fmt.Errorf("%w: %s is owned by %s, not %s", ErrNotOwner, addr, acct.Owner, owner)
	}
	return acct, nil
}

func (a *Accounts) put(ctx context.Context, addr solana.PublicKey, acct *Account) error {
	if len(acct.Data) > MaxAccountDataLen {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooLarge, len(acct.Data))
	}
	v, err := codec.Serialize(*acct)
	if err != nil {
		return err
	}
	return a.mu.Insert(ctx, AccountKey(addr), v)
}

// getOrEmpty returns the account at [addr], or an empty system account if
// none exists.
func (a *Accounts) getOrEmpty(ctx context.Context, addr solana.PublicKey) (*Account, error) {
	acct, err := a.Get(ctx, addr)
	if errors.Is(err, database.ErrNotFound) {
		return &Account{Owner: solana.SystemProgramID}, nil
	}
	return acct, err
}

// Airdrop credits [lamports] to [addr], creating a system account if needed.
func (a *Accounts) Airdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) error {
	acct, err := a.getOrEmpty(ctx, addr)
	if err != nil {
		return err
	}
	acct.Lamports, err = smath.Add(acct.Lamports, lamports)
	if err != nil {
		return err
	}
	return a.put(ctx, addr, acct)
}

func (a *Accounts) debit(ctx context.Context, payer solana.PublicKey, lamports uint64) error {
	acct, err := a.Get(ctx, payer)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: payer %s does not exist", ErrInsufficientFunds, payer)
	}
	if err != nil {
		return err
	}
	if !acct.Owner.Equals(solana.SystemProgramID) {
		return fmt.Errorf("%w: payer %s is owned by %s", ErrNotOwner, payer, acct.Owner)
	}
	if acct.Lamports < lamports {
		return fmt.Errorf("%w: payer %s has %d, needs %d", ErrInsufficientFunds, payer, acct.Lamports, lamports)
	}
	acct.Lamports -= lamports
	return a.put(ctx, payer, acct)
}

// CreateAccount allocates [space] zeroed bytes at [addr] for [owner], funded
// by [payer] up to the rent-exempt minimum.
func (a *Accounts) CreateAccount(
	ctx context.Context,
	payer solana.PublicKey,
	addr solana.PublicKey,
	space int,
	owner solana.PublicKey,
) error {
	if space > MaxAccountDataLen {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooLarge, space)
	}
	acct, err := a.getOrEmpty(ctx, addr)
	if err != nil {
		return err
	}
	if len(acct.Data) > 0 || !acct.Owner.Equals(solana.SystemProgramID) {
		return fmt.Errorf("%w: %s", ErrAccountInUse, addr)
	}
	if need := RentExemptMinimum(space); acct.Lamports < need {
		topUp := need - acct.Lamports
		if err := a.debit(ctx, payer, topUp); err != nil {
			return err
		}
		acct.Lamports = need
	}
	acct.Owner = owner
	acct.Data = make([]byte, space)
	return a.put(ctx, addr, acct)
}

// Realloc resizes the data of [addr], owned by [owner], to [space] bytes.
// [payer] covers any increase of the rent-exempt minimum. Retained bytes are
// preserved and new bytes are zeroed.
func (a *Accounts) Realloc(
	ctx context.Context,
	payer solana.PublicKey,
	owner solana.PublicKey,
	addr solana.PublicKey,
	space int,
) error {
	if space > MaxAccountDataLen {
		return fmt.Errorf("%w: %d bytes", ErrAccountTooLarge, space)
	}
	acct, err := a.Owned(ctx, owner, addr)
	if err != nil {
		return err
	}
	if space == len(acct.Data) {
		return nil
	}
	if need := RentExemptMinimum(space); acct.Lamports < need {
		topUp := need - acct.Lamports
		if err := a.debit(ctx, payer, topUp); err != nil {
			return err
		}
		acct.Lamports = need
	}
	data := make([]byte, space)
	copy(data, acct.Data)
	acct.Data = data
	return a.put(ctx, addr, acct)
}

// SetData replaces the data of [addr], owned by [owner]. The slot keeps its
// allocated size.
func (a *Accounts) SetData(ctx context.Context, owner solana.PublicKey, addr solana.PublicKey, data []byte) error {
	acct, err := a.Owned(ctx, owner, addr)
	if err != nil {
		return err
	}
	if len(data) != len(acct.Data) {
		return fmt.Errorf("%w: %s holds %d bytes, got %d", ErrSlotSizeMismatch, addr, len(acct.Data), len(data))
	}
	acct.Data = data
	return a.put(ctx, addr, acct)
}
