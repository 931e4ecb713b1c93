// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host_test

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/hosttest"
)

func newAccounts(t *testing.T) (*host.Accounts, solana.PublicKey) {
	accounts := host.NewAccounts(hosttest.NewInMemoryStore())
	payer := hosttest.NewKey(t)
	require.NoError(t, accounts.Airdrop(context.Background(), payer, 1_000_000_000))
	return accounts, payer
}

func TestRentExemptMinimum(t *testing.T) {
	require := require.New(t)
	require.Equal(uint64(128*3480*2), host.RentExemptMinimum(0))
	require.Equal(uint64((128+718)*3480*2), host.RentExemptMinimum(718))
}

func TestGetMissing(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts := host.NewAccounts(hosttest.NewInMemoryStore())

	_, err := accounts.Get(ctx, hosttest.NewKey(t))
	require.ErrorIs(err, database.ErrNotFound)
	exists, err := accounts.Exists(ctx, hosttest.NewKey(t))
	require.NoError(err)
	require.False(exists)
}

func TestAirdrop(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts, payer := newAccounts(t)

	require.NoError(accounts.Airdrop(ctx, payer, 5))
	acct, err := accounts.Get(ctx, payer)
	require.NoError(err)
	require.Equal(solana.SystemProgramID, acct.Owner)
	require.Equal(uint64(1_000_000_005), acct.Lamports)
	require.Empty(acct.Data)
}

func TestCreateAccount(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts, payer := newAccounts(t)
	owner := hosttest.NewKey(t)
	addr := hosttest.NewKey(t)

	require.NoError(accounts.CreateAccount(ctx, payer, addr, 32, owner))

	acct, err := accounts.Owned(ctx, owner, addr)
	require.NoError(err)
	require.Equal(make([]byte, 32), acct.Data)
	require.Equal(host.RentExemptMinimum(32), acct.Lamports)

	payerAcct, err := accounts.Get(ctx, payer)
	require.NoError(err)
	require.Equal(1_000_000_000-host.RentExemptMinimum(32), payerAcct.Lamports)

	_, err = accounts.Owned(ctx, payer, addr)
	require.ErrorIs(err, host.ErrNotOwner)

	// An account can only be created once.
	require.ErrorIs(accounts.CreateAccount(ctx, payer, addr, 32, owner), host.ErrAccountInUse)
}

func TestCreateAccountPrefunded(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts, payer := newAccounts(t)
	owner := hosttest.NewKey(t)
	addr := hosttest.NewKey(t)

	// Lamports sent ahead of creation count toward the minimum.
	require.NoError(accounts.Airdrop(ctx, addr, 1000))
	require.NoError(accounts.CreateAccount(ctx, payer, addr, 0, owner))

	payerAcct, err := accounts.Get(ctx, payer)
	require.NoError(err)
	require.Equal(1_000_000_000-(host.RentExemptMinimum(0)-1000), payerAcct.Lamports)
}

func TestCreateAccountErrors(t *testing.T) {
	ctx := context.Background()
	owner := solana.TokenProgramID

	tests := []struct {
		name  string
		space int
		fund  uint64
		err   error
	}{
		{
			name:  "too large",
			space: host.MaxAccountDataLen + 1,
			fund:  1_000_000_000,
			err:   host.ErrAccountTooLarge,
		},
		{
			name:  "payer cannot cover rent",
			space: 100,
			fund:  1,
			err:   host.ErrInsufficientFunds,
		},
		{
			name:  "payer does not exist",
			space: 100,
			err:   host.ErrInsufficientFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := host.NewAccounts(hosttest.NewInMemoryStore())
			payer := hosttest.NewKey(t)
			if tt.fund > 0 {
				require.NoError(t, accounts.Airdrop(ctx, payer, tt.fund))
			}
			err := accounts.CreateAccount(ctx, payer, hosttest.NewKey(t), tt.space, owner)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestProgramOwnedPayer(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts, payer := newAccounts(t)
	owner := hosttest.NewKey(t)
	funded := hosttest.NewKey(t)

	require.NoError(accounts.CreateAccount(ctx, payer, funded, 0, owner))
	require.NoError(accounts.Airdrop(ctx, funded, 1_000_000_000))
	require.ErrorIs(accounts.CreateAccount(ctx, funded, hosttest.NewKey(t), 0, owner), host.ErrNotOwner)
}

func TestSetData(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts, payer := newAccounts(t)
	owner := hosttest.NewKey(t)
	addr := hosttest.NewKey(t)
	require.NoError(accounts.CreateAccount(ctx, payer, addr, 4, owner))

	require.NoError(accounts.SetData(ctx, owner, addr, []byte{1, 2, 3, 4}))
	acct, err := accounts.Get(ctx, addr)
	require.NoError(err)
	require.Equal([]byte{1, 2, 3, 4}, acct.Data)

	require.ErrorIs(accounts.SetData(ctx, owner, addr, []byte{1, 2, 3}), host.ErrSlotSizeMismatch)
	require.ErrorIs(accounts.SetData(ctx, payer, addr, []byte{1, 2, 3, 4}), host.ErrNotOwner)
	require.ErrorIs(accounts.SetData(ctx, owner, hosttest.NewKey(t), nil), database.ErrNotFound)
}

func TestRealloc(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	accounts, payer := newAccounts(t)
	owner := hosttest.NewKey(t)
	addr := hosttest.NewKey(t)
	require.NoError(accounts.CreateAccount(ctx, payer, addr, 4, owner))
	require.NoError(accounts.SetData(ctx, owner, addr, []byte{1, 2, 3, 4}))

	// Growing keeps the existing bytes and charges the payer.
	require.NoError(accounts.Realloc(ctx, payer, owner, addr, 6))
	acct, err := accounts.Get(ctx, addr)
	require.NoError(err)
	require.Equal([]byte{1, 2, 3, 4, 0, 0}, acct.Data)
	require.Equal(host.RentExemptMinimum(6), acct.Lamports)

	// Shrinking truncates and refunds nothing.
	require.NoError(accounts.Realloc(ctx, payer, owner, addr, 2))
	acct, err = accounts.Get(ctx, addr)
	require.NoError(err)
	require.Equal([]byte{1, 2}, acct.Data)
	require.Equal(host.RentExemptMinimum(6), acct.Lamports)

	require.ErrorIs(accounts.Realloc(ctx, payer, payer, addr, 8), host.ErrNotOwner)
	require.ErrorIs(accounts.Realloc(ctx, payer, owner, addr, host.MaxAccountDataLen+1), host.ErrAccountTooLarge)
}
