// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/hosttest"
	"github.com/ava-labs/creditvm/tstate"
)

var errAbort = errors.New("abort")

// slotProgram creates accounts[1] paid by accounts[0] and fills it with the
// instruction data. A leading 0xff aborts after the write.
type slotProgram struct {
	id solana.PublicKey
}

func (p *slotProgram) ID() solana.PublicKey { return p.id }

func (p *slotProgram) Execute(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, data []byte) error {
	payer, slot := accounts[0].PublicKey, accounts[1].PublicKey
	if !hctx.IsSigner(payer) {
		return errors.New("payer did not sign")
	}
	if err := hctx.Accounts.CreateAccount(ctx, payer, slot, len(data), p.id); err != nil {
		return err
	}
	if err := hctx.Accounts.SetData(ctx, p.id, slot, data); err != nil {
		return err
	}
	if len(data) > 0 && data[0] == 0xff {
		return errAbort
	}
	return nil
}

func slotInstruction(programID, payer, slot solana.PublicKey, writable bool, data []byte) solana.Instruction {
	meta := solana.Meta(slot)
	if writable {
		meta = meta.WRITE()
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		meta,
	}, data)
}

func TestRuntimeExecute(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	store := hosttest.NewInMemoryStore()
	p := &slotProgram{id: hosttest.NewKey(t)}
	rt, _ := hosttest.NewRuntime(t, store, time.Unix(0, 0), p)

	payer := hosttest.NewKey(t)
	slot := hosttest.NewKey(t)
	require.NoError(rt.Airdrop(ctx, payer, 1_000_000_000))

	require.NoError(rt.Execute(ctx, &host.Transaction{
		Instruction: slotInstruction(p.id, payer, slot, true, []byte{1, 2, 3}),
		Signers:     []solana.PublicKey{payer},
	}))

	require.NoError(rt.View(ctx, []solana.PublicKey{slot}, func(accounts *host.Accounts) error {
		acct, err := accounts.Owned(ctx, p.id, slot)
		require.NoError(err)
		require.Equal([]byte{1, 2, 3}, acct.Data)
		return nil
	}))
}

func TestRuntimeRollback(t *testing.T) {
	p := &slotProgram{id: solana.PublicKey{1}}
	payer := solana.PublicKey{2}
	slot := solana.PublicKey{3}
	funded := func(ctx context.Context, t *testing.T, rt *host.Runtime) {
		require.NoError(t, rt.Airdrop(ctx, payer, 1_000_000_000))
	}

	suite := &hosttest.InstructionTestSuite{
		Tests: map[string]hosttest.InstructionTest{
			"program error discards writes": {
				Programs:    []host.Program{p},
				Setup:       funded,
				Instruction: slotInstruction(p.id, payer, slot, true, []byte{0xff, 1}),
				Signers:     []solana.PublicKey{payer},
				ExpectedErr: errAbort,
			},
			"undeclared write": {
				Programs:    []host.Program{p},
				Setup:       funded,
				Instruction: slotInstruction(p.id, payer, slot, false, []byte{1}),
				Signers:     []solana.PublicKey{payer},
				ExpectedErr: tstate.ErrInvalidKeyOrPermission,
			},
			"unknown program": {
				Setup:       funded,
				Instruction: slotInstruction(p.id, payer, slot, true, []byte{1}),
				Signers:     []solana.PublicKey{payer},
				ExpectedErr: host.ErrUnknownProgram,
			},
			"payer cannot fund": {
				Programs:    []host.Program{p},
				Instruction: slotInstruction(p.id, payer, slot, true, []byte{1}),
				Signers:     []solana.PublicKey{payer},
				ExpectedErr: host.ErrInsufficientFunds,
			},
		},
	}
	suite.Run(t)
}

func TestRuntimeRegisterTwice(t *testing.T) {
	p := &slotProgram{id: solana.PublicKey{1}}
	rt, _ := hosttest.NewRuntime(t, hosttest.NewInMemoryStore(), time.Unix(0, 0), p)
	require.ErrorIs(t, rt.Register(p), host.ErrDuplicateProgram)
}

func TestRuntimeClock(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	now := time.Unix(86400*10, 0)
	var seen time.Time
	p := &clockProgram{id: solana.PublicKey{1}, seen: &seen}
	rt, clock := hosttest.NewRuntime(t, hosttest.NewInMemoryStore(), now, p)

	clock.Advance(time.Hour)
	require.NoError(rt.Execute(ctx, &host.Transaction{
		Instruction: solana.NewInstruction(p.id, nil, nil),
	}))
	require.Equal(now.Add(time.Hour), seen)
	require.Equal(now.Add(time.Hour), rt.Now())
}

type clockProgram struct {
	id   solana.PublicKey
	seen *time.Time
}

func (p *clockProgram) ID() solana.PublicKey { return p.id }

func (p *clockProgram) Execute(_ context.Context, hctx *host.Context, _ []*solana.AccountMeta, _ []byte) error {
	*p.seen = hctx.Now
	return nil
}
