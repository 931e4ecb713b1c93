// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hosttest

import (
	"context"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/state"
	"github.com/ava-labs/creditvm/trace"
)

var _ state.Mutable = (*InMemoryStore)(nil)

// InMemoryStore is a storage that acts as a wrapper around a map and implements state.Mutable.
type InMemoryStore struct {
	Storage map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Storage: make(map[string][]byte),
	}
}

func (s *InMemoryStore) GetValue(_ context.Context, key []byte) ([]byte, error) {
	val, ok := s.Storage[string(key)]
	if !ok {
		return nil, database.ErrNotFound
	}
	return val, nil
}

func (s *InMemoryStore) Insert(_ context.Context, key []byte, value []byte) error {
	s.Storage[string(key)] = value
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, key []byte) error {
	delete(s.Storage, string(key))
	return nil
}

// Snapshot returns a copy of every stored value.
func (s *InMemoryStore) Snapshot() map[string][]byte {
	out := make(map[string][]byte, len(s.Storage))
	for k, v := range s.Storage {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// NewKey returns a fresh random identity.
func NewKey(t testing.TB) solana.PublicKey {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return priv.PublicKey()
}

// NewRuntime returns a runtime over [store] with a fake clock starting at
// [now] and every program in [programs] registered.
func NewRuntime(t testing.TB, store state.Mutable, now time.Time, programs ...host.Program) (*host.Runtime, *clockwork.FakeClock) {
	tracer, err := trace.New(&trace.Config{Enabled: false})
	require.NoError(t, err)
	clock := clockwork.NewFakeClockAt(now)
	rt := host.NewRuntime(logging.NoLog{}, tracer, clock, store)
	for _, p := range programs {
		require.NoError(t, rt.Register(p))
	}
	return rt, clock
}

// InstructionTest is a single parameterized test. It executes Instruction
// signed by Signers at Now against State and checks that all assertions pass.
type InstructionTest struct {
	Programs []host.Program

	// Setup runs against the runtime before the instruction is executed.
	Setup func(context.Context, *testing.T, *host.Runtime)

	Instruction solana.Instruction
	Signers     []solana.PublicKey
	State       *InMemoryStore
	Now         time.Time

	ExpectedErr error
	// Assertion runs against the store after the instruction.
	Assertion func(context.Context, *testing.T, *host.Runtime)
}

type InstructionTestSuite struct {
	Tests map[string]InstructionTest
}

// Run execute all tests from the test suite and make sure all assertions pass.
func (suite *InstructionTestSuite) Run(t *testing.T) {
	for name, test := range suite.Tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.TODO()

			store := test.State
			if store == nil {
				store = NewInMemoryStore()
			}
			rt, _ := NewRuntime(t, store, test.Now, test.Programs...)
			if test.Setup != nil {
				test.Setup(ctx, t, rt)
			}
			before := store.Snapshot()

			err := rt.Execute(ctx, &host.Transaction{
				Instruction: test.Instruction,
				Signers:     test.Signers,
			})
			require.ErrorIs(err, test.ExpectedErr)
			if test.ExpectedErr != nil {
				require.Equal(before, store.Storage)
			}
			if test.Assertion != nil {
				test.Assertion(ctx, t, rt)
			}
		})
	}
}
