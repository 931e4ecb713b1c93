// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/creditvm/keys"
	"github.com/ava-labs/creditvm/state"
)

// TState accumulates the committed changes of every view created from it
// until they are written to the underlying database.
type TState struct {
	l           sync.RWMutex
	ops         int
	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState.
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{
		changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize),
	}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// Insert should only be called if you know what you are doing (updates
// here may not be reflected in get calls in tstate views and/or may overwrite
// identical keys on disk).
func (ts *TState) Insert(_ context.Context, key, value []byte) error {
	if !keys.VerifyValue(key, value) {
		return ErrInvalidKeyValue
	}
	ts.l.Lock()
	defer ts.l.Unlock()

	ts.changedKeys[string(key)] = maybe.Some(value)
	return nil
}

// OpIndex returns the number of operations committed to ts.
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// PendingChanges returns the number of keys changed since the last call to
// [WriteChanges].
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// WriteChanges applies every committed change to [db] in key order and
// resets ts.
func (ts *TState) WriteChanges(ctx context.Context, db state.Mutable) error {
	ts.l.Lock()
	defer ts.l.Unlock()

	changed := maps.Keys(ts.changedKeys)
	slices.Sort(changed)
	for _, k := range changed {
		v := ts.changedKeys[k]
		if v.IsNothing() {
			if err := db.Remove(ctx, []byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := db.Insert(ctx, []byte(k), v.Value()); err != nil {
			return err
		}
	}
	ts.changedKeys = make(map[string]maybe.Maybe[[]byte], len(changed))
	return nil
}
