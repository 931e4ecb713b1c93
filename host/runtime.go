// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/ava-labs/creditvm/state"
	"github.com/ava-labs/creditvm/tstate"
)

// Program is executed by the [Runtime] for every instruction addressed to
// its ID.
type Program interface {
	ID() solana.PublicKey
	Execute(ctx context.Context, hctx *Context, accounts []*solana.AccountMeta, data []byte) error
}

// Context is what a program sees of the transaction it runs in.
type Context struct {
	ProgramID solana.PublicKey
	Accounts  *Accounts
	Signers   set.Set[solana.PublicKey]
	Now       time.Time
}

// IsSigner returns true if [addr] signed the transaction.
func (c *Context) IsSigner(addr solana.PublicKey) bool {
	return c.Signers.Contains(addr)
}

// Transaction is a single instruction and the identities that signed it.
type Transaction struct {
	Instruction solana.Instruction
	Signers     []solana.PublicKey
}

// Runtime executes transactions one at a time against [state.Mutable]. Each
// transaction can only touch the accounts its instruction declares and
// either commits all of its writes or none of them.
type Runtime struct {
	l sync.Mutex

	log    logging.Logger
	tracer trace.Tracer
	clock  clockwork.Clock
	db     state.Mutable

	programs map[solana.PublicKey]Program
}

func NewRuntime(
	log logging.Logger,
	tracer trace.Tracer,
	clock clockwork.Clock,
	db state.Mutable,
) *Runtime {
	return &Runtime{
		log:      log,
		tracer:   tracer,
		clock:    clock,
		db:       db,
		programs: map[solana.PublicKey]Program{},
	}
}

// Register makes [p] callable.
func (r *Runtime) Register(p Program) error {
	r.l.Lock()
	defer r.l.Unlock()

	if _, ok := r.programs[p.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateProgram, p.ID())
	}
	r.programs[p.ID()] = p
	return nil
}

// Execute runs [tx]. Nothing is written to the underlying state unless the
// program returns without error.
func (r *Runtime) Execute(ctx context.Context, tx *Transaction) error {
	r.l.Lock()
	defer r.l.Unlock()

	ix := tx.Instruction
	programID := ix.ProgramID()
	metas := ix.Accounts()
	ctx, span := r.tracer.Start(
		ctx, "Runtime.Execute",
		oteltrace.WithAttributes(
			attribute.String("program", programID.String()),
			attribute.Int("accounts", len(metas)),
			attribute.Int("signers", len(tx.Signers)),
		),
	)
	defer span.End()

	program, ok := r.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}
	data, err := ix.Data()
	if err != nil {
		return err
	}

	scope, storage, err := r.prefetch(ctx, metas)
	if err != nil {
		return err
	}
	ts := tstate.New(len(scope))
	view := ts.NewView(scope, storage)
	hctx := &Context{
		ProgramID: programID,
		Accounts:  NewAccounts(view),
		Signers:   set.Of(tx.Signers...),
		Now:       r.clock.Now(),
	}
	if err := program.Execute(ctx, hctx, metas, data); err != nil {
		r.log.Debug("transaction failed",
			zap.Stringer("program", programID),
			zap.Error(err),
		)
		return err
	}
	view.Commit()
	if err := ts.WriteChanges(ctx, r.db); err != nil {
		return err
	}
	r.log.Debug("transaction committed",
		zap.Stringer("program", programID),
		zap.Int("ops", ts.OpIndex()),
	)
	return nil
}

// prefetch builds the key scope of [metas] and loads the current value of
// every key in it concurrently.
func (r *Runtime) prefetch(ctx context.Context, metas []*solana.AccountMeta) (state.Keys, map[string][]byte, error) {
	scope := make(state.Keys, len(metas))
	for _, meta := range metas {
		perm := state.Read
		if meta.IsWritable {
			perm = state.All
		}
		scope.Add(string(AccountKey(meta.PublicKey)), perm)
	}

	var (
		l       sync.Mutex
		storage = make(map[string][]byte, len(scope))
	)
	g, gctx := errgroup.WithContext(ctx)
	for k := range scope {
		g.Go(func() error {
			v, err := r.db.GetValue(gctx, []byte(k))
			if errors.Is(err, database.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			l.Lock()
			storage[k] = v
			l.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return scope, storage, nil
}

// View runs [f] against a read-only snapshot of [addrs].
func (r *Runtime) View(ctx context.Context, addrs []solana.PublicKey, f func(*Accounts) error) error {
	r.l.Lock()
	defer r.l.Unlock()

	metas := make([]*solana.AccountMeta, len(addrs))
	for i, addr := range addrs {
		metas[i] = solana.Meta(addr)
	}
	scope, storage, err := r.prefetch(ctx, metas)
	if err != nil {
		return err
	}
	return f(NewAccounts(tstate.New(0).NewView(scope, storage)))
}

// Airdrop funds [addr] outside of any transaction.
func (r *Runtime) Airdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) error {
	r.l.Lock()
	defer r.l.Unlock()

	k := AccountKey(addr)
	scope := state.Keys{string(k): state.All}
	_, storage, err := r.prefetch(ctx, []*solana.AccountMeta{solana.Meta(addr)})
	if err != nil {
		return err
	}
	ts := tstate.New(1)
	view := ts.NewView(scope, storage)
	if err := NewAccounts(view).Airdrop(ctx, addr, lamports); err != nil {
		return err
	}
	view.Commit()
	return ts.WriteChanges(ctx, r.db)
}

// Now is the runtime clock.
func (r *Runtime) Now() time.Time {
	return r.clock.Now()
}
