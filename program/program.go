// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package program is the credit ledger: it tracks the credit and level
// history of every participant and mints the reward they accrue.
package program

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/creditvm/host"
)

var _ host.Program = (*Program)(nil)

type Program struct {
	id      solana.PublicKey
	log     logging.Logger
	tokens  Tokens
	metrics *metrics
}

// New returns the credit program running under [id]. Rewards are minted
// through [tokens].
func New(log logging.Logger, id solana.PublicKey, tokens Tokens) (*Program, *prometheus.Registry, error) {
	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	return &Program{
		id:      id,
		log:     log,
		tokens:  tokens,
		metrics: metrics,
	}, registry, nil
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

// Execute decodes [data] and runs the instruction it names against
// [accounts].
func (p *Program) Execute(ctx context.Context, hctx *host.Context, accounts []*solana.AccountMeta, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty instruction", ErrInvalidInstructionData)
	}
	id, body := data[0], data[1:]
	name := instructionName(id)

	start := time.Now()
	err := p.dispatch(ctx, hctx, id, accounts, body)
	p.metrics.execute.Observe(float64(time.Since(start)))
	p.metrics.instructions.WithLabelValues(name).Inc()
	if err != nil {
		p.metrics.failed.WithLabelValues(name).Inc()
		p.log.Debug("instruction failed",
			zap.String("instruction", name),
			zap.Error(err),
		)
	}
	return err
}

func (p *Program) dispatch(ctx context.Context, hctx *host.Context, id uint8, accounts []*solana.AccountMeta, body []byte) error {
	switch id {
	case InitID:
		if err := requireAccounts(accounts, initAccounts); err != nil {
			return err
		}
		args, err := decodeArgs[InitArgs](body)
		if err != nil {
			return err
		}
		return p.init(ctx, hctx, accounts, args)
	case AddCreditID:
		if err := requireAccounts(accounts, addCreditAccounts); err != nil {
			return err
		}
		args, err := decodeArgs[AddCreditArgs](body)
		if err != nil {
			return err
		}
		return p.addCredit(ctx, hctx, accounts, args)
	case SetTokenReferenceID:
		if err := requireAccounts(accounts, setTokenReferenceAccounts); err != nil {
			return err
		}
		args, err := decodeArgs[SetTokenReferenceArgs](body)
		if err != nil {
			return err
		}
		return p.setTokenReference(ctx, hctx, accounts, args)
	case ClaimID:
		if err := requireAccounts(accounts, claimAccounts); err != nil {
			return err
		}
		if _, err := decodeArgs[ClaimArgs](body); err != nil {
			return err
		}
		return p.claim(ctx, hctx, accounts)
	case UpdateSettingsID:
		if err := requireAccounts(accounts, updateSettingsAccounts); err != nil {
			return err
		}
		args, err := decodeArgs[UpdateSettingsArgs](body)
		if err != nil {
			return err
		}
		return p.updateSettings(ctx, hctx, accounts, args)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownInstruction, id)
	}
}

func requireAccounts(accounts []*solana.AccountMeta, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: got %d, need %d", ErrNotEnoughAccounts, len(accounts), n)
	}
	return nil
}

func requireSigner(hctx *host.Context, addr solana.PublicKey) error {
	if !hctx.IsSigner(addr) {
		return fmt.Errorf("%w: %s", ErrMissingSignature, addr)
	}
	return nil
}
