// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/creditvm/consts"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/ledger"
	"github.com/ava-labs/creditvm/pda"
	"github.com/ava-labs/creditvm/program"
	"github.com/ava-labs/creditvm/storage"
	"github.com/ava-labs/creditvm/token"
	"github.com/ava-labs/creditvm/utils"
)

type runCmd struct {
	sim  *simulator
	plan *Plan
	out  io.Writer

	keys map[string]solana.PublicKey
}

func newRunCmd(s *simulator) *cobra.Command {
	return &cobra.Command{
		Use:   "run [path]",
		Short: "Run a simulation plan (\"-\" reads the plan from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := readPlan(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			plan, err := unmarshalPlan(b)
			if err != nil {
				return err
			}
			if err := plan.Verify(); err != nil {
				return err
			}
			if err := s.Init(); err != nil {
				s.Close()
				return err
			}
			defer s.Close()
			return newRunner(s, plan, cmd.OutOrStdout()).Run(cmd.Context())
		},
	}
}

func readPlan(stdin io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}

func newRunner(s *simulator, plan *Plan, out io.Writer) *runCmd {
	return &runCmd{
		sim:  s,
		plan: plan,
		out:  out,
		keys: make(map[string]solana.PublicKey),
	}
}

// Response is printed to stdout for every step.
type Response struct {
	ID          int            `json:"id"`
	Description string         `json:"description,omitempty"`
	Day         uint32         `json:"day"`
	Address     string         `json:"address,omitempty"`
	Balance     uint64         `json:"balance,omitempty"`
	Record      *ledger.Record `json:"record,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func (c *runCmd) Run(ctx context.Context) error {
	c.sim.clock.Advance(utils.StartOfDay(c.plan.StartDay).Sub(c.sim.clock.Now()))
	c.sim.log.Info("simulation",
		zap.String("plan", c.plan.Name),
		zap.String("description", c.plan.Description),
		zap.Uint32("startDay", c.plan.StartDay),
	)

	for i, step := range c.plan.Steps {
		c.sim.log.Info("simulation",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("action", string(step.Action)),
		)
		resp := &Response{ID: i, Description: step.Description}
		stepErr := c.runStep(ctx, &step, resp)
		if stepErr != nil {
			resp.Error = stepErr.Error()
		}
		resp.Day = utils.DayOf(c.sim.clock.Now())
		if err := c.print(resp); err != nil {
			return err
		}
		if err := c.check(ctx, i, &step, stepErr); err != nil {
			return err
		}
	}
	return nil
}

func (c *runCmd) print(resp *Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(b))
	return err
}

func (c *runCmd) key(name string) (solana.PublicKey, error) {
	k, ok := c.keys[name]
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	return k, nil
}

func (c *runCmd) execute(ctx context.Context, ix solana.Instruction, err error, signers ...solana.PublicKey) error {
	if err != nil {
		return err
	}
	return c.sim.runtime.Execute(ctx, &host.Transaction{Instruction: ix, Signers: signers})
}

func (c *runCmd) runStep(ctx context.Context, step *Step, resp *Response) error {
	programID := c.sim.cfg.GetProgramID()
	if step.Action == ActionAdvance {
		c.sim.clock.Advance(time.Duration(step.Days) * consts.SecondsPerDay * time.Second)
		return nil
	}
	if step.Action == ActionKey {
		if _, ok := c.keys[step.Key]; ok {
			return fmt.Errorf("key %s already exists", step.Key)
		}
		priv, err := solana.NewRandomPrivateKey()
		if err != nil {
			return err
		}
		c.keys[step.Key] = priv.PublicKey()
		resp.Address = priv.PublicKey().String()
		return nil
	}

	signer, err := c.key(step.Key)
	if err != nil {
		return err
	}
	var mint solana.PublicKey
	if len(step.Mint) > 0 {
		if mint, err = c.key(step.Mint); err != nil {
			return err
		}
	}

	switch step.Action {
	case ActionAirdrop:
		return c.sim.runtime.Airdrop(ctx, signer, step.Lamports)
	case ActionCreateMint:
		authority, _, err := pda.Derive(programID, pda.MintAuthority, solana.PublicKey{})
		if err != nil {
			return err
		}
		decimals := c.sim.cfg.TokenDecimals
		if step.Decimals != nil {
			decimals = *step.Decimals
		}
		ix, err := token.NewCreateMintInstruction(signer, mint, authority, decimals)
		return c.execute(ctx, ix, err, signer, mint)
	case ActionInit:
		ix, err := program.NewInitInstruction(programID, signer, toEntries(step.Entries), mint)
		return c.execute(ctx, ix, err, signer)
	case ActionAddCredit:
		identity, err := c.key(step.Target)
		if err != nil {
			return err
		}
		ix, err := program.NewAddCreditInstruction(programID, signer, signer, identity, step.Campaign, step.Delta, step.RewardSince)
		if err := c.execute(ctx, ix, err, signer); err != nil {
			return err
		}
		resp.Record, err = c.record(ctx, identity)
		return err
	case ActionSetTokenReference:
		ix, err := program.NewSetTokenReferenceInstruction(programID, signer, mint)
		return c.execute(ctx, ix, err, signer)
	case ActionClaim:
		ix, err := program.NewClaimInstruction(programID, signer, mint)
		if err := c.execute(ctx, ix, err, signer); err != nil {
			return err
		}
		resp.Balance, err = c.balance(ctx, signer, mint)
		resp.Amount = utils.FormatAmount(resp.Balance, c.sim.cfg.TokenDecimals)
		return err
	case ActionUpdateSettings:
		ix, err := program.NewUpdateSettingsInstruction(programID, signer, toEntries(step.Entries))
		return c.execute(ctx, ix, err, signer)
	case ActionRecord:
		resp.Record, err = c.record(ctx, signer)
		return err
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidStep, step.Action)
	}
}

func (c *runCmd) record(ctx context.Context, identity solana.PublicKey) (*ledger.Record, error) {
	return readRecord(ctx, c.sim, identity)
}

func readRecord(ctx context.Context, s *simulator, identity solana.PublicKey) (*ledger.Record, error) {
	programID := s.cfg.GetProgramID()
	addr, _, err := pda.Derive(programID, pda.Participant, identity)
	if err != nil {
		return nil, err
	}
	var record *ledger.Record
	err = s.runtime.View(ctx, []solana.PublicKey{addr}, func(accounts *host.Accounts) error {
		var err error
		record, err = storage.GetParticipant(ctx, accounts, programID, addr)
		return err
	})
	return record, err
}

func (c *runCmd) balance(ctx context.Context, owner solana.PublicKey, mint solana.PublicKey) (uint64, error) {
	addr, err := pda.AssociatedAccount(owner, mint)
	if err != nil {
		return 0, err
	}
	var amount uint64
	err = c.sim.runtime.View(ctx, []solana.PublicKey{addr}, func(accounts *host.Accounts) error {
		acct, err := token.GetAccount(ctx, accounts, addr)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		amount = acct.Amount
		return nil
	})
	return amount, err
}

// check compares the outcome of step [i] with its requirements.
func (c *runCmd) check(ctx context.Context, i int, step *Step, stepErr error) error {
	req := step.Require
	if req == nil {
		if stepErr != nil {
			return fmt.Errorf("step %d: %w", i, stepErr)
		}
		return nil
	}
	if len(req.Error) > 0 {
		if stepErr == nil || !strings.Contains(stepErr.Error(), req.Error) {
			return fmt.Errorf("%w: step %d expected error %q, got %v", ErrRequireFailed, i, req.Error, stepErr)
		}
		return nil
	}
	if stepErr != nil {
		return fmt.Errorf("step %d: %w", i, stepErr)
	}
	if req.Balance != nil {
		owner, err := c.key(step.Key)
		if err != nil {
			return err
		}
		mint, err := c.key(step.Mint)
		if err != nil {
			return err
		}
		got, err := c.balance(ctx, owner, mint)
		if err != nil {
			return err
		}
		if got != *req.Balance {
			return fmt.Errorf("%w: step %d expected balance %d, got %d", ErrRequireFailed, i, *req.Balance, got)
		}
	}
	if req.Credit != nil || req.Level != nil {
		name := step.Key
		if len(step.Target) > 0 {
			name = step.Target
		}
		identity, err := c.key(name)
		if err != nil {
			return err
		}
		record, err := c.record(ctx, identity)
		if err != nil {
			return err
		}
		if req.Credit != nil && record.Credit != *req.Credit {
			return fmt.Errorf("%w: step %d expected credit %d, got %d", ErrRequireFailed, i, *req.Credit, record.Credit)
		}
		if req.Level != nil && record.Level() != *req.Level {
			return fmt.Errorf("%w: step %d expected level %d, got %d", ErrRequireFailed, i, *req.Level, record.Level())
		}
	}
	return nil
}
