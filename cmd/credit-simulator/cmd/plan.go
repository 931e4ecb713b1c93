// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/ava-labs/creditvm/settings"
)

var (
	ErrInvalidPlan   = errors.New("invalid plan")
	ErrInvalidStep   = errors.New("invalid step")
	ErrUnknownKey    = errors.New("unknown key")
	ErrRequireFailed = errors.New("requirement failed")
)

type Action string

const (
	// Create a named key.
	ActionKey Action = "key"
	// Fund a named key with lamports.
	ActionAirdrop Action = "airdrop"
	// Create the reward mint, with the program as mint authority.
	ActionCreateMint Action = "create_mint"
	// Advance the simulated clock by a number of days.
	ActionAdvance Action = "advance"

	ActionInit              Action = "init"
	ActionAddCredit         Action = "add_credit"
	ActionSetTokenReference Action = "set_token_reference"
	ActionClaim             Action = "claim"
	ActionUpdateSettings    Action = "update_settings"

	// Read the record of a participant.
	ActionRecord Action = "record"
)

type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Day the simulated clock starts at.
	StartDay uint32 `yaml:"start_day"`
	Steps    []Step `yaml:"steps"`
}

type Step struct {
	Description string `yaml:"description"`
	Action      Action `yaml:"action"`

	// Named key signing the step (payer, authority or participant).
	Key string `yaml:"key"`
	// Named key the step acts on, when different from [Key].
	Target string `yaml:"target"`
	// Named key of the reward mint.
	Mint string `yaml:"mint"`

	Campaign    uint16  `yaml:"campaign"`
	Delta       int32   `yaml:"delta"`
	RewardSince uint32  `yaml:"reward_since"`
	Entries     []Entry `yaml:"entries"`
	Lamports    uint64  `yaml:"lamports"`
	Decimals    *uint8  `yaml:"decimals"`
	Days        uint32  `yaml:"days"`

	Require *Require `yaml:"require,omitempty"`
}

type Entry struct {
	Campaign    uint16 `yaml:"campaign"`
	Level       uint8  `yaml:"level"`
	DailyReward uint64 `yaml:"daily_reward"`
}

// Require holds assertions checked after a step runs.
type Require struct {
	// Substring of the error the step must fail with.
	Error string `yaml:"error"`
	// Token balance of [Step.Key] in [Step.Mint].
	Balance *uint64 `yaml:"balance"`
	Credit  *uint32 `yaml:"credit"`
	Level   *uint8  `yaml:"level"`
}

func toEntries(entries []Entry) []settings.Entry {
	out := make([]settings.Entry, len(entries))
	for i, e := range entries {
		out[i] = settings.Entry{CampaignID: e.Campaign, Level: e.Level, DailyReward: e.DailyReward}
	}
	return out
}

func unmarshalPlan(b []byte) (*Plan, error) {
	var p Plan
	if err := yaml.UnmarshalStrict(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &p, nil
}

// Verify checks that every step names the keys its action needs.
func (p *Plan) Verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps found", ErrInvalidPlan)
	}
	for i, step := range p.Steps {
		if err := step.verify(); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
		}
	}
	return nil
}

func (s *Step) verify() error {
	switch s.Action {
	case ActionAdvance:
		if s.Days == 0 {
			return errors.New("advance requires days")
		}
		return nil
	case ActionKey, ActionAirdrop, ActionInit, ActionUpdateSettings, ActionRecord:
		if len(s.Key) == 0 {
			return fmt.Errorf("%s requires key", s.Action)
		}
		return nil
	case ActionCreateMint, ActionSetTokenReference, ActionClaim:
		if len(s.Key) == 0 || len(s.Mint) == 0 {
			return fmt.Errorf("%s requires key and mint", s.Action)
		}
		return nil
	case ActionAddCredit:
		if len(s.Key) == 0 || len(s.Target) == 0 {
			return fmt.Errorf("%s requires key and target", s.Action)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}
}
