// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ava-labs/creditvm/accrual"
	"github.com/ava-labs/creditvm/host"
	"github.com/ava-labs/creditvm/ledger"
	"github.com/ava-labs/creditvm/pda"
	"github.com/ava-labs/creditvm/storage"
	"github.com/ava-labs/creditvm/utils"
)

// RecordResponse describes a participant and the reward it could claim.
type RecordResponse struct {
	Identity string         `json:"identity"`
	Address  string         `json:"address"`
	Day      uint32         `json:"day"`
	Level    uint8          `json:"level"`
	Record   *ledger.Record `json:"record"`
	Earnings uint64         `json:"earnings"`
	Amount   string         `json:"amount"`
}

func newRecordCmd(s *simulator) *cobra.Command {
	var day int64
	cmd := &cobra.Command{
		Use:   "record [identity]",
		Short: "Print the stored record of a participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := solana.PublicKeyFromBase58(args[0])
			if err != nil {
				return fmt.Errorf("invalid identity %q: %w", args[0], err)
			}
			if err := s.Init(); err != nil {
				s.Close()
				return err
			}
			defer s.Close()

			asOf := utils.DayOf(time.Now())
			if day >= 0 {
				asOf = uint32(day)
			}
			programID := s.cfg.GetProgramID()
			addr, _, err := pda.Derive(programID, pda.Participant, identity)
			if err != nil {
				return err
			}
			settingsAddr, _, err := pda.Derive(programID, pda.Settings, solana.PublicKey{})
			if err != nil {
				return err
			}
			resp := &RecordResponse{
				Identity: identity.String(),
				Address:  addr.String(),
				Day:      asOf,
			}
			ctx := cmd.Context()
			err = s.runtime.View(ctx, []solana.PublicKey{addr, settingsAddr}, func(accounts *host.Accounts) error {
				record, err := storage.GetParticipant(ctx, accounts, programID, addr)
				if err != nil {
					return err
				}
				table, err := storage.GetSettings(ctx, accounts, programID, settingsAddr)
				if err != nil {
					return err
				}
				resp.Record = record
				resp.Level = record.Level()
				resp.Earnings = accrual.Earnings(table, record, asOf)
				resp.Amount = utils.FormatAmount(resp.Earnings, s.cfg.TokenDecimals)
				return nil
			})
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().Int64Var(&day, "day", -1, "reward day to compute earnings at (defaults to today)")
	return cmd
}
