// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accrual

import (
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/creditvm/consts"
	"github.com/ava-labs/creditvm/ledger"
	"github.com/ava-labs/creditvm/settings"
)

// Earnings returns the reward [record] has accrued since its watermark, up
// to and excluding [asOfDay].
//
// Each history entry starts a segment that runs until the next entry (or
// [asOfDay]) and pays the daily rate of the segment's campaign and level.
// Entries dated after [asOfDay] are not yet in force. Days before the
// watermark have been paid and are never counted.
func Earnings(table *settings.Table, record *ledger.Record, asOfDay uint32) uint64 {
	var (
		total        uint64
		started      bool
		prevDay      = record.RewardSince
		prevLevel    uint8
		prevCampaign uint16
	)
	for _, e := range record.History {
		if e.Day > asOfDay {
			break
		}
		day := max(e.Day, record.RewardSince)
		if started {
			total = addSegment(total, table, prevCampaign, prevLevel, prevDay, day)
		}
		started = true
		prevDay = day
		prevLevel = e.Level
		prevCampaign = e.CampaignID
	}
	if started {
		total = addSegment(total, table, prevCampaign, prevLevel, prevDay, asOfDay)
	}
	return total
}

func addSegment(total uint64, table *settings.Table, campaign uint16, level uint8, from uint32, to uint32) uint64 {
	if level == 0 || to <= from {
		return total
	}
	days := uint64(to - from)
	earned, err := smath.Mul(table.Rate(campaign, level), days)
	if err != nil {
		return consts.MaxUint64
	}
	total, err = smath.Add(total, earned)
	if err != nil {
		return consts.MaxUint64
	}
	return total
}
