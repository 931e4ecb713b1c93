// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accrual

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/creditvm/ledger"
	"github.com/ava-labs/creditvm/settings"
)

func newTable(t *testing.T, entries ...settings.Entry) *settings.Table {
	table, err := settings.New(solana.PublicKey{}, entries)
	require.NoError(t, err)
	return table
}

func TestEarnings(t *testing.T) {
	table := newTable(t,
		settings.Entry{CampaignID: 1, Level: 1, DailyReward: 10},
		settings.Entry{CampaignID: 1, Level: 2, DailyReward: 30},
		settings.Entry{CampaignID: 2, Level: 1, DailyReward: 7},
	)

	tests := []struct {
		name    string
		record  *ledger.Record
		asOfDay uint32
		want    uint64
	}{
		{
			name:    "single level",
			record:  ledger.NewRecord(1, 150, 0, 0),
			asOfDay: 5,
			want:    50,
		},
		{
			name:    "same day",
			record:  ledger.NewRecord(1, 150, 0, 0),
			asOfDay: 0,
			want:    0,
		},
		{
			name:    "level zero earns nothing",
			record:  ledger.NewRecord(1, 50, 0, 0),
			asOfDay: 30,
			want:    0,
		},
		{
			name:    "missing rate earns nothing",
			record:  ledger.NewRecord(9, 150, 0, 0),
			asOfDay: 30,
			want:    0,
		},
		{
			name: "level changes",
			record: &ledger.Record{
				Credit: 250,
				History: []ledger.LevelChange{
					{Day: 0, CampaignID: 1, Level: 1},
					{Day: 4, CampaignID: 1, Level: 2},
					{Day: 6, CampaignID: 2, Level: 1},
				},
			},
			asOfDay: 10,
			// 4*10 + 2*30 + 4*7
			want: 128,
		},
		{
			name: "future entries ignored",
			record: &ledger.Record{
				History: []ledger.LevelChange{
					{Day: 0, CampaignID: 1, Level: 1},
					{Day: 20, CampaignID: 1, Level: 2},
				},
			},
			asOfDay: 10,
			want:    100,
		},
		{
			name: "zero level gap",
			record: &ledger.Record{
				History: []ledger.LevelChange{
					{Day: 0, CampaignID: 1, Level: 1},
					{Day: 2, CampaignID: 1, Level: 0},
					{Day: 5, CampaignID: 1, Level: 1},
				},
			},
			asOfDay: 8,
			want:    50,
		},
		{
			name: "watermark inside segment",
			record: &ledger.Record{
				RewardSince: 3,
				History: []ledger.LevelChange{
					{Day: 0, CampaignID: 1, Level: 1},
					{Day: 5, CampaignID: 1, Level: 2},
				},
			},
			asOfDay: 7,
			// 2*10 + 2*30
			want: 80,
		},
		{
			name: "watermark after as of day",
			record: &ledger.Record{
				RewardSince: 9,
				History:     []ledger.LevelChange{{Day: 0, CampaignID: 1, Level: 1}},
			},
			asOfDay: 5,
			want:    0,
		},
		{
			name:    "empty history",
			record:  &ledger.Record{},
			asOfDay: 5,
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Earnings(table, tt.record, tt.asOfDay))
		})
	}
}

func TestEarningsSaturates(t *testing.T) {
	table := newTable(t, settings.Entry{CampaignID: 1, Level: 8, DailyReward: math.MaxUint64 / 2})
	record := ledger.NewRecord(1, 900, 0, 0)
	require.Equal(t, uint64(math.MaxUint64), Earnings(table, record, 3))
}

func TestEarningsAdditive(t *testing.T) {
	require := require.New(t)

	table := newTable(t,
		settings.Entry{CampaignID: 1, Level: 3, DailyReward: 13},
		settings.Entry{CampaignID: 2, Level: 3, DailyReward: 13},
	)
	for day0 := uint32(0); day0 < 5; day0++ {
		for day1 := day0; day1 < 10; day1++ {
			for day2 := day1; day2 < 15; day2++ {
				r := ledger.NewRecord(1, 350, day0, day0)
				first := Earnings(table, r, day1)

				// Campaign changes inside the level do not matter.
				_, err := r.ApplyCredit(2, 10, day1)
				require.NoError(err)
				r.Settle(day1)
				second := Earnings(table, r, day2)

				whole := Earnings(table, ledger.NewRecord(1, 350, day0, day0), day2)
				require.Equal(whole, first+second, "days %d %d %d", day0, day1, day2)
			}
		}
	}
}

func TestDoubleClaimSameDay(t *testing.T) {
	require := require.New(t)

	table := newTable(t, settings.Entry{CampaignID: 1, Level: 1, DailyReward: 10})
	r := ledger.NewRecord(1, 150, 0, 0)

	require.Equal(uint64(50), Earnings(table, r, 5))
	r.Settle(5)
	require.Zero(Earnings(table, r, 5))
	require.Equal(uint64(30), Earnings(table, r, 8))
}
