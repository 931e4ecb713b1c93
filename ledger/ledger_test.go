// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/consts"
)

func TestEncodedSizes(t *testing.T) {
	require := require.New(t)

	b, err := codec.Serialize(LevelChange{})
	require.NoError(err)
	require.Len(b, LevelChangeLen)

	b, err = codec.Serialize(Record{})
	require.NoError(err)
	require.Len(b, RecordHeaderLen)

	full := Record{History: make([]LevelChange, consts.MaxHistory)}
	b, err = codec.Serialize(full)
	require.NoError(err)
	require.Len(b, MaxRecordLen)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		credit uint32
		level  uint8
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{150, 1},
		{799, 7},
		{800, 8},
		{5000, 8},
		{math.MaxUint32, 8},
	}
	for _, tt := range tests {
		require.Equal(t, tt.level, Level(tt.credit), "credit %d", tt.credit)
	}
}

func TestLevelMonotonic(t *testing.T) {
	require := require.New(t)

	prev := Level(0)
	for c := uint32(1); c <= 2000; c++ {
		lv := Level(c)
		require.GreaterOrEqual(lv, prev)
		prev = lv
	}
	require.Equal(consts.MaxLevel, prev)
}

func TestAddClamped(t *testing.T) {
	tests := []struct {
		name   string
		credit uint32
		delta  int32
		want   uint32
	}{
		{name: "increase", credit: 10, delta: 5, want: 15},
		{name: "decrease", credit: 10, delta: -5, want: 5},
		{name: "to zero", credit: 10, delta: -10, want: 0},
		{name: "below zero", credit: 0, delta: -50, want: 0},
		{name: "far below zero", credit: 10, delta: math.MinInt32, want: 0},
		{name: "reach max", credit: math.MaxUint32 - 5, delta: 5, want: math.MaxUint32},
		{name: "overflow", credit: math.MaxUint32 - 5, delta: 6, want: 0},
		{name: "max delta", credit: math.MaxUint32, delta: math.MaxInt32, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, AddClamped(tt.credit, tt.delta))
		})
	}
}

func TestNewRecord(t *testing.T) {
	require := require.New(t)

	r := NewRecord(1, 150, 0, 0)
	require.Equal(uint16(1), r.CampaignID)
	require.Equal(uint32(150), r.Credit)
	require.Equal(uint8(1), r.Level())
	require.Equal([]LevelChange{{Day: 0, CampaignID: 1, Level: 1}}, r.History)
	require.NoError(r.Verify())

	// Creation always records one entry, even at level 0.
	r = NewRecord(2, -50, 3, 9)
	require.Zero(r.Credit)
	require.Equal(uint32(3), r.RewardSince)
	require.Equal([]LevelChange{{Day: 9, CampaignID: 2, Level: 0}}, r.History)
}

func TestApplyCredit(t *testing.T) {
	require := require.New(t)

	r := NewRecord(1, 50, 0, 0)

	// Same level: campaign still moves, history does not grow.
	changed, err := r.ApplyCredit(2, 30, 1)
	require.NoError(err)
	require.False(changed)
	require.Equal(uint16(2), r.CampaignID)
	require.Equal(uint32(80), r.Credit)
	require.Len(r.History, 1)

	changed, err = r.ApplyCredit(3, 20, 2)
	require.NoError(err)
	require.True(changed)
	require.Equal(LevelChange{Day: 2, CampaignID: 3, Level: 1}, r.History[1])

	changed, err = r.ApplyCredit(3, -1000, 4)
	require.NoError(err)
	require.True(changed)
	require.Zero(r.Credit)
	require.Equal(LevelChange{Day: 4, CampaignID: 3, Level: 0}, r.History[2])
	require.NoError(r.Verify())
}

func TestApplyCreditKeepsHistoryOrdered(t *testing.T) {
	require := require.New(t)

	r := NewRecord(1, 0, 0, 10)
	changed, err := r.ApplyCredit(1, 100, 7)
	require.NoError(err)
	require.True(changed)
	require.Equal(uint32(10), r.History[1].Day)
	require.NoError(r.Verify())
}

func TestAppendIffLevelChanges(t *testing.T) {
	require := require.New(t)

	deltas := []int32{40, 70, -20, 500, 1000, -5000, 99, 1, -1, 0}
	r := NewRecord(1, 0, 0, 0)
	for day, d := range deltas {
		before := len(r.History)
		oldLevel := r.Level()
		changed, err := r.ApplyCredit(1, d, uint32(day))
		require.NoError(err)
		require.Equal(oldLevel != r.Level(), changed)
		if changed {
			require.Len(r.History, before+1)
		} else {
			require.Len(r.History, before)
		}
		require.NoError(r.Verify())
	}
}

func TestApplyCreditCapacity(t *testing.T) {
	require := require.New(t)

	r := NewRecord(1, 0, 0, 0)
	for i := 1; i < consts.MaxHistory; i++ {
		delta := int32(100)
		if i%2 == 0 {
			delta = -100
		}
		changed, err := r.ApplyCredit(1, delta, uint32(i))
		require.NoError(err)
		require.True(changed)
	}
	require.Len(r.History, consts.MaxHistory)

	// Staying on the same level is still allowed.
	changed, err := r.ApplyCredit(4, 1, 200)
	require.NoError(err)
	require.False(changed)

	credit := r.Credit
	_, err = r.ApplyCredit(5, 1000, 201)
	require.ErrorIs(err, codec.ErrCapacityExceeded)
	require.Equal(credit, r.Credit)
	require.Equal(uint16(4), r.CampaignID)
	require.Len(r.History, consts.MaxHistory)
}

func TestSettle(t *testing.T) {
	require := require.New(t)

	r := &Record{
		CampaignID:  2,
		Credit:      250,
		RewardSince: 0,
		History: []LevelChange{
			{Day: 0, CampaignID: 1, Level: 1},
			{Day: 3, CampaignID: 1, Level: 3},
			{Day: 6, CampaignID: 2, Level: 2},
			{Day: 12, CampaignID: 2, Level: 2},
		},
	}
	r.Settle(8)
	require.Equal(uint32(8), r.RewardSince)
	require.Equal([]LevelChange{
		{Day: 8, CampaignID: 2, Level: 2},
		{Day: 12, CampaignID: 2, Level: 2},
	}, r.History)
	require.NoError(r.Verify())

	// Settling an already settled day is a no-op.
	r.Settle(8)
	r.Settle(5)
	require.Equal(uint32(8), r.RewardSince)
	require.Len(r.History, 2)
}

func TestSettleBeforeHistory(t *testing.T) {
	require := require.New(t)

	r := NewRecord(1, 100, 0, 10)
	r.Settle(4)
	require.Equal(uint32(4), r.RewardSince)
	require.Equal([]LevelChange{{Day: 10, CampaignID: 1, Level: 1}}, r.History)
}

func TestVerifyCorrupt(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{name: "empty history", record: Record{Credit: 0}},
		{
			name: "level mismatch",
			record: Record{
				Credit:  300,
				History: []LevelChange{{Level: 1}},
			},
		},
		{
			name: "out of order",
			record: Record{
				Credit:  100,
				History: []LevelChange{{Day: 5}, {Day: 4, Level: 1}},
			},
		},
		{
			name:   "too long",
			record: Record{History: make([]LevelChange, consts.MaxHistory+1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.record.Verify(), codec.ErrCorruptRecord)
		})
	}
}
