// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/consts"
)

const (
	// LevelChangeLen is the encoded size of a [LevelChange].
	LevelChangeLen = consts.Uint32Len + consts.Uint16Len + consts.ByteLen

	// RecordHeaderLen is the encoded size of a [Record] with no history,
	// including the history length.
	RecordHeaderLen = consts.Uint16Len + 3*consts.Uint32Len

	// MaxRecordLen is the largest encoded [Record].
	MaxRecordLen = RecordHeaderLen + consts.MaxHistory*LevelChangeLen
)

// Level maps a credit balance to its reward level.
func Level(credit uint32) uint8 {
	lv := credit / consts.CreditPerLevel
	if lv > uint32(consts.MaxLevel) {
		return consts.MaxLevel
	}
	return uint8(lv)
}

// AddClamped adds [delta] to [credit]. A result outside the range of uint32
// resets the balance to 0.
func AddClamped(credit uint32, delta int32) uint32 {
	sum := int64(credit) + int64(delta)
	if sum < 0 || sum > int64(consts.MaxUint32) {
		return 0
	}
	return uint32(sum)
}

// LevelChange records the day a participant reached a level.
type LevelChange struct {
	Day        uint32
	CampaignID uint16
	Level      uint8
}

// Record is the state of one participant.
type Record struct {
	CampaignID  uint16
	Credit      uint32
	RewardSince uint32
	History     []LevelChange
}

// NewRecord creates the record of a participant seen for the first time.
func NewRecord(campaign uint16, delta int32, rewardSince uint32, day uint32) *Record {
	credit := AddClamped(0, delta)
	return &Record{
		CampaignID:  campaign,
		Credit:      credit,
		RewardSince: rewardSince,
		History: []LevelChange{
			{Day: day, CampaignID: campaign, Level: Level(credit)},
		},
	}
}

// Level is the level implied by the current credit.
func (r *Record) Level() uint8 {
	return Level(r.Credit)
}

// ApplyCredit adjusts the balance by [delta] on [day] and moves the record
// to [campaign]. A level transition is appended to the history and reported
// through the returned bool. The record is left unmodified on error.
func (r *Record) ApplyCredit(campaign uint16, delta int32, day uint32) (bool, error) {
	oldLevel := r.Level()
	credit := AddClamped(r.Credit, delta)
	newLevel := Level(credit)
	changed := oldLevel != newLevel
	if changed {
		if len(r.History) >= consts.MaxHistory {
			return false, fmt.Errorf("%w: history holds %d level changes", codec.ErrCapacityExceeded, len(r.History))
		}
		if l := len(r.History); l > 0 && day < r.History[l-1].Day {
			day = r.History[l-1].Day
		}
		r.History = append(r.History, LevelChange{Day: day, CampaignID: campaign, Level: newLevel})
	}
	r.Credit = credit
	r.CampaignID = campaign
	return changed, nil
}

// Settle marks every day up to [asOfDay] as paid. The history is compacted to
// the level in force on [asOfDay], re-dated to [asOfDay], followed by any
// later transitions.
func (r *Record) Settle(asOfDay uint32) {
	if asOfDay <= r.RewardSince {
		return
	}
	last := -1
	for i, e := range r.History {
		if e.Day > asOfDay {
			break
		}
		last = i
	}
	if last >= 0 {
		current := r.History[last]
		current.Day = asOfDay
		history := make([]LevelChange, 0, len(r.History)-last)
		history = append(history, current)
		r.History = append(history, r.History[last+1:]...)
	}
	r.RewardSince = asOfDay
}

// Verify checks that a decoded record is internally consistent.
func (r *Record) Verify() error {
	if len(r.History) == 0 {
		return fmt.Errorf("%w: empty history", codec.ErrCorruptRecord)
	}
	if len(r.History) > consts.MaxHistory {
		return fmt.Errorf("%w: history holds %d level changes", codec.ErrCorruptRecord, len(r.History))
	}
	for i := 1; i < len(r.History); i++ {
		if r.History[i].Day < r.History[i-1].Day {
			return fmt.Errorf("%w: history out of order at %d", codec.ErrCorruptRecord, i)
		}
	}
	if last := r.History[len(r.History)-1]; last.Level != r.Level() {
		return fmt.Errorf("%w: level %d does not match credit %d", codec.ErrCorruptRecord, last.Level, r.Credit)
	}
	return nil
}
