// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settings

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/ava-labs/creditvm/consts"
)

var (
	ErrDuplicateEntry = errors.New("duplicate settings entry")
	ErrInvalidLevel   = errors.New("invalid level")
)

// Entry is the daily reward paid to participants of a campaign while they
// hold a level.
type Entry struct {
	CampaignID  uint16
	Level       uint8
	DailyReward uint64
}

type rateKey struct {
	campaign uint16
	level    uint8
}

// Table is the reward-rate table of the ledger. It is built once from the
// stored entries and passed explicitly to whoever needs a rate.
type Table struct {
	authority solana.PublicKey
	entries   []Entry
	index     map[rateKey]uint64
}

// New validates [entries] and indexes them by (campaign, level).
func New(authority solana.PublicKey, entries []Entry) (*Table, error) {
	index := make(map[rateKey]uint64, len(entries))
	for _, e := range entries {
		if e.Level > consts.MaxLevel {
			return nil, fmt.Errorf("%w: campaign=%d level=%d", ErrInvalidLevel, e.CampaignID, e.Level)
		}
		k := rateKey{campaign: e.CampaignID, level: e.Level}
		if _, ok := index[k]; ok {
			return nil, fmt.Errorf("%w: campaign=%d level=%d", ErrDuplicateEntry, e.CampaignID, e.Level)
		}
		index[k] = e.DailyReward
	}
	return &Table{
		authority: authority,
		entries:   append([]Entry(nil), entries...),
		index:     index,
	}, nil
}

// Authority is the identity allowed to administer the ledger.
func (t *Table) Authority() solana.PublicKey {
	return t.authority
}

// Lookup returns the daily reward of [campaign] at [level]. Pairs missing
// from the table earn nothing.
func (t *Table) Lookup(campaign uint16, level uint8) (uint64, bool) {
	r, ok := t.index[rateKey{campaign: campaign, level: level}]
	return r, ok
}

// Rate is [Lookup] without the presence flag.
func (t *Table) Rate(campaign uint16, level uint8) uint64 {
	r, _ := t.Lookup(campaign, level)
	return r
}

// Entries returns a copy of the entries in their original order.
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

func (t *Table) Len() int {
	return len(t.entries)
}
