// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"github.com/ava-labs/creditvm/codec"
	"github.com/ava-labs/creditvm/consts"
	"github.com/ava-labs/creditvm/ledger"
)

const (
	// AccountsNamespace is the subdirectory and metrics namespace of the
	// host account database.
	AccountsNamespace = "accountsdb"

	// TokenReferenceLen is the size of the token reference slot.
	TokenReferenceLen = consts.AddressLen

	// ParticipantSlotLen is the fixed capacity of every participant slot.
	ParticipantSlotLen = codec.FramePrefixLen + ledger.MaxRecordLen

	settingsEntryLen  = consts.Uint16Len + consts.ByteLen + consts.Uint64Len
	settingsHeaderLen = consts.AddressLen + consts.Uint32Len

	historyCountOffset = ledger.RecordHeaderLen - consts.Uint32Len
)

// SettingsLen is the size of a settings slot holding [entries] rates.
func SettingsLen(entries int) int {
	return settingsHeaderLen + entries*settingsEntryLen
}
