// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	AddressLen = 32
	ByteLen    = 1
	IntLen     = 4
	Uint16Len  = 2
	Uint32Len  = 4
	Uint64Len  = 8
	MaxUint16  = ^uint16(0)
	MaxUint32  = ^uint32(0)
	MaxUint64  = ^uint64(0)
)

const (
	// SecondsPerDay is the width of a reward day.
	SecondsPerDay = 60 * 60 * 24

	// CreditPerLevel is the amount of credit needed to move up one level.
	CreditPerLevel = 100
	// MaxLevel is the highest reward level. Any credit at or above
	// MaxLevel*CreditPerLevel saturates here.
	MaxLevel uint8 = 8

	// MaxHistory bounds the number of level changes a participant slot can
	// hold.
	MaxHistory = 100
)
