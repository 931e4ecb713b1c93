// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotOwner          = errors.New("account not owned by program")
	ErrAccountInUse      = errors.New("account already in use")
	ErrAccountTooLarge   = errors.New("account data too large")
	ErrSlotSizeMismatch  = errors.New("data does not match allocated size")
	ErrUnknownProgram    = errors.New("unknown program")
	ErrDuplicateProgram  = errors.New("program already registered")
)
