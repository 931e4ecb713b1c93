// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrCorruptRecord      = errors.New("corrupt record")
	ErrCapacityExceeded   = errors.New("record exceeds slot capacity")
	ErrSlotSizeMismatch   = errors.New("payload does not fill slot")
	ErrInsufficientLength = errors.New("insufficient length")
)
