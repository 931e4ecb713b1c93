// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import "errors"

var (
	ErrInvalidKeyOrPermission = errors.New("key is not in scope or does not have the required permission")
	ErrInvalidKeyValue        = errors.New("value exceeds the chunks allowed by key")
	ErrAllocationDisabled     = errors.New("allocation disabled")
)
