// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermissions(t *testing.T) {
	tests := []struct {
		name       string
		permission Permissions
		canRead    bool
		canAlloc   bool
		canWrite   bool
	}{
		{
			name:       "none",
			permission: None,
		},
		{
			name:       "read",
			permission: Read,
			canRead:    true,
		},
		{
			name:       "write",
			permission: Write,
			canRead:    true,
			canWrite:   true,
		},
		{
			name:       "allocate",
			permission: Allocate,
			canRead:    true,
			canAlloc:   true,
		},
		{
			name:       "all",
			permission: All,
			canRead:    true,
			canAlloc:   true,
			canWrite:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			require.Equal(tt.canRead, tt.permission.Has(Read))
			require.Equal(tt.canAlloc, tt.permission.Has(Allocate))
			require.Equal(tt.canWrite, tt.permission.Has(Write))
		})
	}
}

func TestAddMergesPermissions(t *testing.T) {
	require := require.New(t)

	keys := make(Keys)
	keys.Add("slot", Read)
	keys.Add("slot", Write)
	require.True(keys["slot"].Has(Write))
	require.False(keys["slot"].Has(Allocate))

	keys.Add("slot", Allocate)
	require.Equal(All, keys["slot"])
}
