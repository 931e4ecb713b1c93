// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys holds the name of each key a transaction may touch and the
// permissions it holds on that key. Use [Add] rather than assigning
// directly so that permissions requested more than once are merged.
type Keys map[string]Permissions

// Permissions is a bitset of Read, Allocate and Write.
type Permissions byte

// Add grants [permission] on [name] in addition to anything already granted.
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}
