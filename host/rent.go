// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package host

const (
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionYears         = 2
)

// RentExemptMinimum is the balance an account holding [space] bytes needs to
// never be charged rent.
func RentExemptMinimum(space int) uint64 {
	return uint64(accountStorageOverhead+space) * lamportsPerByteYear * exemptionYears
}
