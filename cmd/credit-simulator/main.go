// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"os"

	"github.com/ava-labs/creditvm/cmd/credit-simulator/cmd"
	"github.com/ava-labs/creditvm/utils"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := cmd.NewRootCmd().ExecuteContext(ctx); err != nil {
		utils.Outf("{{red}}error: {{/}}%+v\n", err)
		os.Exit(1)
	}
}
