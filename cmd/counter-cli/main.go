// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "counter-cli" runs the counter program over a local ledger.
package main

import (
	"os"

	"github.com/ava-labs/counterprogram/cmd/counter-cli/cmd"
	"github.com/ava-labs/counterprogram/utils"
)

func main() {
	if err := cmd.Execute(); err != nil {
		utils.Outf("{{red}}counter-cli exited with error:{{/}} %+v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
