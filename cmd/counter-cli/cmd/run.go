// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/counterprogram/cli"
)

var runCmd = &cobra.Command{
	Use:   "run [plan.yaml | -]",
	Short: "Run a plan of counter operations",
	Long:  "Runs every step of a YAML plan and prints one JSON result per step. A path of - reads the plan from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := readPlan(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		plan, err := cli.UnmarshalPlan(b)
		if err != nil {
			return err
		}
		_, err = handler.RunPlan(cmd.Context(), plan, cmd.OutOrStdout())
		return err
	},
}

func readPlan(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
