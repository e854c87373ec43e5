// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ava-labs/counterprogram/cli"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/utils"
)

func parseUint(name string, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidArgs, name, s, err)
	}
	return v, nil
}

func txResult(result *runtime.Result, err error) error {
	if err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", cli.ErrTxFailed, result.Kind)
	}
	return nil
}

var airdropCmd = &cobra.Command{
	Use:   "airdrop [key or address] [lamports]",
	Short: "Credit lamports to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lamports, err := parseUint("lamports", args[1])
		if err != nil {
			return err
		}
		_, err = handler.Airdrop(cmd.Context(), args[0], lamports)
		return err
	},
}

var initializeCmd = &cobra.Command{
	Use:   "initialize [payer] [counter] [value]",
	Short: "Create the counter account of the stored key [counter] holding [value]",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseUint("value", args[2])
		if err != nil {
			return err
		}
		return txResult(handler.Initialize(cmd.Context(), args[0], args[1], value))
	},
}

var incrementCmd = &cobra.Command{
	Use:   "increment [counter]",
	Short: "Add one to a counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return txResult(handler.Increment(cmd.Context(), args[0], signer))
	},
}

var decrementCmd = &cobra.Command{
	Use:   "decrement [counter]",
	Short: "Subtract one from a counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return txResult(handler.Decrement(cmd.Context(), args[0], signer))
	},
}

var getCmd = &cobra.Command{
	Use:   "get [counter]",
	Short: "Print the value of a counter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := handler.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		utils.Outf("{{cyan}}counter:{{/}} %d\n", v)
		return nil
	},
}
