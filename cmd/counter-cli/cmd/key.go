// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage stored keys",
	RunE: func(*cobra.Command, []string) error {
		return ErrMissingSubcommand
	},
}

var createKeyCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Generate an ed25519 key and store it under [name]",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := handler.CreateKey(cmd.Context(), args[0])
		return err
	},
}

var listKeyCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored keys and their balances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return handler.PrintKeys(cmd.Context())
	},
}

var importKeyCmd = &cobra.Command{
	Use:   "import [name] [path]",
	Short: "Store the raw private key in [path] under [name]",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := handler.ImportKey(cmd.Context(), args[0], args[1])
		return err
	},
}

var exportKeyCmd = &cobra.Command{
	Use:   "export [name] [path]",
	Short: "Write the raw private key stored under [name] to [path]",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handler.ExportKey(cmd.Context(), args[0], args[1])
	},
}
