// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ava-labs/counterprogram/cli"
	"github.com/ava-labs/counterprogram/config"
	"github.com/ava-labs/counterprogram/utils"
)

var (
	handler    *cli.Handler
	logs       *logFactory
	configPath string
	dataDir    string
	logLevel   string
	signer     string

	rootCmd = &cobra.Command{
		Use:        "counter-cli",
		Short:      "Counter program CLI",
		Long:       "Runs the counter program over a local ledger and serves it over HTTP.",
		SuggestFor: []string{"counter-cli", "countercli"},
	}
)

func init() {
	cobra.EnablePrefixMatching = true
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(
		keyCmd,
		airdropCmd,
		initializeCmd,
		incrementCmd,
		decrementCmd,
		getCmd,
		runCmd,
		serveCmd,
	)

	rootCmd.PersistentFlags().StringVar(
		&configPath,
		"config",
		"",
		"path to a YAML config file",
	)
	rootCmd.PersistentFlags().StringVar(
		&dataDir,
		"data-dir",
		"",
		"directory holding the ledger, index and logs (overrides the config)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"log level (overrides the config)",
	)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logs, err = newLogFactory(&cfg)
		if err != nil {
			return err
		}
		log, err := logs.Make("counter-cli")
		if err != nil {
			return err
		}
		utils.Outf("{{yellow}}data dir:{{/}} %s\n", cfg.DataDir)
		handler, err = cli.New(cmd.Context(), cfg, log)
		return err
	}

	// key
	keyCmd.AddCommand(
		createKeyCmd,
		importKeyCmd,
		exportKeyCmd,
		listKeyCmd,
	)

	// counter
	for _, c := range []*cobra.Command{incrementCmd, decrementCmd} {
		c.Flags().StringVar(
			&signer,
			"signer",
			"",
			"stored key that signs the transaction",
		)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, cfg.Verify()
}

func closeAll() error {
	var err error
	if handler != nil {
		err = handler.Close()
		handler = nil
	}
	if logs != nil {
		logs.Close()
		logs = nil
	}
	return err
}

// Execute runs the CLI until the command finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeAll(); err == nil {
		err = cerr
	}
	return err
}
