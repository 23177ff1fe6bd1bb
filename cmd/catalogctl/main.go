// Package main provides catalogctl, the operator tool for the exercise catalog.
package main

import (
	"fmt"
	"os"

	"sageset/web/internal/app"
	"sageset/web/internal/config"
	"sageset/web/internal/logger"

	"github.com/spf13/cobra"
)

var (
	// configDir is set by the --config flag.
	configDir string

	// Opened by PersistentPreRunE.
	cfg    config.Config
	log    *logger.Logger
	stores *app.Stores
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "catalogctl manages the SageSet exercise catalog",
	Long: `catalogctl seeds and imports exercises into the shared catalog and
creates administrator accounts for the admin console. It reads the same
configuration as the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: openStores,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer log.Sync()
		return stores.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// openStores loads config and connects the configured database.
func openStores(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadConfig(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err = logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	stores, err = app.OpenStores(cmd.Context(), cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	return nil
}
