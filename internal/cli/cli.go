//-------------------------------------------------------------------------
//
// pgEdge Order Analytics
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-orderbi.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-orderbi/internal/config"
	"github.com/pgEdge/pgedge-orderbi/internal/logging"
	"github.com/pgEdge/pgedge-orderbi/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	envFile    string
	connection string
	logLevel   string
	logJSON    bool

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-orderbi",
		Short: "Order history analytics on PostgreSQL",
		Long: `pgedge-orderbi loads a tab-separated order history export into a
small star schema (Region, Country, Customer, Product, OrderDetail) and
answers business questions about it, either through a fixed set of
reports or through a web assistant that turns questions into SQL.

Typical use:
  pgedge-orderbi generate --rows 5000 --out orders_data.txt
  pgedge-orderbi load --file orders_data.txt
  pgedge-orderbi report top-customers
  pgedge-orderbi serve`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-orderbi.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"dotenv file with credentials (default: .env)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false,
		"write logs as JSON instead of console text")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.AddCommand(statusCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if envFile != "" {
		cfg.EnvFile = envFile
		if err := cfg.LoadSecrets(envFile); err != nil {
			return err
		}
	}
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: !logJSON,
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logging.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
