// Package cmd implements the CLI commands for codecrtd.
package cmd

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/codecrt/internal/config"
	"github.com/jmylchreest/codecrt/internal/observability"
	"github.com/spf13/cobra"
)

// cfg is populated once in the root command's PersistentPreRunE and
// shared by every subcommand.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "codecrtd",
	Short: "Demo host-binding daemon for the codecrt codec runtime",
	Long: `codecrtd exercises the codecrt codec runtime from the command line and
over gRPC: probing codec support, demuxing a container's tracks, decoding
a still image, and serving a minimal gRPC health/reflection endpoint
fronting the runtime.

Configuration is read from ./config.yaml (or --config), environment
variables prefixed CODECRT_, and command-line flags, in increasing
order of precedence.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to a config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	rootCmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		return initConfigAndLogging(c)
	}
}

func initConfigAndLogging(c *cobra.Command) error {
	configPath, _ := c.Flags().GetString("config")

	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded

	if level, _ := c.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if format, _ := c.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = strings.ToLower(format)
	}

	logger := observability.NewLogger(cfg.Logging)
	observability.SetDefault(logger)
	return nil
}
