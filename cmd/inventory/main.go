// Command inventory serves the inventory API and ships a few maintenance
// commands.
package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-inventory/internal/config"
	"github.com/goliatone/go-inventory/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	envFiles []string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Per-user product and category inventory service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(
		newServeCmd(opts),
		newConfirmEmailCmd(opts),
		newDemoCmd(opts),
	)
	return root
}

// load reads and validates the configuration and sets up logging.
func (o *rootOptions) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.envFiles...)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), err
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Pretty).With().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Logger()
	return cfg, logger, nil
}
