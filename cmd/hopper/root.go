package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/config"
	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/log"
	"github.com/filehopper/hopper/pkg/party"
)

var (
	// Flags
	configFile string
	dataDir    string
	debug      bool
	quiet      bool
)

// newRootOpts loads the settings file and opens the data stores shared by
// every command. It runs after flag parsing, so --config and --data-dir
// are honored.
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return nil, errors.Errorf("loading settings: %w", err)
	}

	dir, err := cfg.ResolveDataDir(dataDir)
	if err != nil {
		return nil, errors.Errorf("resolving data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("creating data directory: %w", err)
	}

	suppliers := party.NewSupplierStore(dir)
	if err := suppliers.Load(ctx); err != nil {
		return nil, err
	}
	clients := party.NewClientStore(dir)
	if err := clients.Load(ctx); err != nil {
		return nil, err
	}
	delivery := party.NewDeliveryStore(dir)
	if err := delivery.Load(ctx); err != nil {
		return nil, err
	}
	sequence := document.NewSequence(dir)
	if err := sequence.Load(ctx); err != nil {
		return nil, err
	}

	console := io.Writer(os.Stdout)
	if quiet {
		console = io.Discard
	}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return &opts.RootOpts{
		Settings:  cfg,
		DataDir:   dir,
		Suppliers: suppliers,
		Clients:   clients,
		Delivery:  delivery,
		Sequence:  sequence,
		Console:   log.New(console, level),
		User:      log.NewUserLogger(ctx),
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "settings file path (default: search the working directory)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for stores and counters (default: settings, then ~/.hopper)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress console output")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
