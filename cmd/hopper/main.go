package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/filehopper/hopper/cmd/hopper/commands"
	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/log"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	// Create user logger
	userLogger := log.NewUserLogger(ctx)

	// Shared options, filled once flags are parsed
	shared := &opts.RootOpts{}

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "hopper",
		Short: "Copy production files per BOM and generate the matching documents",
		Long: `hopper matches the part numbers of a BOM against a directory of
production files, copies every match into per-production folders, and
generates the order, quote, or quote request for each folder as PDF and
Excel. It also keeps small local directories of suppliers, clients, and
delivery addresses, with CSV import and export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			loaded, err := newRootOpts(cmd.Context())
			if err != nil {
				return err
			}
			*shared = *loaded
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewSuppliersCmd(shared),
		commands.NewClientsCmd(shared),
		commands.NewDeliveryCmd(shared),
		commands.NewBOMCmd(shared),
		commands.NewCopyCmd(shared),
		commands.NewCopyPerProdCmd(shared),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		userLogger.LogValidation(false, "Command failed", err)
		os.Exit(1)
	}
}
