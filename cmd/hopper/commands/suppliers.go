package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/cmd/hopper/opts"
)

// NewSuppliersCmd creates the supplier directory command tree.
func NewSuppliersCmd(root *opts.RootOpts) *cobra.Command {
	store := func() partyStore { return root.Suppliers }

	cmd := &cobra.Command{
		Use:   "suppliers",
		Short: "Manage the supplier directory",
	}
	cmd.AddCommand(
		newPartyAddCmd(root, "supplier", store),
		newPartyListCmd(root, "supplier", store),
		newPartyFindCmd(root, "supplier", store),
		newPartyRemoveCmd(root, "supplier", store),
		newPartyImportCmd(root, "supplier", store),
		newPartyExportCmd(root, "supplier", store),
		newSetDefaultCmd(root),
		newGetDefaultCmd(root),
		newClearDefaultCmd(root),
	)
	return cmd
}

func newSetDefaultCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <production> <supplier>",
		Short: "Set the default supplier for a production group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.Suppliers.SetDefault(args[0], args[1]); err != nil {
				return err
			}
			if err := root.Suppliers.Save(cmd.Context()); err != nil {
				return err
			}
			root.Console.Successf("%s now defaults to %s", args[0], args[1])
			return nil
		},
	}
}

func newGetDefaultCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "get-default <production>",
		Short: "Show the default supplier for a production group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ok := root.Suppliers.DefaultFor(args[0])
			if !ok {
				return errors.Errorf("no default supplier for %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func newClearDefaultCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-default <production>",
		Short: "Clear the default supplier for a production group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !root.Suppliers.ClearDefault(args[0]) {
				return errors.Errorf("no default supplier for %q", args[0])
			}
			if err := root.Suppliers.Save(cmd.Context()); err != nil {
				return err
			}
			root.Console.Successf("cleared the default for %s", args[0])
			return nil
		},
	}
}
