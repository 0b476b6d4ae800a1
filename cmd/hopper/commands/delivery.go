package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/party"
)

// NewDeliveryCmd creates the delivery address command tree.
func NewDeliveryCmd(root *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delivery",
		Short: "Manage reusable delivery addresses",
	}
	cmd.AddCommand(
		newDeliveryAddCmd(root),
		newDeliveryListCmd(root),
		newDeliveryRemoveCmd(root),
	)
	return cmd
}

func newDeliveryAddCmd(root *opts.RootOpts) *cobra.Command {
	var (
		address  string
		remarks  string
		favorite bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a delivery address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := root.Delivery.Add(party.DeliveryAddress{
				Name:     args[0],
				Address:  address,
				Remarks:  remarks,
				Favorite: favorite,
			})
			if err != nil {
				return err
			}
			if err := root.Delivery.Save(ctx); err != nil {
				return err
			}
			root.Console.Successf("added delivery address %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "street, number, and city on one line")
	cmd.Flags().StringVar(&remarks, "remarks", "", "delivery instructions, e.g. gate or dock")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "pin the address to the top of listings")
	return cmd
}

func newDeliveryListCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every delivery address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addresses := root.Delivery.List()
			if len(addresses) == 0 {
				root.Console.Info("no delivery addresses yet")
				return nil
			}
			for _, addr := range addresses {
				marker := " "
				if addr.Favorite {
					marker = "★"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, addr.Name)
				if addr.Address != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", addr.Address)
				}
				if addr.Remarks != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    (%s)\n", addr.Remarks)
				}
			}
			return nil
		},
	}
}

func newDeliveryRemoveCmd(root *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a delivery address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !root.Delivery.Remove(args[0]) {
				return errors.Errorf("no delivery address named %q", args[0])
			}
			if err := root.Delivery.Save(cmd.Context()); err != nil {
				return err
			}
			root.Console.Successf("removed delivery address %s", args[0])
			return nil
		},
	}
}
