package commands

import (
	"github.com/spf13/cobra"

	"github.com/filehopper/hopper/cmd/hopper/opts"
)

// NewClientsCmd creates the client directory command tree. Clients share
// the supplier command shapes; there are no per-production defaults.
func NewClientsCmd(root *opts.RootOpts) *cobra.Command {
	store := func() partyStore { return root.Clients }

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage the client directory",
	}
	cmd.AddCommand(
		newPartyAddCmd(root, "client", store),
		newPartyListCmd(root, "client", store),
		newPartyFindCmd(root, "client", store),
		newPartyRemoveCmd(root, "client", store),
		newPartyImportCmd(root, "client", store),
		newPartyExportCmd(root, "client", store),
	)
	return cmd
}
