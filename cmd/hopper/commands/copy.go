package commands

import (
	"github.com/spf13/cobra"

	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/operation"
)

// NewCopyCmd creates the flat copy command: every match straight into the
// destination, no production folders, no documents.
func NewCopyCmd(root *opts.RootOpts) *cobra.Command {
	var (
		source  string
		dest    string
		bomPath string
		exts    string
	)
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy every matched file into one destination directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extSet, aliases, err := resolveExts(root, exts)
			if err != nil {
				return err
			}
			_, err = operation.FlatCopy(cmd.Context(), operation.Options{
				Source:      source,
				Destination: dest,
				BOMPath:     bomPath,
				Exts:        extSet,
				Aliases:     aliases,
				Ignore:      root.Settings.IgnorePatterns,
				Console:     root.Console,
				User:        root.User,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "directory holding the production files")
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory")
	cmd.Flags().StringVar(&bomPath, "bom", "", "BOM file (.csv, .txt, or .xlsx)")
	cmd.Flags().StringVar(&exts, "exts", "", "extensions to match, e.g. pdf,step (default: settings)")
	cobra.CheckErr(cmd.MarkFlagRequired("source"))
	cobra.CheckErr(cmd.MarkFlagRequired("dest"))
	cobra.CheckErr(cmd.MarkFlagRequired("bom"))
	return cmd
}
