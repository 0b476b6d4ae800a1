package commands

import (
	"github.com/spf13/cobra"

	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/operation"
)

// NewBOMCmd creates the BOM inspection command tree.
func NewBOMCmd(root *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bom",
		Short: "Inspect a BOM against the production files",
	}
	cmd.AddCommand(newBOMCheckCmd(root))
	return cmd
}

func newBOMCheckCmd(root *opts.RootOpts) *cobra.Command {
	var (
		source  string
		bomPath string
		exts    string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which BOM lines have files for each extension",
		Long: `Check matches every BOM line against the source directory and reports,
per extension, whether a file was found. Alias groups such as step/stp
count as covered when either member exists. With --out the full table is
written as .xlsx or .csv.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			extSet, aliases, err := resolveExts(root, exts)
			if err != nil {
				return err
			}
			_, err = operation.Check(cmd.Context(), operation.Options{
				Source:     source,
				BOMPath:    bomPath,
				Exts:       extSet,
				Aliases:    aliases,
				Ignore:     root.Settings.IgnorePatterns,
				ReportPath: out,
				Console:    root.Console,
				User:       root.User,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "directory holding the production files")
	cmd.Flags().StringVar(&bomPath, "bom", "", "BOM file (.csv, .txt, or .xlsx)")
	cmd.Flags().StringVar(&exts, "exts", "", "extensions to check, e.g. pdf,step (default: settings)")
	cmd.Flags().StringVar(&out, "out", "", "write the coverage table to this .xlsx or .csv file")
	cobra.CheckErr(cmd.MarkFlagRequired("source"))
	cobra.CheckErr(cmd.MarkFlagRequired("bom"))
	return cmd
}
