package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/bom"
	"github.com/filehopper/hopper/pkg/config"
	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/operation"
	"github.com/filehopper/hopper/pkg/scan"
)

// NewCopyPerProdCmd creates the main command: copy matched files into
// per-production folders and generate each folder's document.
func NewCopyPerProdCmd(root *opts.RootOpts) *cobra.Command {
	var (
		source        string
		dest          string
		bomPath       string
		exts          string
		docType       string
		numbers       []string
		suppliers     []string
		deliveries    []string
		client        string
		projectNumber string
		projectName   string
		deadline      string
		notes         []string
		paste         bool
		remember      bool
	)
	cmd := &cobra.Command{
		Use:   "copy-per-prod",
		Short: "Copy files into per-production folders and generate documents",
		Long: `Copy-per-prod groups the BOM lines by production, copies every matched
file into destination/<production>/, and renders that production's
document (PDF and Excel) into the same folder. Orders and quote requests
take the production's supplier, quotes take --client. Document numbers
come from the per-type counter unless overridden with --doc-number.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := document.ParseType(docType)
			if err != nil {
				return err
			}
			extSet, aliases, err := resolveExts(root, exts)
			if err != nil {
				return err
			}
			supplierOv, err := parsePairs(suppliers, "supplier")
			if err != nil {
				return err
			}
			numberOv, err := parsePairs(numbers, "doc-number")
			if err != nil {
				return err
			}
			deliveryOv, err := parsePairs(deliveries, "delivery")
			if err != nil {
				return err
			}

			var items []bom.LineItem
			if paste {
				if bomPath != "" {
					return errors.New("--paste and --bom are mutually exclusive")
				}
				items, err = bom.ReadTSV(ctx, cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			_, err = operation.CopyPerProduction(ctx, operation.Options{
				Source:            source,
				Destination:       dest,
				BOMPath:           bomPath,
				Items:             items,
				Exts:              extSet,
				Aliases:           aliases,
				Ignore:            root.Settings.IgnorePatterns,
				DocType:           t,
				Company:           companyFromSettings(root.Settings),
				QuotePrefix:       root.Settings.QuotePrefix,
				FooterNote:        root.Settings.FooterNote,
				Compliance:        complianceFromSettings(root.Settings),
				Notes:             notes,
				Suppliers:         root.Suppliers,
				Clients:           root.Clients,
				Delivery:          root.Delivery,
				Sequence:          root.Sequence,
				SupplierOverrides: supplierOv,
				NumberOverrides:   numberOv,
				DeliveryOverrides: deliveryOv,
				ClientName:        client,
				ProjectNumber:     projectNumber,
				ProjectName:       projectName,
				Deadline:          deadline,
				RememberDefaults:  remember,
				Console:           root.Console,
				User:              root.User,
			})
			return err
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "directory holding the production files")
	cmd.Flags().StringVar(&dest, "dest", "", "destination directory, gets one folder per production")
	cmd.Flags().StringVar(&bomPath, "bom", "", "BOM file (.csv, .txt, or .xlsx)")
	cmd.Flags().StringVar(&exts, "exts", "", "extensions to match, e.g. pdf,step (default: settings)")
	cmd.Flags().StringVar(&docType, "doc-type", "order", "document type: order, quote, or quote-request")
	cmd.Flags().StringArrayVar(&numbers, "doc-number", nil, "PRODUCTION=N number override (repeatable)")
	cmd.Flags().StringArrayVar(&suppliers, "supplier", nil, "PRODUCTION=NAME supplier override (repeatable)")
	cmd.Flags().StringArrayVar(&deliveries, "delivery", nil, "PRODUCTION=ADDRESS delivery address, or none|pickup|tbd (repeatable)")
	cmd.Flags().StringVar(&client, "client", "", "client receiving the quote")
	cmd.Flags().StringVar(&projectNumber, "project-number", "", "project number printed on the documents")
	cmd.Flags().StringVar(&projectName, "project-name", "", "project name printed on the documents")
	cmd.Flags().StringVar(&deadline, "deadline", "", "reply-by text for quote requests, printed verbatim")
	cmd.Flags().StringArrayVar(&notes, "note", nil, "extra document note (repeatable)")
	cmd.Flags().BoolVar(&paste, "paste", false, "read tab-separated BOM lines from stdin instead of --bom")
	cmd.Flags().BoolVar(&remember, "remember-defaults", false, "persist --supplier overrides as production defaults")
	cobra.CheckErr(cmd.MarkFlagRequired("source"))
	cobra.CheckErr(cmd.MarkFlagRequired("dest"))
	return cmd
}

// resolveExts parses the --exts flag, falling back to the configured
// default filter. Alias groups always come from the settings.
func resolveExts(root *opts.RootOpts, raw string) (scan.ExtSet, [][]string, error) {
	aliases := root.Settings.Aliases()
	if raw == "" {
		raw = root.Settings.DefaultExtensions
	}
	set, err := scan.ParseExts(raw, aliases)
	if err != nil {
		return nil, nil, err
	}
	return set, aliases, nil
}

func companyFromSettings(cfg *config.Settings) document.Company {
	if cfg.Company == nil {
		return document.Company{}
	}
	return document.Company{
		Name:         cfg.Company.Name,
		AddressLine1: cfg.Company.AddressLine1,
		AddressLine2: cfg.Company.AddressLine2,
		VATNumber:    cfg.Company.VATNumber,
		Phone:        cfg.Company.Phone,
		Email:        cfg.Company.Email,
	}
}

func complianceFromSettings(cfg *config.Settings) document.ComplianceNote {
	if cfg.ComplianceNote == nil {
		return document.ComplianceNote{}
	}
	return document.ComplianceNote{
		Text:        cfg.ComplianceNote.Text,
		Productions: cfg.ComplianceNote.Productions,
	}
}
