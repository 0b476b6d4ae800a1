package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/cmd/hopper/opts"
	"github.com/filehopper/hopper/pkg/party"
)

// partyStore is the surface shared by the supplier and client stores, so
// both command trees can reuse the same subcommands.
type partyStore interface {
	Add(p party.Party) error
	Upsert(p party.Party) (created bool, err error)
	Remove(name string) bool
	Find(name string) (party.Party, bool)
	Search(query string) []party.Party
	List() []party.Party
	Len() int
	Save(ctx context.Context) error
	ImportCSV(ctx context.Context, path string, defaults map[string]string) (created, updated int, err error)
	ExportCSV(ctx context.Context, path string) error
}

// partyFlags collects the record fields settable from the command line.
type partyFlags struct {
	vat      string
	address1 string
	address2 string
	phone    string
	email    string
	favorite bool
}

func (f *partyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.vat, "vat", "", "VAT number")
	cmd.Flags().StringVar(&f.address1, "address1", "", "first address line")
	cmd.Flags().StringVar(&f.address2, "address2", "", "second address line")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().BoolVar(&f.favorite, "favorite", false, "pin the record to the top of listings")
}

func (f *partyFlags) party(name string) party.Party {
	return party.Party{
		Name:         name,
		VATNumber:    f.vat,
		AddressLine1: f.address1,
		AddressLine2: f.address2,
		Phone:        f.phone,
		Email:        f.email,
		Favorite:     f.favorite,
	}
}

func newPartyAddCmd(root *opts.RootOpts, noun string, store func() partyStore) *cobra.Command {
	flags := &partyFlags{}
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: fmt.Sprintf("Add a %s", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := store().Add(flags.party(args[0])); err != nil {
				return err
			}
			if err := store().Save(ctx); err != nil {
				return err
			}
			root.Console.Successf("added %s %s", noun, args[0])
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newPartyListCmd(root *opts.RootOpts, noun string, store func() partyStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List every %s", noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parties := store().List()
			if len(parties) == 0 {
				root.Console.Infof("no %ss yet", noun)
				return nil
			}
			for _, p := range parties {
				printPartyLine(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newPartyFindCmd(root *opts.RootOpts, noun string, store func() partyStore) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: fmt.Sprintf("Find a %s by name", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches := store().Search(args[0])
			if len(matches) == 0 {
				return errors.Errorf("no %s matches %q", noun, args[0])
			}
			for _, p := range matches {
				printPartyDetail(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newPartyRemoveCmd(root *opts.RootOpts, noun string, store func() partyStore) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: fmt.Sprintf("Remove a %s", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !store().Remove(args[0]) {
				return errors.Errorf("no %s named %q", noun, args[0])
			}
			if err := store().Save(cmd.Context()); err != nil {
				return err
			}
			root.Console.Successf("removed %s %s", noun, args[0])
			return nil
		},
	}
}

func newPartyImportCmd(root *opts.RootOpts, noun string, store func() partyStore) *cobra.Command {
	var defaults []string
	cmd := &cobra.Command{
		Use:   "import-csv <path>",
		Short: fmt.Sprintf("Import %ss from a CSV file", noun),
		Long: fmt.Sprintf(`Import %ss from a CSV file. The header row decides the columns; synonyms
like "Leverancier" or "Adres 1" are accepted. Existing records are updated
field by field, new ones created. Columns the file does not carry can be
filled for every row with --default field=value.`, noun),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			fill, err := parsePairs(defaults, "default")
			if err != nil {
				return err
			}
			created, updated, err := store().ImportCSV(ctx, args[0], fill)
			if err != nil {
				return err
			}
			if err := store().Save(ctx); err != nil {
				return err
			}
			root.Console.Successf("imported %d new and %d updated %ss", created, updated, noun)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&defaults, "default", nil, "field=value fallback for columns the file lacks (repeatable)")
	return cmd
}

func newPartyExportCmd(root *opts.RootOpts, noun string, store func() partyStore) *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv <path>",
		Short: fmt.Sprintf("Export every %s to a CSV file", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store().ExportCSV(cmd.Context(), args[0]); err != nil {
				return err
			}
			root.Console.Successf("exported %d %ss to %s", store().Len(), noun, args[0])
			return nil
		},
	}
}

func printPartyLine(w io.Writer, p party.Party) {
	marker := " "
	if p.Favorite {
		marker = "★"
	}
	line := p.Name
	if p.VATNumber != "" {
		line += "  (" + p.VATNumber + ")"
	}
	fmt.Fprintf(w, "%s %s\n", marker, line)
}

func printPartyDetail(w io.Writer, p party.Party) {
	printPartyLine(w, p)
	for _, field := range []struct {
		label, value string
	}{
		{"address", strings.TrimSpace(strings.Join([]string{p.AddressLine1, p.AddressLine2}, ", "))},
		{"phone", p.Phone},
		{"email", p.Email},
	} {
		if v := strings.Trim(field.value, ", "); v != "" {
			fmt.Fprintf(w, "    %-8s %s\n", field.label, v)
		}
	}
}

// parsePairs turns repeated KEY=VALUE flag values into a map.
func parsePairs(pairs []string, flagName string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, errors.Errorf("--%s wants KEY=VALUE, got %q", flagName, pair)
		}
		if _, dup := out[key]; dup {
			return nil, errors.Errorf("--%s given twice for %q", flagName, key)
		}
		out[key] = value
	}
	return out, nil
}
