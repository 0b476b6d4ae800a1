package party

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// partyColumn is one entry of the declared CSV schema: the canonical column
// key (also used for export and for --default overrides) plus the header
// synonyms accepted on import. Headers are folded before matching, so
// "E-mail" and "Adres 1" resolve too.
type partyColumn struct {
	key      string
	synonyms []string
	required bool
}

// partyColumns is the declared schema in stable export order.
var partyColumns = []partyColumn{
	{key: "name", required: true, synonyms: []string{"name", "supplier", "client", "company", "naam", "leverancier", "klant"}},
	{key: "vat", synonyms: []string{"vat", "vat_number", "vatnumber", "btw", "btw_nummer", "tax_id"}},
	{key: "address1", synonyms: []string{"address1", "address_line_1", "address", "adres", "adres_1", "street", "straat"}},
	{key: "address2", synonyms: []string{"address2", "address_line_2", "adres_2", "city", "gemeente"}},
	{key: "phone", synonyms: []string{"phone", "phone_number", "telephone", "tel", "telefoon", "gsm"}},
	{key: "email", synonyms: []string{"email", "e_mail", "mail", "sales_email"}},
	{key: "favorite", synonyms: []string{"favorite", "favourite", "fav", "favoriet"}},
}

// foldHeader lower-cases a header and collapses runs of non-alphanumerics
// into single underscores: "Adres 1" → "adres_1".
func foldHeader(h string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// resolveColumns maps each CSV column index to its schema key. Unknown
// headers are ignored; a missing required column is an error.
func resolveColumns(headers []string) (map[int]string, error) {
	bySynonym := map[string]string{}
	for _, col := range partyColumns {
		for _, syn := range col.synonyms {
			bySynonym[syn] = col.key
		}
	}

	mapping := map[int]string{}
	seen := map[string]bool{}
	for i, h := range headers {
		key, ok := bySynonym[foldHeader(h)]
		if !ok || seen[key] {
			continue // first matching column wins
		}
		mapping[i] = key
		seen[key] = true
	}

	for _, col := range partyColumns {
		if col.required && !seen[col.key] {
			return nil, errors.Errorf("missing required column %q", col.key)
		}
	}
	return mapping, nil
}

// parseFavorite accepts the usual spreadsheet spellings of a set flag.
func parseFavorite(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "ja", "x", "y":
		return true
	}
	return false
}

func partyFromFields(fields map[string]string) Party {
	return Party{
		Name:         strings.TrimSpace(fields["name"]),
		VATNumber:    fields["vat"],
		AddressLine1: fields["address1"],
		AddressLine2: fields["address2"],
		Phone:        fields["phone"],
		Email:        fields["email"],
		Favorite:     parseFavorite(fields["favorite"]),
	}
}

// ValidateDefaults checks that every default key names a schema column
// other than name.
func ValidateDefaults(defaults map[string]string) error {
	valid := map[string]bool{}
	for _, col := range partyColumns {
		valid[col.key] = true
	}
	for key := range defaults {
		if key == "name" {
			return errors.New("the name column cannot have a default")
		}
		if !valid[key] {
			return errors.Errorf("unknown default field %q", key)
		}
	}
	return nil
}

// readPartyRows streams the rows of path through apply, in file order.
// Cells present but empty fall back to the defaults, same as absent
// columns. A malformed row aborts with its 1-based row number (counting the
// header row); rows already passed to apply stay applied.
func readPartyRows(path string, defaults map[string]string, apply func(rowNum int, p Party) error) error {
	if err := ValidateDefaults(defaults); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return errors.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return errors.New("csv file is empty")
	}

	mapping, err := resolveColumns(rows[0])
	if err != nil {
		return err
	}

	for n, row := range rows[1:] {
		rowNum := n + 2

		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		fields := map[string]string{}
		for key, val := range defaults {
			fields[key] = val
		}
		for i, key := range mapping {
			if i >= len(row) {
				continue
			}
			if cell := strings.TrimSpace(row[i]); cell != "" {
				fields[key] = cell
			}
		}

		p := partyFromFields(fields)
		if p.Name == "" {
			return errors.Errorf("row %d: name is empty", rowNum)
		}
		p.VATNumber = NormalizeVAT(p.VATNumber)
		if err := ValidateVAT(p.VATNumber); err != nil {
			return errors.Errorf("row %d: %w", rowNum, err)
		}
		if err := apply(rowNum, p); err != nil {
			return errors.Errorf("row %d: %w", rowNum, err)
		}
	}
	return nil
}

// writePartyCSV writes parties to path in the stable schema column order.
func writePartyCSV(path string, parties []Party) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := make([]string, len(partyColumns))
	for i, col := range partyColumns {
		header[i] = col.key
	}
	if err := w.Write(header); err != nil {
		return errors.Errorf("writing csv header: %w", err)
	}

	for _, p := range parties {
		row := []string{
			p.Name,
			p.VATNumber,
			p.AddressLine1,
			p.AddressLine2,
			p.Phone,
			p.Email,
			strconv.FormatBool(p.Favorite),
		}
		if err := w.Write(row); err != nil {
			return errors.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Errorf("flushing csv: %w", err)
	}
	return nil
}

// importCSV upserts every row of the file into coll in row order, the last
// row winning on duplicate names. Rows applied before a failing row stay
// applied.
func importCSV(ctx context.Context, coll *collection, path string, defaults map[string]string) (created, updated int, err error) {
	err = readPartyRows(path, defaults, func(rowNum int, p Party) error {
		isNew, err := coll.upsert(p)
		if err != nil {
			return err
		}
		if isNew {
			created++
		} else {
			updated++
		}
		return nil
	})
	if err != nil {
		return created, updated, err
	}
	zerolog.Ctx(ctx).Info().
		Str("path", path).
		Int("created", created).
		Int("updated", updated).
		Msg("imported csv")
	return created, updated, nil
}

// ImportCSV imports supplier rows from a CSV file. Defaults fill fields
// whose column is absent from the file (or whose cell is empty).
func (s *SupplierStore) ImportCSV(ctx context.Context, path string, defaults map[string]string) (created, updated int, err error) {
	return importCSV(ctx, &s.coll, path, defaults)
}

// ExportCSV writes all suppliers to a CSV file in stable column order.
func (s *SupplierStore) ExportCSV(ctx context.Context, path string) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("count", s.Len()).Msg("exporting suppliers")
	return writePartyCSV(path, s.List())
}

// ImportCSV imports client rows from a CSV file. Defaults fill fields whose
// column is absent from the file (or whose cell is empty).
func (s *ClientStore) ImportCSV(ctx context.Context, path string, defaults map[string]string) (created, updated int, err error) {
	return importCSV(ctx, &s.coll, path, defaults)
}

// ExportCSV writes all clients to a CSV file in stable column order.
func (s *ClientStore) ExportCSV(ctx context.Context, path string) error {
	zerolog.Ctx(ctx).Debug().Str("path", path).Int("count", s.Len()).Msg("exporting clients")
	return writePartyCSV(path, s.List())
}
