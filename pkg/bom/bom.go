// Package bom parses bill-of-materials input into ordered line items. The
// column layout is a declared schema resolved once against the header row;
// accepted formats are delimited text (comma, semicolon, tab, or pipe),
// xlsx spreadsheets, and pasted tab-separated rows.
package bom

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one BOM row. Surface and Weight stay zero when their columns
// are absent or blank.
type LineItem struct {
	PartNumber  string
	Description string
	Material    string
	Production  string
	Quantity    decimal.Decimal
	Surface     decimal.Decimal // m²
	Weight      decimal.Decimal // kg
}

// MissingColumnError reports a required column absent from the header row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// RowError reports a malformed value in a data row. Row is 1-based and
// counts the header row.
type RowError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: column %q: %s (got %q)", e.Row, e.Column, e.Reason, e.Value)
}

type field int

const (
	fieldPartNumber field = iota
	fieldQuantity
	fieldProduction
	fieldDescription
	fieldMaterial
	fieldSurface
	fieldWeight
)

// columnSpec declares one schema column: its canonical name for error
// messages and the folded header synonyms it answers to.
type columnSpec struct {
	field    field
	name     string
	synonyms []string
	required bool
}

var schema = []columnSpec{
	{field: fieldPartNumber, name: "PartNumber", required: true,
		synonyms: []string{"partnumber", "part_number", "part", "artikel", "artikelnummer", "item", "item_number"}},
	{field: fieldQuantity, name: "Quantity", required: true,
		synonyms: []string{"quantity", "qty", "aantal", "stuks", "count"}},
	{field: fieldProduction, name: "Production", required: true,
		synonyms: []string{"production", "productie", "group", "werkplaats", "process"}},
	{field: fieldDescription, name: "Description",
		synonyms: []string{"description", "omschrijving", "benaming", "naam"}},
	{field: fieldMaterial, name: "Material",
		synonyms: []string{"material", "materiaal", "grade"}},
	{field: fieldSurface, name: "Surface",
		synonyms: []string{"surface", "area", "oppervlakte", "m2", "m_2"}},
	{field: fieldWeight, name: "Weight",
		synonyms: []string{"weight", "gewicht", "kg", "mass", "massa"}},
}

// foldHeader lower-cases a header and collapses runs of non-alphanumerics
// into single underscores, so "Part Number" and "part_number" match.
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

// resolveHeader maps schema fields to column indexes. The first matching
// column wins; unknown columns are ignored.
func resolveHeader(headers []string) (map[field]int, error) {
	byField := map[field]int{}
	bySynonym := map[string]field{}
	for _, spec := range schema {
		for _, syn := range spec.synonyms {
			bySynonym[syn] = spec.field
		}
	}
	for i, h := range headers {
		f, ok := bySynonym[foldHeader(h)]
		if !ok {
			continue
		}
		if _, taken := byField[f]; taken {
			continue
		}
		byField[f] = i
	}
	for _, spec := range schema {
		if spec.required {
			if _, ok := byField[spec.field]; !ok {
				return nil, &MissingColumnError{Column: spec.name}
			}
		}
	}
	return byField, nil
}

// parseDecimal reads a number that may use a decimal comma ("1,5").
func parseDecimal(v string) (decimal.Decimal, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	return decimal.NewFromString(v)
}

func cell(row []string, idx int, ok bool) string {
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRows converts a header row plus data rows into LineItems, keeping
// row order. Fully blank rows are skipped; a missing part number or a
// non-positive quantity is a RowError.
func parseRows(headers []string, rows [][]string) ([]LineItem, error) {
	byField, err := resolveHeader(headers)
	if err != nil {
		return nil, err
	}

	get := func(row []string, f field) string {
		idx, ok := byField[f]
		return cell(row, idx, ok)
	}

	var items []LineItem
	for n, row := range rows {
		rowNum := n + 2

		blank := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		item := LineItem{
			PartNumber:  get(row, fieldPartNumber),
			Description: get(row, fieldDescription),
			Material:    get(row, fieldMaterial),
			Production:  get(row, fieldProduction),
		}
		if item.PartNumber == "" {
			return nil, &RowError{Row: rowNum, Column: "PartNumber", Reason: "part number is empty"}
		}

		qtyRaw := get(row, fieldQuantity)
		qty, err := parseDecimal(qtyRaw)
		if err != nil || !qty.IsPositive() {
			return nil, &RowError{
				Row: rowNum, Column: "Quantity", Value: qtyRaw,
				Reason: "quantity must be a positive number",
			}
		}
		item.Quantity = qty

		// Optional numeric columns are best effort: unparsable values stay
		// zero instead of failing the row.
		if v := get(row, fieldSurface); v != "" {
			if d, err := parseDecimal(v); err == nil {
				item.Surface = d
			}
		}
		if v := get(row, fieldWeight); v != "" {
			if d, err := parseDecimal(v); err == nil {
				item.Weight = d
			}
		}

		items = append(items, item)
	}
	return items, nil
}
