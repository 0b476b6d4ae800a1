package bom

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filehopper/hopper/pkg/testutils"
)

func writeBOM(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testutils.WriteFile(t, path, content)
	return path
}

func TestRead(t *testing.T) {
	ctx := testutils.SetupTestLogger(t)

	t.Run("comma_delimited", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", strings.Join([]string{
			"PartNumber,Description,Material,Production,Quantity",
			"PN-001,Bracket,S235JR,Laser,3",
			"PN-002,Cover plate,S355J2,Milling,1",
		}, "\n"))

		items, err := Read(ctx, path)
		require.NoError(t, err, "reading bom")
		require.Len(t, items, 2)

		assert.Equal(t, "PN-001", items[0].PartNumber)
		assert.Equal(t, "Bracket", items[0].Description)
		assert.Equal(t, "S235JR", items[0].Material)
		assert.Equal(t, "Laser", items[0].Production)
		assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(3)), "quantity should parse")
		assert.Equal(t, "PN-002", items[1].PartNumber, "row order should be preserved")
	})

	t.Run("semicolon_delimiter_is_sniffed", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", strings.Join([]string{
			"PartNumber;Aantal;Productie",
			"PN-001;2;Laser",
		}, "\n"))

		items, err := Read(ctx, path)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Laser", items[0].Production, "dutch synonyms should resolve")
	})

	t.Run("tab_and_pipe_delimiters", func(t *testing.T) {
		tabPath := writeBOM(t, "bom.txt", "PartNumber\tQty\tGroup\nPN-9\t4\tWeld\n")
		items, err := Read(ctx, tabPath)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Weld", items[0].Production)

		pipePath := writeBOM(t, "bom.txt", "PartNumber|Qty|Group\nPN-9|4|Weld\n")
		items, err = Read(ctx, pipePath)
		require.NoError(t, err)
		require.Len(t, items, 1)
	})

	t.Run("decimal_comma_quantity", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", strings.Join([]string{
			"PartNumber;Quantity;Production;Gewicht",
			`PN-001;1,5;Laser;12,75`,
		}, "\n"))

		items, err := Read(ctx, path)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].Quantity.Equal(decimal.RequireFromString("1.5")))
		assert.True(t, items[0].Weight.Equal(decimal.RequireFromString("12.75")))
	})

	t.Run("utf8_bom_prefix_is_stripped", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", "\xEF\xBB\xBFPartNumber,Quantity,Production\nPN-1,1,Laser\n")

		items, err := Read(ctx, path)
		require.NoError(t, err, "the byte order mark should not break the header")
		require.Len(t, items, 1)
	})

	t.Run("windows_1252_fallback", func(t *testing.T) {
		// "Plaat é" with a latin-1 encoded é (0xE9), invalid as UTF-8.
		path := writeBOM(t, "bom.csv",
			"PartNumber,Description,Quantity,Production\nPN-1,Plaat \xe9,1,Laser\n")

		items, err := Read(ctx, path)
		require.NoError(t, err, "non-utf8 input should fall back to windows-1252")
		require.Len(t, items, 1)
		assert.Equal(t, "Plaat é", items[0].Description)
	})

	t.Run("blank_rows_are_skipped", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", strings.Join([]string{
			"PartNumber,Quantity,Production",
			"PN-1,1,Laser",
			",,",
			"",
			"PN-2,2,Milling",
		}, "\n"))

		items, err := Read(ctx, path)
		require.NoError(t, err)
		assert.Len(t, items, 2, "blank rows should not become line items")
	})

	t.Run("missing_required_column", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", "PartNumber,Production\nPN-1,Laser\n")

		_, err := Read(ctx, path)
		require.Error(t, err)

		var missing *MissingColumnError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "Quantity", missing.Column)
	})

	t.Run("malformed_quantity_names_the_row", func(t *testing.T) {
		tests := []struct {
			name string
			qty  string
		}{
			{name: "non_numeric", qty: "many"},
			{name: "zero", qty: "0"},
			{name: "negative", qty: "-2"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := writeBOM(t, "bom.csv", strings.Join([]string{
					"PartNumber,Quantity,Production",
					"PN-1,1,Laser",
					"PN-2," + tt.qty + ",Laser",
				}, "\n"))

				_, err := Read(ctx, path)
				require.Error(t, err)

				var rowErr *RowError
				require.ErrorAs(t, err, &rowErr)
				assert.Equal(t, 3, rowErr.Row, "error should name the failing row")
				assert.Equal(t, "Quantity", rowErr.Column)
			})
		}
	})

	t.Run("empty_part_number_fails", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", "PartNumber,Quantity,Production\n,3,Laser\n")

		_, err := Read(ctx, path)
		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, "PartNumber", rowErr.Column)
	})

	t.Run("unparsable_optional_column_is_ignored", func(t *testing.T) {
		path := writeBOM(t, "bom.csv", strings.Join([]string{
			"PartNumber,Quantity,Production,Oppervlakte",
			"PN-1,1,Laser,n/a",
		}, "\n"))

		items, err := Read(ctx, path)
		require.NoError(t, err, "optional columns should not fail the row")
		assert.True(t, items[0].Surface.IsZero())
	})
}

func TestReadTSV(t *testing.T) {
	ctx := testutils.SetupTestLogger(t)

	t.Run("pasted_rows", func(t *testing.T) {
		input := "PartNumber\tQuantity\tProduction\nPN-1\t2\tLaser\nPN-2\t1\tWeld\n"
		items, err := ReadTSV(ctx, strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "PN-2", items[1].PartNumber)
	})

	t.Run("empty_input_fails", func(t *testing.T) {
		_, err := ReadTSV(ctx, strings.NewReader(""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no pasted rows")
	})
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		header string
		want   rune
	}{
		{header: "a,b,c", want: ','},
		{header: "a;b;c", want: ';'},
		{header: "a\tb\tc", want: '\t'},
		{header: "a|b|c", want: '|'},
		{header: "one,two;three;four", want: ';'},
		{header: "nodelimiters", want: ','},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(sniffDelimiter(tt.header)), "header %q", tt.header)
	}
}
