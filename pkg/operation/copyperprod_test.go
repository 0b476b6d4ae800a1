package operation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/filehopper/hopper/pkg/bom"
	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/party"
	"github.com/filehopper/hopper/pkg/scan"
	"github.com/filehopper/hopper/pkg/testutils"
)

func testExts(t *testing.T, raw string, aliases [][]string) scan.ExtSet {
	t.Helper()
	exts, err := scan.ParseExts(raw, aliases)
	require.NoError(t, err, "parsing extensions should succeed")
	return exts
}

func writeBOMFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bom.csv")
	testutils.WriteFile(t, path, content)
	return path
}

// workbookText flattens the first sheet of an xlsx file for content
// assertions.
func workbookText(t *testing.T, path string) string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	require.NoError(t, err, "opening workbook should succeed")
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err, "reading rows should succeed")

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "|"))
		b.WriteString("\n")
	}
	return b.String()
}

func TestCopyPerProduction(t *testing.T) {
	t.Run("end_to_end_order_run", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA_rev2.pdf"), "drawing A rev 2")
		testutils.WriteFile(t, filepath.Join(src, "partX.pdf"), "drawing X")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,3,G1\npartB,1,G2\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME Metals"}), "adding supplier should succeed")
		require.NoError(t, suppliers.SetDefault("G1", "ACME Metals"), "setting default should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:            src,
			Destination:       dest,
			BOMPath:           bomPath,
			Exts:              testExts(t, "pdf", nil),
			DocType:           document.TypeOrder,
			Company:           document.Company{Name: "Hopper BV"},
			Suppliers:         suppliers,
			SupplierOverrides: map[string]string{"G2": "ACME Metals"},
			Sequence:          seq,
		})
		require.NoError(t, err, "run should succeed")

		assert.FileExists(t, filepath.Join(dest, "G1", "partA_rev2.pdf"),
			"matched file must land in its production folder")
		assert.NoFileExists(t, filepath.Join(dest, "G1", "partX.pdf"),
			"files matching no BOM line are never copied")
		assert.NoFileExists(t, filepath.Join(dest, "G2", "partX.pdf"),
			"files matching no BOM line are never copied")
		info, err := os.Stat(filepath.Join(dest, "G2"))
		require.NoError(t, err, "production folder should exist even without matches")
		assert.True(t, info.IsDir(), "production folder should be a directory")

		require.Len(t, report.Productions, 2, "one result per production")
		assert.Equal(t, "G1", report.Productions[0].Production, "productions keep BOM order")
		assert.Equal(t, "G2", report.Productions[1].Production, "productions keep BOM order")
		require.Len(t, report.Productions[0].Matches, 1, "one match result per BOM line")
		require.Len(t, report.Productions[1].Matches, 1, "one match result per BOM line")
		assert.Len(t, report.Productions[0].Matches[0].Copied, 1, "partA copied once")
		assert.False(t, report.Productions[1].Matches[0].Matched(), "partB stays unmatched")
		assert.Equal(t, []string{"partB"}, report.UnmatchedParts(), "unmatched part should be reported, not dropped")
		assert.Equal(t, 1, report.CopiedFiles(), "one file copied")
		assert.Zero(t, report.CopyFailures(), "no copy failures expected")

		assert.Equal(t, "BB-1", report.Productions[0].Number, "first order number")
		assert.Equal(t, "BB-2", report.Productions[1].Number, "numbers advance per production")
		assert.FileExists(t, report.Productions[0].Artifacts.PDF, "first document pdf should exist")
		assert.FileExists(t, report.Productions[1].Artifacts.Excel, "second document workbook should exist")
		assert.Equal(t, filepath.Join(dest, "G2"), filepath.Dir(report.Productions[1].Artifacts.PDF),
			"document lands in its production folder")

		text := workbookText(t, report.Productions[1].Artifacts.Excel)
		assert.Contains(t, text, "partB", "unmatched line stays on the document")
		assert.Contains(t, text, "(no file)", "unmatched line carries the marker")
	})

	t.Run("copy_failure_is_non_fatal", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		require.NoError(t, os.Symlink("missing-target", filepath.Join(src, "partB.pdf")),
			"creating dangling symlink should succeed")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\npartB,1,G1\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")
		require.NoError(t, suppliers.SetDefault("G1", "ACME"), "setting default should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:      src,
			Destination: dest,
			BOMPath:     bomPath,
			Exts:        testExts(t, "pdf", nil),
			DocType:     document.TypeOrder,
			Suppliers:   suppliers,
			Sequence:    seq,
		})
		require.NoError(t, err, "copy failures must not fail the run")

		require.Len(t, report.Productions, 1, "single production expected")
		p := report.Productions[0]
		assert.Equal(t, 1, report.CopiedFiles(), "good file still copied")
		require.Len(t, p.Failures, 1, "failed copy should be recorded")
		assert.Equal(t, "partB", p.Failures[0].Part, "failure names the part")
		assert.FileExists(t, filepath.Join(dest, "G1", "partA.pdf"), "good file lands despite the failure")
		assert.True(t, p.Rendered(), "document still renders after a copy failure")
	})

	t.Run("missing_supplier_fails_only_that_production", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		testutils.WriteFile(t, filepath.Join(src, "partB.pdf"), "drawing B")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\npartB,1,G2\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")
		require.NoError(t, suppliers.SetDefault("G1", "ACME"), "setting default should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:      src,
			Destination: dest,
			BOMPath:     bomPath,
			Exts:        testExts(t, "pdf", nil),
			DocType:     document.TypeOrder,
			Suppliers:   suppliers,
			Sequence:    seq,
		})
		require.Error(t, err, "missing supplier should surface as a run error")
		assert.Contains(t, err.Error(), "G2", "error should name the failed production")

		assert.Equal(t, []string{"G2"}, report.FailedProductions(), "only G2 should fail")
		assert.True(t, report.Productions[0].Rendered(), "G1 document should render")
		assert.ErrorIs(t, report.Productions[1].Err, document.ErrMissingParty, "G2 should fail for the missing party")
		assert.FileExists(t, filepath.Join(dest, "G2", "partB.pdf"),
			"files are copied even when the document fails")

		fresh := document.NewSequence(data)
		require.NoError(t, fresh.Load(ctx), "reloading sequence should succeed")
		assert.Equal(t, "2", fresh.Peek(document.TypeOrder), "failed production must not burn a number")
	})

	t.Run("quote_uses_client_and_configured_prefix", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\n")

		clients := party.NewClientStore(data)
		require.NoError(t, clients.Load(ctx), "loading clients should succeed")
		require.NoError(t, clients.Add(party.Party{Name: "ClientCo"}), "adding client should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:      src,
			Destination: dest,
			BOMPath:     bomPath,
			Exts:        testExts(t, "pdf", nil),
			DocType:     document.TypeQuote,
			QuotePrefix: "Q-",
			Clients:     clients,
			ClientName:  "ClientCo",
			Sequence:    seq,
		})
		require.NoError(t, err, "quote run should succeed")

		require.Len(t, report.Productions, 1, "single production expected")
		assert.Equal(t, "Q-1", report.Productions[0].Number, "quote number should use the configured prefix")

		text := workbookText(t, report.Productions[0].Artifacts.Excel)
		assert.Contains(t, text, "Client|ClientCo", "quote should name the client")
	})

	t.Run("deadline_rejected_for_orders", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")
		require.NoError(t, suppliers.SetDefault("G1", "ACME"), "setting default should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:      src,
			Destination: dest,
			BOMPath:     bomPath,
			Exts:        testExts(t, "pdf", nil),
			DocType:     document.TypeOrder,
			Deadline:    "end of week 12",
			Suppliers:   suppliers,
			Sequence:    seq,
		})
		require.Error(t, err, "a deadline on an order must fail")
		require.Len(t, report.FailedProductions(), 1, "the production should be reported as failed")
		assert.Contains(t, report.Productions[0].Err.Error(), "reply deadline", "failure should explain the deadline rule")
	})

	t.Run("number_override_skips_sequence", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:            src,
			Destination:       dest,
			BOMPath:           bomPath,
			Exts:              testExts(t, "pdf", nil),
			DocType:           document.TypeOrder,
			Suppliers:         suppliers,
			SupplierOverrides: map[string]string{"G1": "ACME"},
			NumberOverrides:   map[string]string{"G1": "77"},
			Sequence:          seq,
		})
		require.NoError(t, err, "run should succeed")
		assert.Equal(t, "BB-77", report.Productions[0].Number, "override suffix should be used")

		fresh := document.NewSequence(data)
		require.NoError(t, fresh.Load(ctx), "reloading sequence should succeed")
		assert.Equal(t, "1", fresh.Peek(document.TypeOrder), "sequence must not advance for overridden numbers")
	})

	t.Run("pasted_items_replace_the_bom_file", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")
		require.NoError(t, suppliers.SetDefault("G1", "ACME"), "setting default should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:      src,
			Destination: dest,
			Items: []bom.LineItem{
				{PartNumber: "partA", Quantity: decimal.NewFromInt(2), Production: "G1"},
			},
			Exts:      testExts(t, "pdf", nil),
			DocType:   document.TypeOrder,
			Suppliers: suppliers,
			Sequence:  seq,
		})
		require.NoError(t, err, "run should succeed with pre-parsed items")
		assert.Equal(t, 1, report.CopiedFiles(), "pasted line should match and copy")
	})

	t.Run("remember_defaults_persists_override", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,Laser\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")
		require.NoError(t, suppliers.Save(ctx), "saving suppliers should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		_, err := CopyPerProduction(ctx, Options{
			Source:            src,
			Destination:       dest,
			BOMPath:           bomPath,
			Exts:              testExts(t, "pdf", nil),
			DocType:           document.TypeOrder,
			Suppliers:         suppliers,
			SupplierOverrides: map[string]string{"laser": "ACME"},
			RememberDefaults:  true,
			Sequence:          seq,
		})
		require.NoError(t, err, "run should succeed")

		fresh := party.NewSupplierStore(data)
		require.NoError(t, fresh.Load(ctx), "reloading suppliers should succeed")
		name, ok := fresh.DefaultFor("Laser")
		require.True(t, ok, "default should be remembered for the production")
		assert.Equal(t, "ACME", name, "remembered default should name the override supplier")
	})

	t.Run("untagged_lines_fall_into_unknown_folder", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src, data := t.TempDir(), t.TempDir()
		dest := filepath.Join(t.TempDir(), "out")
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,\n")

		suppliers := party.NewSupplierStore(data)
		require.NoError(t, suppliers.Load(ctx), "loading suppliers should succeed")
		require.NoError(t, suppliers.Add(party.Party{Name: "ACME"}), "adding supplier should succeed")

		seq := document.NewSequence(data)
		require.NoError(t, seq.Load(ctx), "loading sequence should succeed")

		report, err := CopyPerProduction(ctx, Options{
			Source:            src,
			Destination:       dest,
			BOMPath:           bomPath,
			Exts:              testExts(t, "pdf", nil),
			DocType:           document.TypeOrder,
			Suppliers:         suppliers,
			SupplierOverrides: map[string]string{"_Unknown": "ACME"},
			Sequence:          seq,
		})
		require.NoError(t, err, "run should succeed")
		assert.FileExists(t, filepath.Join(dest, "_Unknown", "partA.pdf"),
			"untagged lines copy into the fallback folder")
		assert.True(t, report.Productions[0].Rendered(), "override keyed by folder name should resolve")
	})

	t.Run("missing_source_directory_fails", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\n")

		_, err := CopyPerProduction(ctx, Options{
			Source:      filepath.Join(t.TempDir(), "nope"),
			Destination: t.TempDir(),
			BOMPath:     bomPath,
			Exts:        testExts(t, "pdf", nil),
			DocType:     document.TypeOrder,
		})
		require.Error(t, err, "missing source directory should fail the run")
		assert.Contains(t, err.Error(), "source directory", "error should name the problem")
	})
}
