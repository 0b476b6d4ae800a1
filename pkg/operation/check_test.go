package operation

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/filehopper/hopper/pkg/testutils"
)

func TestCheck(t *testing.T) {
	aliases := [][]string{{"step", "stp"}}

	setup := func(t *testing.T) (ctx context.Context, src, bomPath string) {
		t.Helper()
		ctx = testutils.SetupTestLogger(t)
		src = t.TempDir()
		testutils.WriteFile(t, filepath.Join(src, "partA.step"), "model A")
		testutils.WriteFile(t, filepath.Join(src, "partB.pdf"), "drawing B")
		bomPath = writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\npartB,2,G1\n")
		return ctx, src, bomPath
	}

	t.Run("coverage_per_extension_group", func(t *testing.T) {
		ctx, src, bomPath := setup(t)

		report, err := Check(ctx, Options{
			Source:  src,
			BOMPath: bomPath,
			Exts:    testExts(t, "pdf,step", aliases),
			Aliases: aliases,
		})
		require.NoError(t, err, "check should succeed")

		assert.Equal(t, []string{"pdf", "step/stp"}, report.Groups, "alias group collapses into one column")
		require.Len(t, report.Rows, 2, "one row per BOM line")
		a, b := report.Rows[0], report.Rows[1]
		assert.True(t, a.Present["step/stp"], "partA step file counts for the group")
		assert.False(t, a.Present["pdf"], "partA has no pdf")
		assert.True(t, b.Present["pdf"], "partB has a pdf")
		assert.False(t, b.Present["step/stp"], "partB has no model file")
		assert.Empty(t, report.MissingParts(), "both parts have files")
	})

	t.Run("missing_part_is_listed", func(t *testing.T) {
		ctx := testutils.SetupTestLogger(t)
		src := t.TempDir()
		testutils.WriteFile(t, filepath.Join(src, "partA.pdf"), "drawing A")
		bomPath := writeBOMFile(t, "PartNumber,Quantity,Production\npartA,1,G1\npartC,1,G1\n")

		report, err := Check(ctx, Options{
			Source:  src,
			BOMPath: bomPath,
			Exts:    testExts(t, "pdf", nil),
		})
		require.NoError(t, err, "check should succeed")
		assert.Equal(t, []string{"partC"}, report.MissingParts(), "only the uncovered part is missing")
	})

	t.Run("csv_report", func(t *testing.T) {
		ctx, src, bomPath := setup(t)
		reportPath := filepath.Join(t.TempDir(), "coverage.csv")

		_, err := Check(ctx, Options{
			Source:     src,
			BOMPath:    bomPath,
			Exts:       testExts(t, "pdf,step", aliases),
			Aliases:    aliases,
			ReportPath: reportPath,
		})
		require.NoError(t, err, "check should succeed")

		f, err := os.Open(reportPath)
		require.NoError(t, err, "report file should exist")
		defer f.Close()
		rows, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err, "report should parse as CSV")

		require.Len(t, rows, 3, "header plus one row per part")
		assert.Equal(t, []string{"Part", "Description", "Production", "pdf", "step/stp", "Files"}, rows[0],
			"header names the extension groups")
		assert.Equal(t, []string{"partA", "", "G1", "✗", "✓", "1"}, rows[1], "partA coverage row")
		assert.Equal(t, []string{"partB", "", "G1", "✓", "✗", "1"}, rows[2], "partB coverage row")
	})

	t.Run("xlsx_report", func(t *testing.T) {
		ctx, src, bomPath := setup(t)
		reportPath := filepath.Join(t.TempDir(), "coverage.xlsx")

		_, err := Check(ctx, Options{
			Source:     src,
			BOMPath:    bomPath,
			Exts:       testExts(t, "pdf,step", aliases),
			Aliases:    aliases,
			ReportPath: reportPath,
		})
		require.NoError(t, err, "check should succeed")

		f, err := excelize.OpenFile(reportPath)
		require.NoError(t, err, "report workbook should open")
		defer f.Close()

		cell := func(ref string) string {
			v, err := f.GetCellValue("Coverage", ref)
			require.NoError(t, err, "reading cell %s should succeed", ref)
			return v
		}
		assert.Equal(t, "Part", cell("A1"), "header row")
		assert.Equal(t, "pdf", cell("D1"), "group column header")
		assert.Equal(t, "step/stp", cell("E1"), "group column header")
		assert.Equal(t, "partA", cell("A2"), "first part row")
		assert.Equal(t, "✗", cell("D2"), "partA has no pdf")
		assert.Equal(t, "✓", cell("E2"), "partA has a model file")
		assert.Equal(t, "1", cell("F2"), "file count")
	})

	t.Run("unsupported_report_extension_fails", func(t *testing.T) {
		ctx, src, bomPath := setup(t)

		_, err := Check(ctx, Options{
			Source:     src,
			BOMPath:    bomPath,
			Exts:       testExts(t, "pdf,step", aliases),
			Aliases:    aliases,
			ReportPath: filepath.Join(t.TempDir(), "coverage.txt"),
		})
		require.Error(t, err, "unknown report format should fail")
		assert.Contains(t, err.Error(), "unsupported report extension", "error should name the problem")
	})
}
