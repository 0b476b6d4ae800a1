package operation

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/scan"
)

const (
	presentMark = "✓"
	absentMark  = "✗"
)

// CheckRow is one BOM line's file coverage.
type CheckRow struct {
	Item    MatchResult
	Present map[string]bool // extension group label -> a matching file exists
}

// CheckReport is the outcome of a BOM coverage check: which lines have
// files, broken down per requested extension group.
type CheckReport struct {
	Groups []string // column labels, e.g. "pdf" or "step/stp"
	Rows   []CheckRow
}

// MissingParts lists BOM lines without any matching file.
func (r *CheckReport) MissingParts() []string {
	var parts []string
	for _, row := range r.Rows {
		if !row.Item.Matched() {
			parts = append(parts, row.Item.Item.PartNumber)
		}
	}
	return parts
}

// Check verifies that every BOM line has matching source files, without
// copying anything. With ReportPath set it also writes a per-extension
// coverage table.
func Check(ctx context.Context, opts Options) (*CheckReport, error) {
	logger := zerolog.Ctx(ctx)
	console := opts.console()

	if opts.Source == "" {
		return nil, errors.New("source directory is required")
	}

	items, err := loadItems(ctx, &opts)
	if err != nil {
		return nil, err
	}

	index, err := scan.Build(ctx, opts.Source, opts.Exts, opts.Ignore)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("files", index.Len()).
		Int("items", len(items)).
		Msg("indexed source directory")

	groups := extGroups(opts.Exts, opts.Aliases)
	report := &CheckReport{}
	for _, g := range groups {
		report.Groups = append(report.Groups, g.label)
	}

	for _, item := range items {
		row := CheckRow{
			Item:    MatchResult{Item: item},
			Present: map[string]bool{},
		}
		files := index.Match(item.PartNumber)
		for _, f := range files {
			row.Item.Files = append(row.Item.Files, f.Path)
			for _, g := range groups {
				for _, ext := range g.members {
					if f.Ext == ext {
						row.Present[g.label] = true
					}
				}
			}
		}
		if !row.Item.Matched() {
			console.Warningf("%s: no matching file", item.PartNumber)
		}
		report.Rows = append(report.Rows, row)
	}

	if missing := report.MissingParts(); len(missing) == 0 {
		console.Successf("all %d parts have files", len(report.Rows))
	} else {
		console.Warningf("%d of %d parts have no files", len(missing), len(report.Rows))
	}

	if opts.ReportPath != "" {
		if err := writeCheckReport(report, opts.ReportPath); err != nil {
			return report, err
		}
		console.Infof("coverage report written to %s", opts.ReportPath)
	}

	return report, nil
}

// extGroup is a column of the coverage table: one extension, or an alias
// group collapsed into one column.
type extGroup struct {
	label   string
	members []string
}

func extGroups(exts scan.ExtSet, aliases [][]string) []extGroup {
	used := map[string]bool{}
	var groups []extGroup

	for _, alias := range aliases {
		var members []string
		for _, ext := range alias {
			if exts.Has(ext) {
				members = append(members, ext)
				used[ext] = true
			}
		}
		if len(members) > 0 {
			groups = append(groups, extGroup{label: strings.Join(members, "/"), members: members})
		}
	}
	for _, ext := range exts.List() {
		if !used[ext] {
			groups = append(groups, extGroup{label: ext, members: []string{ext}})
		}
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].label < groups[j].label })
	return groups
}

func writeCheckReport(report *CheckReport, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return writeCheckXLSX(report, path)
	case ".csv":
		return writeCheckCSV(report, path)
	default:
		return errors.Errorf("unsupported report extension %q (want .xlsx or .csv)", ext)
	}
}

func checkHeaders(report *CheckReport) []string {
	headers := []string{"Part", "Description", "Production"}
	headers = append(headers, report.Groups...)
	return append(headers, "Files")
}

func checkCells(row CheckRow, groups []string) []string {
	cells := []string{row.Item.Item.PartNumber, row.Item.Item.Description, row.Item.Item.Production}
	for _, label := range groups {
		if row.Present[label] {
			cells = append(cells, presentMark)
		} else {
			cells = append(cells, absentMark)
		}
	}
	return append(cells, strconv.Itoa(len(row.Item.Files)))
}

func writeCheckXLSX(report *CheckReport, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Coverage"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return errors.Errorf("creating header style: %w", err)
	}

	headers := checkHeaders(report)
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, row := range report.Rows {
		for i, value := range checkCells(row, report.Groups) {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, rowIdx+2), value)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := 9.0
		switch i {
		case 0, 1:
			width = 26
		case 2:
			width = 16
		}
		f.SetColWidth(sheet, col, col, width)
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Errorf("writing coverage report: %w", err)
	}
	return nil
}

func writeCheckCSV(report *CheckReport, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("creating coverage report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(checkHeaders(report)); err != nil {
		return errors.Errorf("writing header: %w", err)
	}
	for _, row := range report.Rows {
		if err := w.Write(checkCells(row, report.Groups)); err != nil {
			return errors.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Errorf("flushing coverage report: %w", err)
	}
	return nil
}
