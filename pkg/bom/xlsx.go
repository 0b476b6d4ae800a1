package bom

import (
	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"
)

// readXLSX reads the first sheet of an xlsx workbook, first row as header.
func readXLSX(path string) ([]LineItem, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}
	return parseRows(rows[0], rows[1:])
}
