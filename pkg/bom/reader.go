package bom

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Read loads a BOM file, choosing the reader by extension: .xlsx goes
// through the spreadsheet reader, everything else is treated as delimited
// text.
func Read(ctx context.Context, path string) ([]LineItem, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("reading bom")

	var items []LineItem
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		items, err = readXLSX(path)
	} else {
		items, err = readDelimited(path)
	}
	if err != nil {
		return nil, errors.Errorf("reading bom %s: %w", filepath.Base(path), err)
	}

	logger.Debug().Int("items", len(items)).Msg("bom parsed")
	return items, nil
}

// ReadTSV parses pasted tab-separated rows (header first) from r. This is
// the entry point for rows pasted out of a spreadsheet instead of loaded
// from a file.
func ReadTSV(ctx context.Context, r io.Reader) ([]LineItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading pasted rows: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Errorf("parsing pasted rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("no pasted rows")
	}

	items, err := parseRows(rows[0], rows[1:])
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Int("items", len(items)).Msg("pasted rows parsed")
	return items, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText turns raw file bytes into a UTF-8 string: a UTF-8 BOM is
// stripped, valid UTF-8 passes through, and anything else is decoded as
// Windows-1252 (the usual encoding of legacy ERP and CAD exports).
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", errors.Errorf("decoding as windows-1252: %w", err)
	}
	return string(decoded), nil
}

// sniffDelimiter picks the delimiter that splits the header line into the
// most fields, among comma, semicolon, tab, and pipe. Ties go to the
// earlier candidate.
func sniffDelimiter(header string) rune {
	best := ','
	bestCount := strings.Count(header, ",")
	for _, cand := range []rune{';', '\t', '|'} {
		if n := strings.Count(header, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

func readDelimited(path string) ([]LineItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	firstLine := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		firstLine = text[:i]
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(firstLine)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Errorf("parsing delimited text: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}
	return parseRows(rows[0], rows[1:])
}
