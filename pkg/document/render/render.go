// Package render writes a built document to its on-disk artifacts: a PDF
// for sending and an xlsx companion the recipient can edit. Both carry the
// same lines, so unmatched parts stay visible in either form.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/party"
)

// Artifacts holds the paths of the files produced for one document.
type Artifacts struct {
	PDF   string
	Excel string
}

// FileStem returns the base name shared by a document's artifacts:
// sanitized number, sanitized production, and the document date.
func FileStem(doc *document.Document) string {
	return fmt.Sprintf("%s_%s_%s",
		document.Sanitize(doc.Number), document.Sanitize(doc.Production), doc.Date)
}

// Render writes both artifacts into dir, creating it if needed.
func Render(ctx context.Context, doc *document.Document, dir string) (Artifacts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, errors.Errorf("creating document directory: %w", err)
	}

	stem := FileStem(doc)
	out := Artifacts{
		PDF:   filepath.Join(dir, stem+".pdf"),
		Excel: filepath.Join(dir, stem+".xlsx"),
	}

	if err := writePDF(doc, out.PDF); err != nil {
		return Artifacts{}, errors.Errorf("rendering %s: %w", filepath.Base(out.PDF), err)
	}
	if err := writeExcel(doc, out.Excel); err != nil {
		return Artifacts{}, errors.Errorf("rendering %s: %w", filepath.Base(out.Excel), err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("pdf", out.PDF).
		Str("excel", out.Excel).
		Msg("rendered document artifacts")
	return out, nil
}

// unmatchedMarker flags BOM lines that matched no source file. It appears
// in both artifacts so nothing silently falls off a document.
const unmatchedMarker = "(no file)"

func lineDescription(line document.Line) string {
	desc := line.Description
	if !line.Matched {
		if desc == "" {
			return unmatchedMarker
		}
		return desc + " " + unmatchedMarker
	}
	return desc
}

func companyLines(c document.Company) []string {
	var out []string
	for _, s := range []string{c.AddressLine1, c.AddressLine2, c.VATNumber, c.Phone, c.Email} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func partyLines(p party.Party) []string {
	var out []string
	for _, s := range []string{p.Name, p.AddressLine1, p.AddressLine2, p.VATNumber, p.Phone, p.Email} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
