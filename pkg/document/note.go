package document

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ComplianceNote is a standing note printed on documents for matching
// productions. Productions holds the names the note applies to; an empty
// list applies the note to every production.
type ComplianceNote struct {
	Text        string
	Productions []string
}

// TextFor returns the note text when it applies to the production, and ""
// otherwise. Production names are compared loosely so "Tube-Laser" and
// "tube laser" select the same note.
func (n ComplianceNote) TextFor(production string) string {
	if n.Text == "" {
		return ""
	}
	if len(n.Productions) == 0 {
		return n.Text
	}
	want := NormalizeProduction(production)
	if want == "" {
		return ""
	}
	for _, p := range n.Productions {
		if NormalizeProduction(p) == want {
			return n.Text
		}
	}
	return ""
}

var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeProduction folds a production name for comparison: diacritics
// are stripped, letters lowered, and runs of anything that is not a letter
// or digit collapse into a single space.
func NormalizeProduction(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}
