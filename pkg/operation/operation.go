// Package operation implements the tool's runs: copying source files per
// production with document generation, flat copies, and BOM coverage
// checks. Runs are strictly sequential; results are aggregated into a
// Report so partial failures never abort a whole run silently.
package operation

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/filehopper/hopper/pkg/bom"
	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/document/render"
	"github.com/filehopper/hopper/pkg/log"
	"github.com/filehopper/hopper/pkg/party"
	"github.com/filehopper/hopper/pkg/scan"
)

// unknownProduction is the folder used for BOM lines without a
// production tag.
const unknownProduction = "_Unknown"

// Options carries everything a run needs. Override maps are keyed by
// production tag; lookups fold the tag so "--supplier laser=ACME" hits a
// BOM tag spelled "Laser".
type Options struct {
	Source      string
	Destination string

	// BOMPath is read unless Items is already populated (pasted input).
	BOMPath string
	Items   []bom.LineItem

	Exts    scan.ExtSet
	Aliases [][]string
	Ignore  []string

	DocType     document.Type
	Company     document.Company
	QuotePrefix string
	FooterNote  string
	Compliance  document.ComplianceNote
	Notes       []string

	Suppliers *party.SupplierStore
	Clients   *party.ClientStore
	Delivery  *party.DeliveryStore
	Sequence  *document.Sequence

	SupplierOverrides map[string]string // production -> supplier name
	NumberOverrides   map[string]string // production -> number suffix
	DeliveryOverrides map[string]string // production -> address name or pseudo value
	ClientName        string

	ProjectNumber    string
	ProjectName      string
	Deadline         string
	RememberDefaults bool

	// ReportPath is where the bom check writes its coverage table,
	// .xlsx or .csv. Empty skips the file.
	ReportPath string

	Console *log.Logger
	User    *log.UserLogger
}

func (o *Options) console() *log.Logger {
	if o.Console != nil {
		return o.Console
	}
	return log.New(io.Discard, zerolog.Disabled)
}

func (o *Options) logDocument(event log.DocumentEvent) {
	if o.User != nil {
		o.User.LogDocument(event)
	}
}

// lookupOverride folds the production tag so override keys match
// regardless of spelling.
func lookupOverride(overrides map[string]string, tag string) (string, bool) {
	if len(overrides) == 0 {
		return "", false
	}
	want := document.NormalizeProduction(tag)
	for key, value := range overrides {
		if document.NormalizeProduction(key) == want {
			return value, true
		}
	}
	return "", false
}

// MatchResult records how one BOM line fared against the source index.
type MatchResult struct {
	Item   bom.LineItem
	Files  []string // matched source paths
	Copied []string // destination paths written
}

// Matched reports whether any source file matched the line.
func (m MatchResult) Matched() bool {
	return len(m.Files) > 0
}

// CopyFailure records a source file that could not be copied. Failures
// never abort the run; they are reported at the end.
type CopyFailure struct {
	Source string
	Part   string
	Err    error
}

// ProductionResult describes one production group's outcome.
type ProductionResult struct {
	Production string
	Directory  string
	Number     string
	Matches    []MatchResult
	Failures   []CopyFailure
	Artifacts  render.Artifacts
	Err        error // document build or render failure
}

// Rendered reports whether the production's document was written.
func (p *ProductionResult) Rendered() bool {
	return p.Err == nil && p.Artifacts.PDF != ""
}

// Report sums up a run across all productions.
type Report struct {
	Productions []ProductionResult
}

// CopiedFiles counts destination files written.
func (r *Report) CopiedFiles() int {
	n := 0
	for _, p := range r.Productions {
		for _, m := range p.Matches {
			n += len(m.Copied)
		}
	}
	return n
}

// CopyFailures counts files that could not be copied.
func (r *Report) CopyFailures() int {
	n := 0
	for _, p := range r.Productions {
		n += len(p.Failures)
	}
	return n
}

// UnmatchedParts lists BOM lines that matched no source file.
func (r *Report) UnmatchedParts() []string {
	var parts []string
	for _, p := range r.Productions {
		for _, m := range p.Matches {
			if !m.Matched() {
				parts = append(parts, m.Item.PartNumber)
			}
		}
	}
	return parts
}

// FailedProductions lists productions whose document could not be built
// or rendered.
func (r *Report) FailedProductions() []string {
	var failed []string
	for _, p := range r.Productions {
		if p.Err != nil {
			failed = append(failed, p.Production)
		}
	}
	return failed
}

// group is one production's slice of BOM lines, in BOM order.
type group struct {
	tag    string
	folder string
	items  []bom.LineItem
}

// override resolves a per-production override for this group, accepting
// either the raw BOM tag or the folder name as the key. That keeps
// "--supplier _Unknown=ACME" working for lines without a tag.
func (g group) override(overrides map[string]string) (string, bool) {
	if v, ok := lookupOverride(overrides, g.tag); ok {
		return v, true
	}
	if g.folder != g.tag {
		if v, ok := lookupOverride(overrides, g.folder); ok {
			return v, true
		}
	}
	return "", false
}

// groupByProduction splits items by production tag, keeping the order in
// which tags first appear in the BOM.
func groupByProduction(items []bom.LineItem) []group {
	var groups []group
	index := map[string]int{}
	for _, item := range items {
		tag := item.Production
		i, ok := index[tag]
		if !ok {
			folder := document.Sanitize(tag)
			if folder == "" {
				folder = unknownProduction
			}
			i = len(groups)
			index[tag] = i
			groups = append(groups, group{tag: tag, folder: folder})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

// documentLines turns match results into document lines, unmatched lines
// included.
func documentLines(matches []MatchResult) []document.Line {
	lines := make([]document.Line, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, document.Line{
			PartNumber:  m.Item.PartNumber,
			Description: m.Item.Description,
			Material:    m.Item.Material,
			Quantity:    m.Item.Quantity,
			Surface:     m.Item.Surface,
			Weight:      m.Item.Weight,
			Matched:     m.Matched(),
			Files:       len(m.Copied),
		})
	}
	return lines
}
