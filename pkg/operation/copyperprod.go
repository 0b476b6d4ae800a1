package operation

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/bom"
	"github.com/filehopper/hopper/pkg/document"
	"github.com/filehopper/hopper/pkg/document/render"
	"github.com/filehopper/hopper/pkg/log"
	"github.com/filehopper/hopper/pkg/party"
	"github.com/filehopper/hopper/pkg/scan"
)

// CopyPerProduction runs the full pipeline: read the BOM, index the
// source directory, then per production copy every matching file into
// destination/<production>/ and render that production's document there.
// Copy failures and per-production document failures are collected in the
// report; only run-level problems (unreadable BOM, missing source
// directory) abort early.
func CopyPerProduction(ctx context.Context, opts Options) (*Report, error) {
	logger := zerolog.Ctx(ctx)
	console := opts.console()

	if opts.Source == "" {
		return nil, errors.New("source directory is required")
	}
	if opts.Destination == "" {
		return nil, errors.New("destination directory is required")
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

	console.Header("copying files per production")

	report := &Report{}
	suppliersDirty := false

	for _, g := range groupByProduction(items) {
		destDir := filepath.Join(opts.Destination, g.folder)
		console.StartProduction(ctx, log.ProductionRun{
			Production:  g.folder,
			DocType:     string(opts.DocType),
			Destination: destDir,
		})

		result := copyProduction(ctx, &opts, index, g, destDir)
		if result.Err == nil {
			renderProduction(ctx, &opts, g, &result)
		}

		if result.Err != nil {
			opts.logDocument(log.DocumentEvent{
				Type:       log.DocumentFailed,
				Production: g.folder,
				Number:     result.Number,
				Error:      result.Err,
			})
		} else {
			opts.logDocument(log.DocumentEvent{
				Type:       log.DocumentRendered,
				Production: g.folder,
				Number:     result.Number,
				Path:       result.Artifacts.PDF,
			})
			if opts.RememberDefaults && opts.DocType != document.TypeQuote {
				if name, ok := g.override(opts.SupplierOverrides); ok {
					if err := opts.Suppliers.SetDefault(g.tag, name); err != nil {
						console.Warningf("remembering supplier for %s: %v", g.folder, err)
					} else {
						suppliersDirty = true
					}
				}
			}
		}

		console.EndProduction(ctx)
		report.Productions = append(report.Productions, result)
	}

	if suppliersDirty {
		if err := opts.Suppliers.Save(ctx); err != nil {
			return report, errors.Errorf("saving supplier defaults: %w", err)
		}
	}

	console.LogNewline()
	console.Successf("copied %d files across %d productions", report.CopiedFiles(), len(report.Productions))
	if n := report.CopyFailures(); n > 0 {
		console.Warningf("%d files failed to copy", n)
	}
	if parts := report.UnmatchedParts(); len(parts) > 0 {
		console.Warningf("%d parts without files: %s", len(parts), strings.Join(parts, ", "))
	}

	if failed := report.FailedProductions(); len(failed) > 0 {
		return report, errors.Errorf("documents failed for: %s", strings.Join(failed, ", "))
	}
	return report, nil
}

func loadItems(ctx context.Context, opts *Options) ([]bom.LineItem, error) {
	if len(opts.Items) > 0 {
		return opts.Items, nil
	}
	if opts.BOMPath == "" {
		return nil, errors.New("a BOM file or pasted lines are required")
	}
	return bom.Read(ctx, opts.BOMPath)
}

// copyProduction creates the production folder and copies every matching
// source file into it. A group without matches still gets its folder, so
// the destination layout mirrors the BOM even when nothing copied.
func copyProduction(ctx context.Context, opts *Options, index *scan.Index, g group, destDir string) ProductionResult {
	result := ProductionResult{Production: g.folder, Directory: destDir}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		result.Err = errors.Errorf("creating %s: %w", destDir, err)
		return result
	}

	copyMatches(ctx, opts, index, g.items, destDir, &result)
	return result
}

// copyMatches copies every file matching each item into destDir,
// recording successes and failures on the result.
func copyMatches(ctx context.Context, opts *Options, index *scan.Index, items []bom.LineItem, destDir string, result *ProductionResult) {
	console := opts.console()

	for _, item := range items {
		m := MatchResult{Item: item}
		for _, f := range index.Match(item.PartNumber) {
			m.Files = append(m.Files, f.Path)

			dst, err := scan.CopyFile(ctx, f.Path, destDir)
			if err != nil {
				result.Failures = append(result.Failures, CopyFailure{
					Source: f.Path,
					Part:   item.PartNumber,
					Err:    err,
				})
				console.LogFileCopy(ctx, log.FileCopy{
					Name:   f.Name,
					Part:   item.PartNumber,
					Dest:   destDir,
					Failed: true,
					Err:    err,
				})
				continue
			}

			m.Copied = append(m.Copied, dst)
			console.LogFileCopy(ctx, log.FileCopy{
				Name:   f.Name,
				Part:   item.PartNumber,
				Dest:   destDir,
				Copied: true,
			})
		}
		if !m.Matched() {
			console.Warningf("%s: no matching file", item.PartNumber)
		}
		result.Matches = append(result.Matches, m)
	}
}

// renderProduction resolves party, delivery, and number, then renders the
// production's document into its folder. The number sequence only
// advances after a successful render.
func renderProduction(ctx context.Context, opts *Options, g group, result *ProductionResult) {
	resolved, err := resolveParty(opts, g)
	if err != nil {
		result.Err = err
		return
	}

	delivery, err := resolveDelivery(opts, g)
	if err != nil {
		result.Err = err
		return
	}

	suffix, fromSequence := "", false
	if s, ok := g.override(opts.NumberOverrides); ok {
		suffix = s
	} else if opts.Sequence != nil {
		suffix = opts.Sequence.Peek(opts.DocType)
		fromSequence = true
	}

	doc, err := document.Build(document.Params{
		Type:          opts.DocType,
		Suffix:        suffix,
		QuotePrefix:   opts.QuotePrefix,
		Production:    g.folder,
		Company:       opts.Company,
		Party:         resolved,
		Delivery:      delivery,
		ProjectNumber: opts.ProjectNumber,
		ProjectName:   opts.ProjectName,
		Deadline:      opts.Deadline,
		Notes:         opts.Notes,
		FooterNote:    opts.FooterNote,
		Compliance:    opts.Compliance,
	}, documentLines(result.Matches))
	if err != nil {
		result.Err = err
		return
	}

	artifacts, err := render.Render(ctx, doc, result.Directory)
	if err != nil {
		result.Err = err
		return
	}
	result.Artifacts = artifacts
	result.Number = doc.Number

	if fromSequence {
		opts.Sequence.Take(opts.DocType)
		if err := opts.Sequence.Save(ctx); err != nil {
			result.Err = errors.Errorf("saving document numbers: %w", err)
		}
	}
}

// resolveParty picks the document's party: quotes take the client, the
// other types take the production's supplier override or stored default.
// A missing party is left nil for document.Build to report.
func resolveParty(opts *Options, g group) (*party.Party, error) {
	if opts.DocType == document.TypeQuote {
		if opts.ClientName == "" || opts.Clients == nil {
			return nil, nil
		}
		rec, ok := opts.Clients.Find(opts.ClientName)
		if !ok {
			return nil, errors.Errorf("client %q not found", opts.ClientName)
		}
		return &rec, nil
	}

	if opts.Suppliers == nil {
		return nil, nil
	}
	if name, ok := g.override(opts.SupplierOverrides); ok {
		rec, ok := opts.Suppliers.Find(name)
		if !ok {
			return nil, errors.Errorf("supplier %q not found", name)
		}
		return &rec, nil
	}
	if name, ok := opts.Suppliers.DefaultFor(g.tag); ok {
		rec, ok := opts.Suppliers.Find(name)
		if !ok {
			return nil, errors.Errorf("default supplier %q for %q not found", name, g.tag)
		}
		return &rec, nil
	}
	return nil, nil
}

// resolveDelivery turns a per-production delivery override into the text
// printed on the document. The pseudo values none, pickup, and tbd avoid
// storing one-off addresses.
func resolveDelivery(opts *Options, g group) (string, error) {
	raw, ok := g.override(opts.DeliveryOverrides)
	if !ok {
		return "", nil
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return "", nil
	case "pickup":
		return "Will be picked up", nil
	case "tbd":
		return "To be discussed", nil
	}

	if opts.Delivery == nil {
		return "", errors.Errorf("delivery address %q not found", raw)
	}
	rec, ok := opts.Delivery.Find(raw)
	if !ok {
		return "", errors.Errorf("delivery address %q not found", raw)
	}

	text := rec.Name
	if rec.Address != "" {
		text += ", " + rec.Address
	}
	if rec.Remarks != "" {
		text += " (" + rec.Remarks + ")"
	}
	return text, nil
}
