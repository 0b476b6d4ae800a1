package operation

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/scan"
)

// FlatCopy copies every matching file for every BOM line straight into
// the destination directory. No production folders, no documents; the
// quick way to hand a complete file set to someone.
func FlatCopy(ctx context.Context, opts Options) (*Report, error) {
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

	console.Header("copying matched files")

	if err := os.MkdirAll(opts.Destination, 0o755); err != nil {
		return nil, errors.Errorf("creating %s: %w", opts.Destination, err)
	}

	result := ProductionResult{Production: "all", Directory: opts.Destination}
	copyMatches(ctx, &opts, index, items, opts.Destination, &result)
	report := &Report{Productions: []ProductionResult{result}}

	console.LogNewline()
	console.Successf("copied %d files", report.CopiedFiles())
	if n := report.CopyFailures(); n > 0 {
		console.Warningf("%d files failed to copy", n)
	}
	if parts := report.UnmatchedParts(); len(parts) > 0 {
		console.Warningf("%d parts without files: %s", len(parts), strings.Join(parts, ", "))
	}

	return report, nil
}
