// Package scan locates production files in a source directory and copies
// them into destination folders. Scanning is non-recursive and extension
// filtered; matching compares lower-cased file stems against part numbers.
package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultAliases are the extension groups where either spelling selects
// both members.
var DefaultAliases = [][]string{
	{"step", "stp"},
	{"igs", "iges"},
}

// ExtSet is a set of allowed file extensions, stored lower-case without
// leading dots.
type ExtSet map[string]bool

// ParseExts builds an ExtSet from comma, semicolon, or space separated
// tokens ("pdf,dxf", ".PDF; .DXF"). Alias groups expand selections so that
// picking one member selects the whole group.
func ParseExts(raw string, aliases [][]string) (ExtSet, error) {
	set := ExtSet{}
	for _, token := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' '
	}) {
		ext := strings.ToLower(strings.TrimLeft(strings.TrimSpace(token), "."))
		if ext == "" {
			continue
		}
		for _, r := range ext {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return nil, errors.Errorf("invalid extension %q", token)
			}
		}
		set[ext] = true
	}
	if len(set) == 0 {
		return nil, errors.New("no file extensions given")
	}

	for _, group := range aliases {
		selected := false
		for _, ext := range group {
			if set[ext] {
				selected = true
				break
			}
		}
		if selected {
			for _, ext := range group {
				set[ext] = true
			}
		}
	}
	return set, nil
}

// Has reports whether ext (without dot, any case) is in the set.
func (s ExtSet) Has(ext string) bool {
	return s[strings.ToLower(strings.TrimLeft(ext, "."))]
}

// List returns the extensions in sorted order.
func (s ExtSet) List() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (s ExtSet) String() string {
	return strings.Join(s.List(), ",")
}

// File is one indexed source file.
type File struct {
	Path string // full path
	Name string // base name
	Ext  string // lower-case extension without dot
	stem string // lower-case name without extension
}

// Index holds the extension-filtered contents of one source directory,
// ready for part-number lookups.
type Index struct {
	files []File
}

// Build scans dir non-recursively, keeping regular entries whose extension
// is in exts and whose name matches no ignore glob.
func Build(ctx context.Context, dir string, exts ExtSet, ignore []string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading source directory: %w", err)
	}

	ix := &Index{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ignored(name, ignore) {
			continue
		}
		dotExt := filepath.Ext(name)
		ext := strings.ToLower(strings.TrimPrefix(dotExt, "."))
		if !exts[ext] {
			continue
		}
		ix.files = append(ix.files, File{
			Path: filepath.Join(dir, name),
			Name: name,
			Ext:  ext,
			stem: strings.ToLower(strings.TrimSuffix(name, dotExt)),
		})
	}

	zerolog.Ctx(ctx).Debug().
		Str("dir", dir).
		Str("exts", exts.String()).
		Int("files", len(ix.files)).
		Msg("indexed source directory")
	return ix, nil
}

func ignored(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Match returns every indexed file whose stem contains or equals part,
// ignoring case. An empty part number matches nothing.
func (ix *Index) Match(part string) []File {
	part = strings.ToLower(strings.TrimSpace(part))
	if part == "" {
		return nil
	}
	var out []File
	for _, f := range ix.files {
		if strings.Contains(f.stem, part) {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of indexed files.
func (ix *Index) Len() int {
	return len(ix.files)
}
