package document

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/storage"
)

// Sanitize makes a document number safe for use in file names. Characters
// outside [A-Za-z0-9._-] become underscores, so "BB-12/34" renders as a
// file stem "BB-12_34" while headers keep the original form.
func Sanitize(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

const sequenceFileName = "doc_numbers.json"

// Sequence hands out document number suffixes per document type. Counters
// start at 1 and persist in the data directory; callers Save only after
// the document rendered, so a failed run never burns a number.
type Sequence struct {
	path string
	file sequenceFile
}

type sequenceFile struct {
	Next map[string]int64 `json:"next"`
}

// NewSequence returns a sequence persisted under dir.
func NewSequence(dir string) *Sequence {
	return &Sequence{path: filepath.Join(dir, sequenceFileName)}
}

// Load reads the persisted counters. A missing file starts all counters
// at 1.
func (s *Sequence) Load(ctx context.Context) error {
	s.file = sequenceFile{}
	if _, err := storage.ReadJSON(s.path, &s.file); err != nil {
		return errors.Errorf("loading document numbers: %w", err)
	}
	if s.file.Next == nil {
		s.file.Next = map[string]int64{}
	}
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("loaded document number sequence")
	return nil
}

// Save writes the counters back to disk.
func (s *Sequence) Save(ctx context.Context) error {
	if err := storage.WriteJSON(s.path, s.file); err != nil {
		return errors.Errorf("saving document numbers: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("saved document number sequence")
	return nil
}

// Peek returns the suffix the next Take would hand out for the type.
func (s *Sequence) Peek(t Type) string {
	return strconv.FormatInt(s.next(t), 10)
}

// Take consumes and returns the next suffix for the type. The change is
// in memory only until Save is called.
func (s *Sequence) Take(t Type) string {
	n := s.next(t)
	if s.file.Next == nil {
		s.file.Next = map[string]int64{}
	}
	s.file.Next[string(t)] = n + 1
	return strconv.FormatInt(n, 10)
}

func (s *Sequence) next(t Type) int64 {
	if n, ok := s.file.Next[string(t)]; ok && n > 0 {
		return n
	}
	return 1
}
