package party

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/storage"
)

// SupplierStore persists supplier records plus the per-production default
// supplier map in suppliers.json under the data directory.
type SupplierStore struct {
	path string
	coll collection
	file supplierFile
}

type supplierFile struct {
	Suppliers            []Party           `json:"suppliers"`
	DefaultsByProduction map[string]string `json:"defaults_by_production,omitempty"`
}

// NewSupplierStore creates a store backed by suppliers.json under dir. Call
// Load before reading and Save after mutating.
func NewSupplierStore(dir string) *SupplierStore {
	return &SupplierStore{path: filepath.Join(dir, "suppliers.json")}
}

func (s *SupplierStore) Load(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("loading suppliers")

	s.file = supplierFile{}
	if _, err := storage.ReadJSON(s.path, &s.file); err != nil {
		return errors.Errorf("loading suppliers: %w", err)
	}
	s.coll = collection{records: s.file.Suppliers}
	return nil
}

func (s *SupplierStore) Save(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().
		Str("path", s.path).
		Int("count", s.coll.len()).
		Msg("saving suppliers")

	s.file.Suppliers = s.coll.records
	if err := storage.WriteJSON(s.path, s.file); err != nil {
		return errors.Errorf("saving suppliers: %w", err)
	}
	return nil
}

// Add inserts a new supplier. Fails with ErrDuplicate when the name is
// already taken.
func (s *SupplierStore) Add(p Party) error {
	if err := s.coll.add(p); err != nil {
		return errors.Errorf("adding supplier: %w", err)
	}
	return nil
}

// Upsert inserts or merges by name and reports whether a record was created.
func (s *SupplierStore) Upsert(p Party) (created bool, err error) {
	created, err = s.coll.upsert(p)
	if err != nil {
		return false, errors.Errorf("upserting supplier: %w", err)
	}
	return created, nil
}

// Remove deletes the supplier and any production defaults pointing at it.
func (s *SupplierStore) Remove(name string) bool {
	if !s.coll.remove(name) {
		return false
	}
	for prod, def := range s.file.DefaultsByProduction {
		if strings.EqualFold(def, name) {
			delete(s.file.DefaultsByProduction, prod)
		}
	}
	return true
}

func (s *SupplierStore) Find(name string) (Party, bool) { return s.coll.find(name) }
func (s *SupplierStore) Search(query string) []Party    { return s.coll.search(query) }
func (s *SupplierStore) List() []Party                  { return s.coll.list() }
func (s *SupplierStore) Len() int                       { return s.coll.len() }

// SetDefault records the default supplier for a production tag. The
// supplier must exist.
func (s *SupplierStore) SetDefault(production, supplier string) error {
	production = strings.TrimSpace(production)
	if production == "" {
		return errors.New("production is required")
	}
	rec, ok := s.Find(supplier)
	if !ok {
		return errors.Errorf("supplier %q not found", supplier)
	}
	if s.file.DefaultsByProduction == nil {
		s.file.DefaultsByProduction = map[string]string{}
	}
	s.file.DefaultsByProduction[defaultKey(production)] = rec.Name
	return nil
}

// DefaultFor returns the default supplier name for a production tag, if one
// is configured.
func (s *SupplierStore) DefaultFor(production string) (string, bool) {
	name, ok := s.file.DefaultsByProduction[defaultKey(production)]
	return name, ok
}

// ClearDefault removes the default for a production tag and reports whether
// one was set.
func (s *SupplierStore) ClearDefault(production string) bool {
	key := defaultKey(production)
	if _, ok := s.file.DefaultsByProduction[key]; !ok {
		return false
	}
	delete(s.file.DefaultsByProduction, key)
	return true
}

// Defaults returns the production → supplier map in sorted production
// order, as pairs.
func (s *SupplierStore) Defaults() [][2]string {
	keys := make([]string, 0, len(s.file.DefaultsByProduction))
	for k := range s.file.DefaultsByProduction {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, s.file.DefaultsByProduction[k]})
	}
	return out
}

// defaultKey folds a production tag for default lookups so "Laser" and
// "laser" share one entry.
func defaultKey(production string) string {
	return strings.ToLower(strings.TrimSpace(production))
}
