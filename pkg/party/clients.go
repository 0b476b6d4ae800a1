package party

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/filehopper/hopper/pkg/storage"
)

// ClientStore persists client records in clients.json under the data
// directory.
type ClientStore struct {
	path string
	coll collection
	file clientFile
}

type clientFile struct {
	Clients []Party `json:"clients"`
}

// NewClientStore creates a store backed by clients.json under dir.
func NewClientStore(dir string) *ClientStore {
	return &ClientStore{path: filepath.Join(dir, "clients.json")}
}

func (s *ClientStore) Load(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("loading clients")

	s.file = clientFile{}
	if _, err := storage.ReadJSON(s.path, &s.file); err != nil {
		return errors.Errorf("loading clients: %w", err)
	}
	s.coll = collection{records: s.file.Clients}
	return nil
}

func (s *ClientStore) Save(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().
		Str("path", s.path).
		Int("count", s.coll.len()).
		Msg("saving clients")

	s.file.Clients = s.coll.records
	if err := storage.WriteJSON(s.path, s.file); err != nil {
		return errors.Errorf("saving clients: %w", err)
	}
	return nil
}

// Add inserts a new client. Fails with ErrDuplicate when the name is
// already taken.
func (s *ClientStore) Add(p Party) error {
	if err := s.coll.add(p); err != nil {
		return errors.Errorf("adding client: %w", err)
	}
	return nil
}

// Upsert inserts or merges by name and reports whether a record was created.
func (s *ClientStore) Upsert(p Party) (created bool, err error) {
	created, err = s.coll.upsert(p)
	if err != nil {
		return false, errors.Errorf("upserting client: %w", err)
	}
	return created, nil
}

func (s *ClientStore) Remove(name string) bool      { return s.coll.remove(name) }
func (s *ClientStore) Find(name string) (Party, bool) { return s.coll.find(name) }
func (s *ClientStore) Search(query string) []Party  { return s.coll.search(query) }
func (s *ClientStore) List() []Party                { return s.coll.list() }
func (s *ClientStore) Len() int                     { return s.coll.len() }
