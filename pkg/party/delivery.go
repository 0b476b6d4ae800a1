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

// DeliveryAddress is a reusable delivery destination selectable per
// production when generating documents.
type DeliveryAddress struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Remarks  string `json:"remarks,omitempty"`
	Favorite bool   `json:"favorite,omitempty"`
}

// DeliveryStore persists delivery addresses in delivery_addresses.json
// under the data directory.
type DeliveryStore struct {
	path string
	file deliveryFile
}

type deliveryFile struct {
	Addresses []DeliveryAddress `json:"addresses"`
}

// NewDeliveryStore creates a store backed by delivery_addresses.json under
// dir.
func NewDeliveryStore(dir string) *DeliveryStore {
	return &DeliveryStore{path: filepath.Join(dir, "delivery_addresses.json")}
}

func (s *DeliveryStore) Load(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().Str("path", s.path).Msg("loading delivery addresses")

	s.file = deliveryFile{}
	if _, err := storage.ReadJSON(s.path, &s.file); err != nil {
		return errors.Errorf("loading delivery addresses: %w", err)
	}
	return nil
}

func (s *DeliveryStore) Save(ctx context.Context) error {
	zerolog.Ctx(ctx).Debug().
		Str("path", s.path).
		Int("count", len(s.file.Addresses)).
		Msg("saving delivery addresses")

	if err := storage.WriteJSON(s.path, s.file); err != nil {
		return errors.Errorf("saving delivery addresses: %w", err)
	}
	return nil
}

func (s *DeliveryStore) indexOf(name string) int {
	for i, addr := range s.file.Addresses {
		if strings.EqualFold(addr.Name, name) {
			return i
		}
	}
	return -1
}

// Add inserts a new delivery address. Fails with ErrDuplicate when the name
// is already taken.
func (s *DeliveryStore) Add(addr DeliveryAddress) error {
	addr.Name = strings.TrimSpace(addr.Name)
	if addr.Name == "" {
		return errors.New("name is required")
	}
	if s.indexOf(addr.Name) >= 0 {
		return errors.Errorf("%q: %w", addr.Name, ErrDuplicate)
	}
	s.file.Addresses = append(s.file.Addresses, addr)
	return nil
}

func (s *DeliveryStore) Remove(name string) bool {
	i := s.indexOf(name)
	if i < 0 {
		return false
	}
	s.file.Addresses = append(s.file.Addresses[:i], s.file.Addresses[i+1:]...)
	return true
}

func (s *DeliveryStore) Find(name string) (DeliveryAddress, bool) {
	if i := s.indexOf(name); i >= 0 {
		return s.file.Addresses[i], true
	}
	return DeliveryAddress{}, false
}

// List returns a copy of the addresses, favorites first, then by
// case-insensitive name.
func (s *DeliveryStore) List() []DeliveryAddress {
	out := make([]DeliveryAddress, len(s.file.Addresses))
	copy(out, s.file.Addresses)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (s *DeliveryStore) Len() int {
	return len(s.file.Addresses)
}
