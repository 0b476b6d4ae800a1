// Package party manages the persisted supplier, client, and delivery
// address collections. Each collection lives in one JSON file under the
// data directory, is read fully into memory on Load, and written fully
// back on Save. There is no locking against concurrent modification.
package party

import (
	"regexp"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrDuplicate is returned when adding a record whose name is already
// taken within its collection.
var ErrDuplicate = errors.New("record already exists")

// Party is a supplier or client record. Records are unique by name within
// their collection; names are compared case-insensitively.
type Party struct {
	Name         string `json:"name"`
	VATNumber    string `json:"vat_number,omitempty"`
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	Favorite     bool   `json:"favorite,omitempty"`
}

// mergeFrom overwrites p's fields with the non-empty fields of in. Favorite
// can only be set this way, not cleared; clearing goes through an explicit
// edit.
func (p *Party) mergeFrom(in Party) {
	if in.VATNumber != "" {
		p.VATNumber = in.VATNumber
	}
	if in.AddressLine1 != "" {
		p.AddressLine1 = in.AddressLine1
	}
	if in.AddressLine2 != "" {
		p.AddressLine2 = in.AddressLine2
	}
	if in.Phone != "" {
		p.Phone = in.Phone
	}
	if in.Email != "" {
		p.Email = in.Email
	}
	if in.Favorite {
		p.Favorite = true
	}
}

var vatPattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{2,12}$`)

// NormalizeVAT uppercases a VAT number and strips spaces and dots, so
// "be 0123.456.789" and "BE0123456789" compare equal.
func NormalizeVAT(vat string) string {
	vat = strings.ToUpper(strings.TrimSpace(vat))
	return strings.NewReplacer(" ", "", ".", "").Replace(vat)
}

// ValidateVAT checks that a normalized VAT number looks plausible: a
// two-letter country code followed by 2 to 12 alphanumerics, at least one
// of which is a digit. Empty values pass, a record may have no VAT number.
func ValidateVAT(vat string) error {
	if vat == "" {
		return nil
	}
	if !vatPattern.MatchString(vat) {
		return errors.Errorf("vat number %q is not in a recognized format", vat)
	}
	if !strings.ContainsAny(vat, "0123456789") {
		return errors.Errorf("vat number %q contains no digits", vat)
	}
	return nil
}

// collection holds the in-memory records of one party collection and
// implements the shared record operations. Mutations touch memory only;
// persisting is the owning store's job.
type collection struct {
	records []Party
}

func (c *collection) indexOf(name string) int {
	for i, rec := range c.records {
		if strings.EqualFold(rec.Name, name) {
			return i
		}
	}
	return -1
}

// add inserts a new record. The name must be non-empty and free, and a
// non-empty VAT number must validate.
func (c *collection) add(p Party) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("name is required")
	}
	if c.indexOf(p.Name) >= 0 {
		return errors.Errorf("%q: %w", p.Name, ErrDuplicate)
	}
	p.VATNumber = NormalizeVAT(p.VATNumber)
	if err := ValidateVAT(p.VATNumber); err != nil {
		return err
	}
	c.records = append(c.records, p)
	return nil
}

// upsert inserts p, or merges its non-empty fields into the existing record
// with the same name. It reports whether a new record was created.
func (c *collection) upsert(p Party) (created bool, err error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return false, errors.New("name is required")
	}
	p.VATNumber = NormalizeVAT(p.VATNumber)
	if err := ValidateVAT(p.VATNumber); err != nil {
		return false, err
	}
	if i := c.indexOf(p.Name); i >= 0 {
		c.records[i].mergeFrom(p)
		return false, nil
	}
	c.records = append(c.records, p)
	return true, nil
}

func (c *collection) remove(name string) bool {
	i := c.indexOf(name)
	if i < 0 {
		return false
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	return true
}

func (c *collection) find(name string) (Party, bool) {
	if i := c.indexOf(name); i >= 0 {
		return c.records[i], true
	}
	return Party{}, false
}

// search returns the records whose name contains the query, ignoring case,
// in list order.
func (c *collection) search(query string) []Party {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []Party
	for _, rec := range c.list() {
		if strings.Contains(strings.ToLower(rec.Name), query) {
			out = append(out, rec)
		}
	}
	return out
}

// list returns a copy of the records, favorites first, then by
// case-insensitive name.
func (c *collection) list() []Party {
	out := make([]Party, len(c.records))
	copy(out, c.records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Favorite != out[j].Favorite {
			return out[i].Favorite
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func (c *collection) len() int {
	return len(c.records)
}
