package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Size is the number of service categories the temple offers.
const Size = 19

var (
	ErrUnknownCategory = errors.New("unknown service category")
	ErrInvalidCatalog  = errors.New("invalid service catalog")
)

// Category identifies a service in the catalog (1..Size).
type Category int

// Entry is one priced service.
type Entry struct {
	ID          Category        `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	version string
	byID    map[Category]Entry
	ordered []Entry
}

// New validates entries and builds a Catalog. Every id in 1..Size must be
// present exactly once with a positive price and a unique name.
func New(version string, entries []Entry) (*Catalog, error) {
	byID := make(map[Category]Entry, len(entries))
	names := make(map[string]Category, len(entries))

	for _, entry := range entries {
		entry.Name = strings.ToUpper(strings.TrimSpace(entry.Name))
		if entry.ID < 1 || entry.ID > Size {
			return nil, fmt.Errorf("%w: category id %d out of range", ErrInvalidCatalog, entry.ID)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: category %d has no name", ErrInvalidCatalog, entry.ID)
		}
		if !entry.BasePrice.IsPositive() {
			return nil, fmt.Errorf("%w: category %s has non-positive price %s", ErrInvalidCatalog, entry.Name, entry.BasePrice)
		}
		if _, dup := byID[entry.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %d", ErrInvalidCatalog, entry.ID)
		}
		if other, dup := names[entry.Name]; dup {
			return nil, fmt.Errorf("%w: name %s used by categories %d and %d", ErrInvalidCatalog, entry.Name, other, entry.ID)
		}
		if strings.TrimSpace(entry.DisplayName) == "" {
			entry.DisplayName = DisplayName(entry.Name)
		}
		byID[entry.ID] = entry
		names[entry.Name] = entry.ID
	}

	for id := Category(1); id <= Size; id++ {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: category id %d missing", ErrInvalidCatalog, id)
		}
	}

	ordered := make([]Entry, 0, len(byID))
	for _, entry := range byID {
		ordered = append(ordered, entry)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	return &Catalog{version: version, byID: byID, ordered: ordered}, nil
}

func (c *Catalog) Version() string {
	return c.version
}

// Lookup returns the entry for id or ErrUnknownCategory.
func (c *Catalog) Lookup(id Category) (Entry, error) {
	entry, ok := c.byID[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownCategory, id)
	}
	return entry, nil
}

// LookupName resolves a catalog enum name such as ABHISHEKAM.
func (c *Catalog) LookupName(name string) (Entry, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, entry := range c.ordered {
		if entry.Name == name {
			return entry, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Entries returns a copy of all entries ordered by id.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// DisplayName turns an enum name into its printed label:
// VISHNUSAHASRANAMAM_WITH_POST becomes "Vishnusahasranamam With Post".
// A Caser keeps state between calls, so each call gets its own.
func DisplayName(name string) string {
	words := strings.ReplaceAll(strings.TrimSpace(name), "_", " ")
	return cases.Title(language.Und).String(strings.ToLower(words))
}
