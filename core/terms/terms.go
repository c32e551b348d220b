package terms

import (
	"fmt"
	"strings"

	"github.com/rafabd1/PIIHound/utils"
)

// CatalogVersion identifies the default term list. Bump it whenever
// DefaultTerms changes so downstream reports can tell lists apart.
const CatalogVersion = "1"

// DefaultTerms is the built-in PII category list. Reports produced by other
// tools depend on this exact list.
var DefaultTerms = []string{
	"address", "bday", "beneficiary", "birth", "birthday", "block",
	"census", "child", "city", "community", "compound", "coord",
	"country", "daughter", "degree", "district", "dob", "email",
	"father", "fax", "first_name", "fname", "gender", "gps",
	"house", "husband", "last_name", "lat", "lname", "loc",
	"location", "lon", "minute", "mother", "municipality", "name",
	"network", "panchayat", "parish", "phone", "precinct", "school",
	"second", "sex", "social", "spouse", "son", "street",
	"subcountry", "territory", "url", "village", "wife", "zip",
}

// Catalog is an ordered, de-duplicated list of lowercase terms. It is never
// modified after construction.
type Catalog struct {
	terms  []string
	custom []string
	index  map[string]int
}

/*
Builds a catalog from the default list extended with custom terms.
Custom terms are trimmed and lowercased; blank ones are rejected because
an empty term would match every text in substring mode.
*/
func NewCatalog(custom ...string) (*Catalog, error) {
	c := &Catalog{
		terms: make([]string, 0, len(DefaultTerms)+len(custom)),
		index: make(map[string]int, len(DefaultTerms)+len(custom)),
	}

	for _, term := range DefaultTerms {
		c.add(term)
	}

	for i, term := range custom {
		normalized := Normalize(term)
		if normalized == "" {
			return nil, utils.NewError(utils.ConfigError,
				fmt.Sprintf("custom term #%d (%q)", i+1, term), utils.ErrEmptyTerm)
		}
		if c.add(normalized) {
			c.custom = append(c.custom, normalized)
		}
	}

	return c, nil
}

// MustCatalog is NewCatalog for callers with known-good custom terms.
func MustCatalog(custom ...string) *Catalog {
	c, err := NewCatalog(custom...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) add(term string) bool {
	if _, exists := c.index[term]; exists {
		return false
	}
	c.index[term] = len(c.terms)
	c.terms = append(c.terms, term)
	return true
}

// Terms returns a copy of all terms in catalog order.
func (c *Catalog) Terms() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// Custom returns the caller-supplied terms that were not already defaults.
func (c *Catalog) Custom() []string {
	out := make([]string, len(c.custom))
	copy(out, c.custom)
	return out
}

func (c *Catalog) Len() int {
	return len(c.terms)
}

func (c *Catalog) Contains(term string) bool {
	_, ok := c.index[Normalize(term)]
	return ok
}

// Position returns the catalog index of term, or -1.
func (c *Catalog) Position(term string) int {
	if i, ok := c.index[Normalize(term)]; ok {
		return i
	}
	return -1
}

func (c *Catalog) IsDefault(term string) bool {
	i := c.Position(term)
	return i >= 0 && i < len(DefaultTerms)
}

func Normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
