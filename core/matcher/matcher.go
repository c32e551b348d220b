package matcher

import (
	"regexp"
	"strings"

	"github.com/rafabd1/PIIHound/core/terms"
)

// Mode selects how a term has to appear in a text to count as a match.
type Mode int

const (
	// Substring matches a term anywhere in the text, so "name" is found in
	// "filename".
	Substring Mode = iota
	// Strict matches a term only as a whole underscore-delimited token or
	// as a whole word.
	Strict
)

func ModeFor(strict bool) Mode {
	if strict {
		return Strict
	}
	return Substring
}

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "substring"
}

type compiledTerm struct {
	term     string
	boundary *regexp.Regexp
}

// Matcher checks texts against a fixed term list. It holds no mutable state
// and is safe for concurrent use.
type Matcher struct {
	mode  Mode
	terms []compiledTerm
}

/*
Creates a matcher for the given terms. Terms keep their order; duplicates
are dropped so a term is reported at most once per text.
*/
func New(termList []string, mode Mode) *Matcher {
	m := &Matcher{
		mode:  mode,
		terms: make([]compiledTerm, 0, len(termList)),
	}

	seen := make(map[string]bool, len(termList))
	for _, term := range termList {
		term = strings.ToLower(term)
		if seen[term] {
			continue
		}
		seen[term] = true

		ct := compiledTerm{term: term}
		if mode == Strict {
			ct.boundary = regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		}
		m.terms = append(m.terms, ct)
	}

	return m
}

// FromCatalog builds a matcher over every term of the catalog.
func FromCatalog(c *terms.Catalog, mode Mode) *Matcher {
	return New(c.Terms(), mode)
}

func (m *Matcher) Mode() Mode {
	return m.mode
}

// Find returns every term present in text, in term order. The result is nil
// when nothing matches.
func (m *Matcher) Find(text string) []string {
	return m.FindAny(text)
}

// FindAny returns every term present in at least one of texts. Each term
// appears once even if several texts contain it.
func (m *Matcher) FindAny(texts ...string) []string {
	var matched []string

	lowered := make([]string, 0, len(texts))
	var tokens [][]string
	for _, text := range texts {
		if text == "" {
			continue
		}
		low := strings.ToLower(text)
		lowered = append(lowered, low)
		if m.mode == Strict {
			tokens = append(tokens, strings.Split(low, "_"))
		}
	}
	if len(lowered) == 0 {
		return nil
	}

	for _, ct := range m.terms {
		for i, text := range lowered {
			if m.matches(ct, text, tokens, i) {
				matched = append(matched, ct.term)
				break
			}
		}
	}

	return matched
}

func (m *Matcher) matches(ct compiledTerm, lowered string, tokens [][]string, i int) bool {
	if m.mode != Strict {
		return strings.Contains(lowered, ct.term)
	}

	// exact compare on lowercased text; strict hits stay a subset of substring hits
	for _, token := range tokens[i] {
		if token == ct.term {
			return true
		}
	}
	return ct.boundary.MatchString(lowered)
}

// FindPIITerms reports which of termList occur in text. It compiles the
// terms on every call; scanners should build a Matcher once instead.
func FindPIITerms(text string, termList []string, strict bool) []string {
	return New(termList, ModeFor(strict)).Find(text)
}
