package match

import (
	"fmt"
	"strings"
)

// Kind tells which scanner produced a match.
type Kind string

const (
	KindData Kind = "data"
	KindCode Kind = "code"
	KindDocs Kind = "docs"
)

// PIIMatch is one flagged variable or one flagged code line. It is built by
// the detector and treated as read-only afterwards.
type PIIMatch struct {
	Kind         Kind     `json:"kind"`
	FilePath     string   `json:"filepath"`
	Identifier   string   `json:"identifier"`
	Label        *string  `json:"label"`
	MatchedTerms []string `json:"matched_terms"`
	SampleValues []string `json:"sample_values"`
}

/*
Creates a match record. Returns false when matchedTerms is empty, since a
record without terms is never emitted.
*/
func New(kind Kind, filePath, identifier string, label *string, matchedTerms, sampleValues []string) (PIIMatch, bool) {
	terms := dedupe(matchedTerms)
	if len(terms) == 0 {
		return PIIMatch{}, false
	}

	samples := make([]string, len(sampleValues))
	copy(samples, sampleValues)

	var labelCopy *string
	if label != nil {
		l := *label
		labelCopy = &l
	}

	return PIIMatch{
		Kind:         kind,
		FilePath:     filePath,
		Identifier:   identifier,
		Label:        labelCopy,
		MatchedTerms: terms,
		SampleValues: samples,
	}, true
}

func LineIdentifier(lineNumber int) string {
	return fmt.Sprintf("Line %d", lineNumber)
}

func (m PIIMatch) LabelText() string {
	if m.Label == nil {
		return ""
	}
	return *m.Label
}

func (m PIIMatch) String() string {
	return fmt.Sprintf("[%s] %s in %s (%s)", m.Kind, m.Identifier, m.FilePath, strings.Join(m.MatchedTerms, ", "))
}

// FileGroup holds the matches of one file in their original order.
type FileGroup struct {
	FilePath string
	Matches  []PIIMatch
}

// GroupByFile groups matches per file, keeping files in first-seen order.
func GroupByFile(matches []PIIMatch) []FileGroup {
	var groups []FileGroup
	index := make(map[string]int)

	for _, m := range matches {
		i, ok := index[m.FilePath]
		if !ok {
			i = len(groups)
			index[m.FilePath] = i
			groups = append(groups, FileGroup{FilePath: m.FilePath})
		}
		groups[i].Matches = append(groups[i].Matches, m)
	}

	return groups
}

// TermCounts counts how many records carry each term.
func TermCounts(matches []PIIMatch) map[string]int {
	counts := make(map[string]int)
	for _, m := range matches {
		for _, t := range m.MatchedTerms {
			counts[t]++
		}
	}
	return counts
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
