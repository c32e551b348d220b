package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rafabd1/PIIHound/core/filetree"
	"github.com/rafabd1/PIIHound/core/inventory"
	"github.com/rafabd1/PIIHound/core/match"
	"github.com/rafabd1/PIIHound/utils"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", utils.NewError(utils.ConfigError, fmt.Sprintf("unknown report format %q", s), nil)
	}
}

// Summary carries per-kind file counts from the batch scans.
type Summary struct {
	DataFilesScanned int `json:"data_files_scanned"`
	DataFilesFlagged int `json:"data_files_flagged"`
	DataFilesFailed  int `json:"data_files_failed"`
	CodeFilesScanned int `json:"code_files_scanned"`
	CodeFilesFlagged int `json:"code_files_flagged"`
	CodeFilesFailed  int `json:"code_files_failed"`
	DocFilesScanned  int `json:"doc_files_scanned"`
	DocFilesFlagged  int `json:"doc_files_flagged"`
	DocFilesFailed   int `json:"doc_files_failed"`
}

type Report struct {
	Root           string               `json:"root"`
	GeneratedAt    time.Time            `json:"generated_at"`
	Strict         bool                 `json:"strict"`
	CatalogVersion string               `json:"catalog_version"`
	CustomTerms    []string             `json:"custom_terms"`
	Tree           *filetree.Tree       `json:"-"`
	Inventory      *inventory.Inventory `json:"inventory,omitempty"`
	DataMatches    []match.PIIMatch     `json:"data_matches"`
	CodeMatches    []match.PIIMatch     `json:"code_matches"`
	DocMatches     []match.PIIMatch     `json:"doc_matches"`
	Summary        Summary              `json:"summary"`
}

func (r *Report) TotalMatches() int {
	return len(r.DataMatches) + len(r.CodeMatches) + len(r.DocMatches)
}

func Render(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, r)
	default:
		return RenderMarkdown(w, r)
	}
}

func RenderJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return nil
}

/*
Renders the report as markdown: a summary, one table per flagged data
file, one table per flagged code or documentation file, and the file
inventory
*/
func RenderMarkdown(w io.Writer, r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# PII Scan Report\n\n")
	fmt.Fprintf(&b, "- **Package:** `%s`\n", r.Root)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "- **Generated:** %s\n", r.GeneratedAt.Format(time.RFC3339))
	}
	mode := "substring"
	if r.Strict {
		mode = "strict (whole words and underscore tokens)"
	}
	fmt.Fprintf(&b, "- **Matching:** %s\n", mode)
	fmt.Fprintf(&b, "- **Term catalog:** v%s", r.CatalogVersion)
	if len(r.CustomTerms) > 0 {
		fmt.Fprintf(&b, " + custom: %s", strings.Join(r.CustomTerms, ", "))
	}
	b.WriteString("\n\n")

	b.WriteString("## Summary\n\n")
	summary := [][]string{
		{"Data files", fmt.Sprint(r.Summary.DataFilesScanned), fmt.Sprint(r.Summary.DataFilesFlagged), fmt.Sprint(r.Summary.DataFilesFailed), fmt.Sprint(len(r.DataMatches))},
		{"Code files", fmt.Sprint(r.Summary.CodeFilesScanned), fmt.Sprint(r.Summary.CodeFilesFlagged), fmt.Sprint(r.Summary.CodeFilesFailed), fmt.Sprint(len(r.CodeMatches))},
		{"Documentation", fmt.Sprint(r.Summary.DocFilesScanned), fmt.Sprint(r.Summary.DocFilesFlagged), fmt.Sprint(r.Summary.DocFilesFailed), fmt.Sprint(len(r.DocMatches))},
	}
	writeTable(&b, []string{"Kind", "Scanned", "Flagged", "Unreadable", "Matches"}, summary)
	b.WriteString("\n")

	all := make([]match.PIIMatch, 0, r.TotalMatches())
	all = append(append(append(all, r.DataMatches...), r.CodeMatches...), r.DocMatches...)
	if counts := match.TermCounts(all); len(counts) > 0 {
		b.WriteString("### Terms\n\n")
		writeTable(&b, []string{"Term", "Matches"}, termRows(counts))
		b.WriteString("\n")
	}

	b.WriteString("## Data Files\n\n")
	if len(r.DataMatches) == 0 {
		b.WriteString("No PII terms found in data variables.\n\n")
	}
	for _, group := range match.GroupByFile(r.DataMatches) {
		fmt.Fprintf(&b, "### `%s`\n\n", group.FilePath)
		rows := make([][]string, 0, len(group.Matches))
		for _, m := range group.Matches {
			rows = append(rows, []string{
				cell(m.Identifier),
				cell(m.LabelText()),
				cell(strings.Join(m.MatchedTerms, ", ")),
				cell(strings.Join(m.SampleValues, "; ")),
			})
		}
		writeTable(&b, []string{"Variable", "Label", "Matched Terms", "Sample Values"}, rows)
		b.WriteString("\n")
	}

	b.WriteString("## Code Files\n\n")
	if len(r.CodeMatches) == 0 {
		b.WriteString("No PII terms found in code.\n\n")
	}
	writeLineMatches(&b, r.CodeMatches)

	b.WriteString("## Documentation\n\n")
	if len(r.DocMatches) == 0 {
		b.WriteString("No PII terms found in README or documentation text.\n\n")
	}
	writeLineMatches(&b, r.DocMatches)

	if r.Tree != nil {
		b.WriteString("## Package Contents\n\n")
		fmt.Fprintf(&b, "- Code files: %d\n- Data files: %d\n- Documentation files: %d\n- Other files: %d\n",
			len(r.Tree.Code), len(r.Tree.Data), len(r.Tree.Docs), len(r.Tree.Other))
		if r.Inventory != nil {
			fmt.Fprintf(&b, "- Total size: %d bytes\n", r.Inventory.TotalSize())
		}
		if len(r.Tree.Skipped) > 0 {
			fmt.Fprintf(&b, "- Skipped: %d\n", len(r.Tree.Skipped))
		}
		b.WriteString("\n")
	}

	if r.Inventory != nil && len(r.Inventory.Duplicates) > 0 {
		b.WriteString("### Duplicate Files\n\n")
		for _, group := range r.Inventory.Duplicates {
			quoted := make([]string, len(group))
			for i, p := range group {
				quoted[i] = "`" + p + "`"
			}
			fmt.Fprintf(&b, "- %s\n", strings.Join(quoted, ", "))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeLineMatches renders one table per file of line-identified matches.
func writeLineMatches(b *strings.Builder, matches []match.PIIMatch) {
	for _, group := range match.GroupByFile(matches) {
		fmt.Fprintf(b, "### `%s`\n\n", group.FilePath)
		rows := make([][]string, 0, len(group.Matches))
		for _, m := range group.Matches {
			excerpt := ""
			if len(m.SampleValues) > 0 {
				excerpt = "`" + strings.ReplaceAll(m.SampleValues[0], "`", "'") + "`"
			}
			rows = append(rows, []string{
				cell(m.Identifier),
				cell(strings.Join(m.MatchedTerms, ", ")),
				cell(excerpt),
			})
		}
		writeTable(b, []string{"Location", "Matched Terms", "Excerpt"}, rows)
		b.WriteString("\n")
	}
}

func writeTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(rows)
	table.Render()
}

func termRows(counts map[string]int) [][]string {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	rows := make([][]string, len(terms))
	for i, t := range terms {
		rows[i] = []string{t, fmt.Sprint(counts[t])}
	}
	return rows
}

func cell(s string) string {
	return utils.EscapeMarkdownCell(s)
}
