package utils

import (
	"strings"
	"unicode/utf8"
)

// TruncateString cuts s to at most maxLength characters. Multi-byte runes are
// never split.
func TruncateString(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}

	count := 0
	for i := range s {
		if count == maxLength {
			return s[:i]
		}
		count++
	}
	return s
}

// SplitLines splits on LF and drops a trailing CR from each line. Unlike
// strings.Split it keeps empty lines so that line numbers stay aligned.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// EscapeMarkdownCell makes s safe to place inside a markdown table cell.
func EscapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
