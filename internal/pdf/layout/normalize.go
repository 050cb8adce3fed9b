package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// quoteMarks are stripped from both ends of option text
const quoteMarks = "\"'“”‘’"

// NormalizeText composes the text to NFC, collapses whitespace runs into
// single spaces and strips surrounding quote marks.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, quoteMarks)
	return strings.TrimSpace(s)
}
