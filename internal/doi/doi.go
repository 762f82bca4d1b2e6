// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package doi finds Digital Object Identifiers in extracted PDF text.
//
// A DOI has the lexical form 10.<registrant>/<suffix>. Extraction follows a
// first-match policy: the earliest syntactically valid candidate in document
// order wins, and nothing is confirmed against a registry.
package doi

import (
	"regexp"
	"strings"
	"unicode"
)

// suffixChars is the set of characters accepted in a DOI suffix. Anything
// else, whitespace included, ends the candidate.
const suffixChars = `A-Za-z0-9\-._;()/:\[\]+`

// candidatePattern matches a DOI at a word boundary or directly after a
// "doi" label with no separator, as in "DOI10.1000/abc". The DOI itself is
// the first submatch.
var candidatePattern = regexp.MustCompile(`(?:\b|(?i:doi))(10\.\d+(?:\.\d+)*/[` + suffixChars + `]+)`)

// wholePattern validates a complete string as a DOI.
var wholePattern = regexp.MustCompile(`^10\.\d+(?:\.\d+)*/[` + suffixChars + `]+$`)

// labelPattern strips a leading DOI label from user-supplied identifiers.
var labelPattern = regexp.MustCompile(`(?i)^\s*(?:doi\s*:\s*|https?://(?:dx\.)?doi\.org/)`)

// Extract scans text in document order and returns the first valid DOI.
// The boolean is false when the text holds no DOI; that is not an error.
func Extract(text string) (string, bool) {
	for _, m := range candidatePattern.FindAllStringSubmatch(text, -1) {
		if doi := clean(m[1]); hasSuffix(doi) {
			return doi, true
		}
	}
	return "", false
}

// Valid reports whether s, after trimming a leading label and trailing
// punctuation, is a DOI and nothing else.
func Valid(s string) bool {
	s = Normalize(s)
	return wholePattern.MatchString(s) && hasSuffix(s)
}

// Normalize removes a "doi:" or resolver URL label and trailing
// punctuation. Case is preserved; DOIs compare case-insensitively.
func Normalize(s string) string {
	s = labelPattern.ReplaceAllString(s, "")
	return clean(strings.TrimSpace(s))
}

// clean trims sentence punctuation and unbalanced closing brackets from the
// end of a candidate until it is stable.
func clean(s string) string {
	for {
		trimmed := strings.TrimRight(s, ".,;:")
		if strings.HasSuffix(trimmed, ")") && unbalanced(trimmed, '(', ')') {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if strings.HasSuffix(trimmed, "]") && unbalanced(trimmed, '[', ']') {
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

// unbalanced reports whether s closes more brackets than it opens.
func unbalanced(s string, open, close rune) bool {
	return strings.Count(s, string(close)) > strings.Count(s, string(open))
}

// hasSuffix reports whether the part after the first slash carries at least
// one letter or digit.
func hasSuffix(doi string) bool {
	i := strings.IndexByte(doi, '/')
	if i < 0 {
		return false
	}
	return strings.IndexFunc(doi[i+1:], func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}
