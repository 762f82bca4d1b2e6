// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib renders citation records as BibTeX entries.
//
// Output is deterministic: fields appear in a fixed canonical order, keys
// are derived from the record rather than taken from the metadata source,
// and values are guaranteed to have balanced braces.
package bib

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/pdf2bib/pkg/types"
)

// canonicalOrder lists the fields that are written first, in this order.
// Any other field follows in alphabetical order.
var canonicalOrder = []string{
	"author", "editor", "title", "booktitle", "journal", "series", "edition",
	"volume", "number", "pages", "chapter", "year", "month", "publisher",
	"organization", "institution", "school", "address", "howpublished", "note",
	"issn", "isbn", "doi", "url", "abstract", "keywords", "file",
}

var canonicalRank = func() map[string]int {
	m := make(map[string]int, len(canonicalOrder))
	for i, f := range canonicalOrder {
		m[f] = i
	}
	return m
}()

// fallbackKey is used when a record has neither author nor year.
const fallbackKey = "anon"

// Format renders rec as a BibTeX entry with the given citation key,
// omitting every field in exclude and every empty field. The result has no
// trailing newline.
func Format(rec *types.Citation, key string, exclude FieldSet) string {
	entryType := strings.ToLower(strings.TrimSpace(rec.Type))
	if entryType == "" {
		entryType = "misc"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)
	for _, name := range orderedFields(rec.Fields) {
		if exclude.Has(name) {
			continue
		}
		value := strings.TrimSpace(balance(rec.Fields[name]))
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
	}
	b.WriteString("}")
	return b.String()
}

// orderedFields returns the field names of fields in canonical order.
func orderedFields(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := canonicalRank[names[i]]
		rj, jok := canonicalRank[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// balance drops unmatched braces from s. BibTeX counts braces literally,
// backslash or not, so an unmatched one would end the value early.
func balance(s string) string {
	runes := []rune(s)
	drop := make(map[int]bool)
	var open []int
	for i, r := range runes {
		switch r {
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				drop[i] = true
			} else {
				open = open[:len(open)-1]
			}
		}
	}
	for _, i := range open {
		drop[i] = true
	}
	if len(drop) == 0 {
		return s
	}
	var b strings.Builder
	for i, r := range runes {
		if !drop[i] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CiteKey derives the citation key from the first author's surname and the
// year: lower-cased, with whitespace and punctuation removed.
func CiteKey(rec *types.Citation) string {
	surname := keyPart(FirstSurname(rec.Field("author")))
	if surname == "" {
		surname = keyPart(FirstSurname(rec.Field("editor")))
	}
	if surname == "" {
		surname = fallbackKey
	}
	return surname + keyPart(rec.Field("year"))
}

// FirstSurname returns the family name of the first person in a BibTeX name
// list ("Last, First and ..." or "First Last and ...").
func FirstSurname(authors string) string {
	first := splitNames(authors)
	if first == "" {
		return ""
	}
	if i := strings.Index(first, ","); i >= 0 {
		return strings.TrimSpace(first[:i])
	}
	if strings.HasPrefix(first, "{") && strings.HasSuffix(first, "}") {
		return first
	}
	words := strings.Fields(first)
	return words[len(words)-1]
}

// splitNames returns the first name in a list joined by " and ".
func splitNames(list string) string {
	fields := strings.Fields(list)
	var first []string
	for _, w := range fields {
		if strings.EqualFold(w, "and") && len(first) > 0 {
			break
		}
		first = append(first, w)
	}
	return strings.Join(first, " ")
}

// keyPart keeps only letters and digits, lower-cased. Accent commands
// such as \"o collapse to their base letter.
func keyPart(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' && i+1 < len(runes) && !unicode.IsLetter(runes[i+1]) {
			i++
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Keyring hands out unique citation keys within one run.
type Keyring struct {
	used map[string]bool
}

// NewKeyring returns an empty Keyring.
func NewKeyring() *Keyring {
	return &Keyring{used: make(map[string]bool)}
}

// Unique returns key, or key with the first free suffix a, b, ... z, aa, ...
// when key was already handed out.
func (k *Keyring) Unique(key string) string {
	if !k.used[key] {
		k.used[key] = true
		return key
	}
	for n := 1; ; n++ {
		candidate := key + suffix(n)
		if !k.used[candidate] {
			k.used[candidate] = true
			return candidate
		}
	}
}

// suffix maps 1, 2, ... 26, 27 to a, b, ... z, aa.
func suffix(n int) string {
	var s []byte
	for n > 0 {
		n--
		s = append([]byte{byte('a' + n%26)}, s...)
		n /= 26
	}
	return string(s)
}
