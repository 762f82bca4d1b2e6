// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrFieldList is returned for a malformed exclusion list.
var ErrFieldList = errors.New("invalid field list")

var fieldNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FieldSet is a set of lower-cased BibTeX field names.
type FieldSet map[string]struct{}

// NewFieldSet builds a set from names, lower-casing each.
func NewFieldSet(names ...string) FieldSet {
	s := make(FieldSet, len(names))
	for _, n := range names {
		s[strings.ToLower(n)] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set, ignoring case.
func (s FieldSet) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]
	return ok
}

// Names returns the members in sorted order.
func (s FieldSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseFieldList parses a comma-separated list such as "file, URL".
// An empty string is the empty set. Empty elements and names with
// characters outside [A-Za-z0-9_-] are rejected.
func ParseFieldList(list string) (FieldSet, error) {
	set := FieldSet{}
	if strings.TrimSpace(list) == "" {
		return set, nil
	}
	for i, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			return nil, fmt.Errorf("%w %q: empty name at position %d", ErrFieldList, list, i+1)
		}
		if !fieldNamePattern.MatchString(name) {
			return nil, fmt.Errorf("%w %q: bad field name %q", ErrFieldList, list, part)
		}
		set[name] = struct{}{}
	}
	return set, nil
}
