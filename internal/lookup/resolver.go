// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/nickng/bibtex"

	"github.com/pdiddy/pdf2bib/pkg/types"
)

// doiResolverBase is the DOI resolver. Declared as a var so tests can
// substitute an httptest server.
var doiResolverBase = "https://doi.org/"

// bareStart and bareChars are the first and following characters of an
// unquoted BibTeX value, as the parser's lexer reads them.
const (
	bareStart = `A-Za-z0-9äöüßéêçñÁÉÍÓÚáéíóúàèìòùâêîôûãõñÄÖÜ`
	bareChars = bareStart + `_:./+\-`
)

// barePattern matches an unquoted token in value position, after "=" or "#".
var barePattern = regexp.MustCompile(`[=#]\s*([` + bareStart + `][` + bareChars + `]*)`)

// stringDefs defines every bare value token in body as a string variable
// holding its own name, so "month = jan" reads "jan" and an unknown token
// such as "sept" is kept verbatim. The parser exits the process on an
// undefined variable, so every token must be defined before parsing.
func stringDefs(body []byte) string {
	var b strings.Builder
	seen := make(map[string]bool)
	for _, m := range barePattern.FindAllSubmatch(body, -1) {
		tok := string(m[1])
		if seen[tok] || bibKeyword(tok) {
			continue
		}
		seen[tok] = true
		if _, err := strconv.Atoi(tok); err == nil {
			continue
		}
		fmt.Fprintf(&b, "@string{%s = \"%s\"}\n", tok, tok)
	}
	return b.String()
}

// bibKeyword reports whether tok lexes as an @-command rather than a name.
func bibKeyword(tok string) bool {
	switch strings.ToLower(tok) {
	case "comment", "preamble", "string":
		return true
	}
	return false
}

// acceptBibTeX asks the resolver for a BibTeX rendering via content
// negotiation.
const acceptBibTeX = "application/x-bibtex; charset=utf-8"

// Resolver fetches BibTeX from the DOI resolver by content negotiation and
// parses it into a Citation.
type Resolver struct {
	client  *http.Client
	baseURL string
}

// NewResolver returns a Resolver. An empty baseURL uses https://doi.org/.
func NewResolver(client *http.Client, baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = doiResolverBase
	}
	return &Resolver{client: client, baseURL: baseURL}
}

// Fetch requests the BibTeX record for doi.
func (r *Resolver) Fetch(ctx context.Context, id string) (*types.Citation, error) {
	id, err := checkDOI(id)
	if err != nil {
		return nil, err
	}
	body, err := get(ctx, r.client, joinURL(r.baseURL, escapePath(id)), acceptBibTeX)
	if err != nil {
		return nil, err
	}
	return parseBibTeX(body, id)
}

// parseBibTeX converts the first entry of a BibTeX document to a Citation.
func parseBibTeX(body []byte, doi string) (rec *types.Citation, err error) {
	if !bytes.Contains(body, []byte("@")) {
		return nil, fmt.Errorf("%w: response is not BibTeX", ErrMalformed)
	}

	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()

	src := io.MultiReader(strings.NewReader(stringDefs(body)), bytes.NewReader(body))
	bib, err := bibtex.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(bib.Entries) == 0 {
		return nil, fmt.Errorf("%w: no BibTeX entry in response", ErrMalformed)
	}

	entry := bib.Entries[0]
	rec = &types.Citation{
		Type:      strings.ToLower(strings.TrimSpace(entry.Type)),
		SourceKey: strings.TrimSpace(entry.CiteName),
		DOI:       doi,
	}
	for name, value := range entry.Fields {
		if value == nil {
			continue
		}
		if v := collapseSpace(bibValue(value)); v != "" {
			rec.SetField(strings.ToLower(name), v)
		}
	}
	if len(rec.Fields) == 0 {
		return nil, fmt.Errorf("%w: BibTeX entry has no fields", ErrMalformed)
	}
	if rec.Field("doi") == "" {
		rec.SetField("doi", doi)
	}
	return rec, nil
}

// bibValue renders a parsed field value. Bare variables without a
// definition are kept by name.
func bibValue(s bibtex.BibString) string {
	if v, ok := s.(*bibtex.BibVar); ok && v.Value == nil {
		return v.Key
	}
	return s.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
