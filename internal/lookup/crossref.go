// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lookup

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pdiddy/pdf2bib/pkg/types"
)

// crossrefAPIBase is the CrossRef REST API root. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/"

// CrossRef fetches work records from the CrossRef REST API and maps them to
// BibTeX fields.
type CrossRef struct {
	client  *http.Client
	baseURL string
}

// NewCrossRef returns a CrossRef fetcher. An empty baseURL uses the public API.
func NewCrossRef(client *http.Client, baseURL string) *CrossRef {
	if baseURL == "" {
		baseURL = crossrefAPIBase
	}
	return &CrossRef{client: client, baseURL: baseURL}
}

// Fetch requests /works/<doi> and converts the message to a Citation.
func (c *CrossRef) Fetch(ctx context.Context, id string) (*types.Citation, error) {
	id, err := checkDOI(id)
	if err != nil {
		return nil, err
	}
	body, err := get(ctx, c.client, joinURL(c.baseURL, "works/"+escapePath(id)), "application/json")
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	msg := gjson.GetBytes(body, "message")
	if !msg.IsObject() {
		return nil, fmt.Errorf("%w: missing message object", ErrMalformed)
	}
	return crossrefCitation(msg, id), nil
}

// crossrefTypes maps CrossRef work types to BibTeX entry types.
var crossrefTypes = map[string]string{
	"journal-article":     "article",
	"proceedings-article": "inproceedings",
	"book-chapter":        "incollection",
	"book-section":        "incollection",
	"book-part":           "incollection",
	"book":                "book",
	"monograph":           "book",
	"edited-book":         "book",
	"reference-book":      "book",
	"dissertation":        "phdthesis",
	"report":              "techreport",
}

var months = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

func crossrefCitation(msg gjson.Result, doi string) *types.Citation {
	entryType, ok := crossrefTypes[msg.Get("type").String()]
	if !ok {
		entryType = "misc"
	}
	rec := &types.Citation{Type: entryType, DOI: doi}
	set := func(field, value string) {
		if value = cleanText(value); value != "" {
			rec.SetField(field, value)
		}
	}

	rec.SetField("author", people(msg.Get("author")))
	rec.SetField("editor", people(msg.Get("editor")))

	title := msg.Get("title.0").String()
	if sub := msg.Get("subtitle.0").String(); sub != "" && title != "" {
		title += ": " + sub
	}
	set("title", title)

	container := msg.Get("container-title.0").String()
	switch entryType {
	case "inproceedings", "incollection":
		set("booktitle", container)
	case "book":
		set("series", container)
	default:
		set("journal", container)
	}

	set("volume", msg.Get("volume").String())
	set("number", msg.Get("issue").String())
	set("pages", pageRange(msg.Get("page").String()))
	set("publisher", msg.Get("publisher").String())
	set("issn", msg.Get("ISSN.0").String())
	set("isbn", msg.Get("ISBN.0").String())
	rec.SetField("doi", firstNonEmpty(msg.Get("DOI").String(), doi))
	rec.SetField("url", msg.Get("URL").String())

	for _, path := range []string{"issued", "published-print", "published-online", "created"} {
		parts := msg.Get(path + ".date-parts.0").Array()
		if len(parts) == 0 || parts[0].Int() == 0 {
			continue
		}
		rec.SetField("year", strconv.FormatInt(parts[0].Int(), 10))
		if len(parts) > 1 && parts[1].Int() >= 1 && parts[1].Int() <= 12 {
			rec.SetField("month", months[parts[1].Int()-1])
		}
		break
	}

	for name, value := range rec.Fields {
		if value == "" {
			delete(rec.Fields, name)
		}
	}
	return rec
}

// people renders a CrossRef contributor list as "Family, Given and ...".
// Organizations without a family name are braced so BibTeX keeps them whole.
func people(list gjson.Result) string {
	var names []string
	list.ForEach(func(_, p gjson.Result) bool {
		family := cleanText(p.Get("family").String())
		given := cleanText(p.Get("given").String())
		switch {
		case family != "" && given != "":
			names = append(names, family+", "+given)
		case family != "":
			names = append(names, family)
		case p.Get("name").String() != "":
			names = append(names, "{"+cleanText(p.Get("name").String())+"}")
		}
		return true
	})
	return strings.Join(names, " and ")
}

// pageRange converts "12-19" to the BibTeX range "12--19".
func pageRange(p string) string {
	if strings.Contains(p, "--") {
		return p
	}
	return strings.Replace(p, "-", "--", 1)
}

var markupPattern = regexp.MustCompile(`<[^>]+>`)

// latexEscaper escapes characters that are special in BibTeX values.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// cleanText strips JATS/HTML markup, collapses whitespace, and escapes
// LaTeX specials.
func cleanText(s string) string {
	s = markupPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return latexEscaper.Replace(s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
