// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdf2bib/pkg/types"
)

func sampleRecord() *types.Citation {
	return &types.Citation{
		Type: "Article",
		DOI:  "10.1000/xyz123",
		Fields: map[string]string{
			"url":       "http://dx.doi.org/10.1000/xyz123",
			"year":      "2020",
			"title":     "A Study of Tests",
			"file":      "papers/smith.pdf",
			"doi":       "10.1000/xyz123",
			"author":    "Smith, John and Doe, Jane",
			"journal":   "Journal of Tests",
			"zzcustom":  "last",
			"acustom":   "after canonical",
			"publisher": "ACME Press",
		},
	}
}

func TestFormat_CanonicalOrder(t *testing.T) {
	got := Format(sampleRecord(), "smith2020", nil)
	want := `@article{smith2020,
  author = {Smith, John and Doe, Jane},
  title = {A Study of Tests},
  journal = {Journal of Tests},
  year = {2020},
  publisher = {ACME Press},
  doi = {10.1000/xyz123},
  url = {http://dx.doi.org/10.1000/xyz123},
  file = {papers/smith.pdf},
  acustom = {after canonical},
  zzcustom = {last},
}`
	assert.Equal(t, want, got)
}

func TestFormat_Deterministic(t *testing.T) {
	first := Format(sampleRecord(), "k", nil)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Format(sampleRecord(), "k", nil))
	}
}

func TestFormat_EmptyExclusionKeepsEveryField(t *testing.T) {
	rec := sampleRecord()
	got := Format(rec, "k", FieldSet{})
	for name, value := range rec.Fields {
		assert.Contains(t, got, name+" = {"+value+"}")
	}
}

func TestFormat_FullExclusionLeavesTypeAndKey(t *testing.T) {
	rec := sampleRecord()
	all := FieldSet{}
	for name := range rec.Fields {
		all[name] = struct{}{}
	}
	assert.Equal(t, "@article{smith2020,\n}", Format(rec, "smith2020", all))
}

func TestFormat_ExcludeFileAndURL(t *testing.T) {
	exclude, err := ParseFieldList("file,url")
	require.NoError(t, err)

	got := Format(sampleRecord(), "k", exclude)
	assert.NotContains(t, got, "file")
	assert.NotContains(t, got, "url")
	assert.Contains(t, got, "title = {A Study of Tests}")
}

func TestFormat_ExcludingAbsentFieldIsHarmless(t *testing.T) {
	got := Format(sampleRecord(), "k", NewFieldSet("abstract", "NOTE"))
	assert.Equal(t, Format(sampleRecord(), "k", nil), got)
}

func TestFormat_ExclusionIgnoresCase(t *testing.T) {
	got := Format(sampleRecord(), "k", NewFieldSet("URL", "File"))
	assert.NotContains(t, got, "url =")
	assert.NotContains(t, got, "file =")
}

func TestFormat_SkipsEmptyValuesAndDefaultsType(t *testing.T) {
	rec := &types.Citation{Fields: map[string]string{"title": "T", "note": "  "}}
	assert.Equal(t, "@misc{anon,\n  title = {T},\n}", Format(rec, "anon", nil))
}

func TestFormat_BalancesBraces(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"{DNA} repair", "{DNA} repair"},
		{"broken { title", "broken  title"},
		{"closing } first {x}", "closing  first {x}"},
		{"}{", ""},
		{`\textbackslash{} ok`, `\textbackslash{} ok`},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			rec := &types.Citation{Type: "misc", Fields: map[string]string{"title": tt.value}}
			got := Format(rec, "k", nil)
			if tt.want == "" {
				assert.Equal(t, "@misc{k,\n}", got)
				return
			}
			assert.Equal(t, "@misc{k,\n  title = {"+tt.want+"},\n}", got)
			assert.Equal(t, strings.Count(got, "{"), strings.Count(got, "}"))
		})
	}
}

func TestCiteKey(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{"last first form", map[string]string{"author": "Smith, John and Doe, Jane", "year": "2020"}, "smith2020"},
		{"first last form", map[string]string{"author": "John Smith and Jane Doe", "year": "2020"}, "smith2020"},
		{"multi-word surname", map[string]string{"author": "van der Berg, Jan", "year": "1999"}, "vanderberg1999"},
		{"hyphenated surname", map[string]string{"author": "Jean Lévy-Strauss", "year": "1958"}, "lévystrauss1958"},
		{"latex accent", map[string]string{"author": `M{\"u}ller, Hans`, "year": "2001"}, "muller2001"},
		{"organization", map[string]string{"author": "{The Test Consortium}", "year": "2019"}, "thetestconsortium2019"},
		{"falls back to editor", map[string]string{"editor": "Knuth, Donald", "year": "1984"}, "knuth1984"},
		{"no author", map[string]string{"year": "2020"}, "anon2020"},
		{"no year", map[string]string{"author": "Smith, John"}, "smith"},
		{"nothing", map[string]string{}, "anon"},
		{"surname named Anderson", map[string]string{"author": "Anderson, Ann and Bob Brown", "year": "2000"}, "anderson2000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CiteKey(&types.Citation{Fields: tt.fields})
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, " ")
		})
	}
}

func TestKeyring_Unique(t *testing.T) {
	k := NewKeyring()
	assert.Equal(t, "smith2020", k.Unique("smith2020"))
	assert.Equal(t, "smith2020a", k.Unique("smith2020"))
	assert.Equal(t, "smith2020b", k.Unique("smith2020"))
	assert.Equal(t, "doe2021", k.Unique("doe2021"))
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "a", suffix(1))
	assert.Equal(t, "z", suffix(26))
	assert.Equal(t, "aa", suffix(27))
	assert.Equal(t, "ab", suffix(28))
}

func TestParseFieldList(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"", []string{}, false},
		{"file,url", []string{"file", "url"}, false},
		{" File , URL ", []string{"file", "url"}, false},
		{"abstract", []string{"abstract"}, false},
		{"file,,url", nil, true},
		{"file,", nil, true},
		{"file;url", nil, true},
		{"file url", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFieldList(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFieldList)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Names())
		})
	}
}
