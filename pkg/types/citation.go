// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pdf2bib pipeline.
package types

// Citation is the bibliographic record for one DOI, keyed by BibTeX field
// name. It is built per lookup and discarded after formatting.
type Citation struct {
	// Type is the BibTeX entry type (e.g. "article", "inproceedings").
	Type string `json:"type" yaml:"type"`

	// SourceKey is the citation key proposed by the metadata source, if any.
	// Output keys are always derived locally; this is kept for diagnostics.
	SourceKey string `json:"source_key,omitempty" yaml:"source_key,omitempty"`

	// DOI is the identifier the record was fetched for.
	DOI string `json:"doi" yaml:"doi"`

	// Fields maps lower-cased BibTeX field names to their values.
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Field returns the value of a field, or "" when it is absent.
func (c *Citation) Field(name string) string {
	if c == nil || c.Fields == nil {
		return ""
	}
	return c.Fields[name]
}

// SetField stores a field value, creating the map on first use.
func (c *Citation) SetField(name, value string) {
	if c.Fields == nil {
		c.Fields = make(map[string]string)
	}
	c.Fields[name] = value
}
