// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report collects one outcome per PDF and renders the BibTeX
// output, the end-of-run summary and the optional YAML report.
package report

import (
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Kind classifies the outcome of processing one file.
type Kind string

const (
	Written          Kind = "written"
	NoDOIFound       Kind = "no_doi_found"
	ExtractionFailed Kind = "extraction_failed"
	LookupFailed     Kind = "lookup_failed"
)

// kinds is the order in which counts are reported.
var kinds = []Kind{Written, NoDOIFound, ExtractionFailed, LookupFailed}

// label is the human-readable form used in the summary.
func (k Kind) label() string {
	switch k {
	case Written:
		return "written"
	case NoDOIFound:
		return "no DOI found"
	case ExtractionFailed:
		return "extraction failed"
	case LookupFailed:
		return "lookup failed"
	}
	return string(k)
}

// Outcome is the result for a single PDF.
type Outcome struct {
	Path   string `yaml:"path"`
	Kind   Kind   `yaml:"outcome"`
	DOI    string `yaml:"doi,omitempty"`
	Key    string `yaml:"key,omitempty"`
	Reason string `yaml:"reason,omitempty"`

	// Entry is the formatted BibTeX entry for Written outcomes.
	Entry string `yaml:"-"`
}

// Report holds outcomes in discovery order.
type Report struct {
	Outcomes []Outcome
}

// AddWritten records a file whose entry was produced.
func (r *Report) AddWritten(path, doi, key, entry string) {
	r.Outcomes = append(r.Outcomes, Outcome{Path: path, Kind: Written, DOI: doi, Key: key, Entry: entry})
}

// AddNoDOI records a file whose text contained no DOI.
func (r *Report) AddNoDOI(path string) {
	r.Outcomes = append(r.Outcomes, Outcome{Path: path, Kind: NoDOIFound, Reason: "no DOI found in extracted text"})
}

// AddExtractionFailed records a file the text extractor could not handle.
func (r *Report) AddExtractionFailed(path string, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{Path: path, Kind: ExtractionFailed, Reason: reason(err)})
}

// AddLookupFailed records a file whose DOI could not be resolved.
func (r *Report) AddLookupFailed(path, doi string, err error) {
	r.Outcomes = append(r.Outcomes, Outcome{Path: path, Kind: LookupFailed, DOI: doi, Reason: reason(err)})
}

func reason(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Count returns the number of outcomes of kind k.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == k {
			n++
		}
	}
	return n
}

// Total returns the number of files processed.
func (r *Report) Total() int {
	return len(r.Outcomes)
}

// HasFailures reports whether any file did not produce an entry.
func (r *Report) HasFailures() bool {
	return r.Count(Written) != r.Total()
}

// WriteEntries writes every produced entry in discovery order, separated by
// a blank line. Nothing is written when there are no entries.
func (r *Report) WriteEntries(w io.Writer) error {
	var entries []string
	for _, o := range r.Outcomes {
		if o.Kind == Written {
			entries = append(entries, o.Entry)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	_, err := io.WriteString(w, strings.Join(entries, "\n\n")+"\n")
	return err
}

// WriteSummary writes per-kind counts followed by one line per file that
// did not produce an entry.
func (r *Report) WriteSummary(w io.Writer) error {
	var b strings.Builder
	counts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		counts = append(counts, fmt.Sprintf("%d %s", r.Count(k), k.label()))
	}
	fmt.Fprintf(&b, "Summary: %s (total: %d)\n", strings.Join(counts, ", "), r.Total())
	for _, o := range r.Outcomes {
		if o.Kind == Written {
			continue
		}
		if o.DOI != "" {
			fmt.Fprintf(&b, "  %s: %s [%s] (%s)\n", o.Kind.label(), o.Path, o.DOI, o.Reason)
		} else {
			fmt.Fprintf(&b, "  %s: %s (%s)\n", o.Kind.label(), o.Path, o.Reason)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// yamlReport is the document written by WriteYAML.
type yamlReport struct {
	Total    int          `yaml:"total"`
	Counts   map[Kind]int `yaml:"counts"`
	Outcomes []Outcome    `yaml:"outcomes"`
}

// WriteYAML writes a machine-readable report of every outcome.
func (r *Report) WriteYAML(w io.Writer) error {
	doc := yamlReport{
		Total:    r.Total(),
		Counts:   make(map[Kind]int, len(kinds)),
		Outcomes: r.Outcomes,
	}
	for _, k := range kinds {
		doc.Counts[k] = r.Count(k)
	}
	if doc.Outcomes == nil {
		doc.Outcomes = []Outcome{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(doc)
}
