// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"
)

func sampleReport() *Report {
	r := &Report{}
	r.AddWritten("a.pdf", "10.1000/a", "smith2020", "@article{smith2020,\n  title = {A},\n}")
	r.AddNoDOI("b.pdf")
	r.AddLookupFailed("c.pdf", "10.1000/c", errors.New("doi 10.1000/c: not found"))
	r.AddExtractionFailed("d.pdf", errors.New("pdftotext: exit status 1"))
	r.AddWritten("e.pdf", "10.1000/e", "doe2021", "@misc{doe2021,\n  title = {E},\n}")
	return r
}

func TestCounts(t *testing.T) {
	r := sampleReport()

	tests := []struct {
		kind Kind
		want int
	}{
		{Written, 2},
		{NoDOIFound, 1},
		{ExtractionFailed, 1},
		{LookupFailed, 1},
	}
	for _, tt := range tests {
		if got := r.Count(tt.kind); got != tt.want {
			t.Errorf("Count(%s) = %d, want %d", tt.kind, got, tt.want)
		}
	}
	if r.Total() != 5 {
		t.Errorf("Total() = %d, want 5", r.Total())
	}
	if !r.HasFailures() {
		t.Error("HasFailures should be true")
	}
}

func TestHasFailures_AllWritten(t *testing.T) {
	r := &Report{}
	r.AddWritten("a.pdf", "10.1/a", "a", "@misc{a,\n}")
	if r.HasFailures() {
		t.Error("HasFailures should be false when every file was written")
	}
	if (&Report{}).HasFailures() {
		t.Error("HasFailures should be false for an empty run")
	}
}

func TestWriteEntries(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteEntries(&buf); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}
	want := "@article{smith2020,\n  title = {A},\n}\n\n@misc{doe2021,\n  title = {E},\n}\n"
	if buf.String() != want {
		t.Errorf("WriteEntries =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteEntries_None(t *testing.T) {
	r := &Report{}
	r.AddNoDOI("x.pdf")
	var buf bytes.Buffer
	if err := r.WriteEntries(&buf); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteSummary(&buf); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()

	wantLines := []string{
		"Summary: 2 written, 1 no DOI found, 1 extraction failed, 1 lookup failed (total: 5)",
		"  no DOI found: b.pdf (no DOI found in extracted text)",
		"  lookup failed: c.pdf [10.1000/c] (doi 10.1000/c: not found)",
		"  extraction failed: d.pdf (pdftotext: exit status 1)",
	}
	for _, line := range wantLines {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("summary missing %q:\n%s", line, out)
		}
	}
	if strings.Contains(out, "a.pdf") || strings.Contains(out, "e.pdf") {
		t.Errorf("summary should not list written files:\n%s", out)
	}
	// Failures keep discovery order.
	if strings.Index(out, "b.pdf") > strings.Index(out, "c.pdf") || strings.Index(out, "c.pdf") > strings.Index(out, "d.pdf") {
		t.Errorf("failures out of order:\n%s", out)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	var got yamlReport
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, buf.String())
	}
	if got.Total != 5 {
		t.Errorf("total = %d, want 5", got.Total)
	}
	if got.Counts[Written] != 2 || got.Counts[LookupFailed] != 1 {
		t.Errorf("counts = %v", got.Counts)
	}
	if len(got.Outcomes) != 5 {
		t.Fatalf("len(outcomes) = %d, want 5", len(got.Outcomes))
	}
	if got.Outcomes[0].Key != "smith2020" || got.Outcomes[0].Kind != Written {
		t.Errorf("outcomes[0] = %+v", got.Outcomes[0])
	}
	if got.Outcomes[2].DOI != "10.1000/c" || got.Outcomes[2].Reason == "" {
		t.Errorf("outcomes[2] = %+v", got.Outcomes[2])
	}
	if strings.Contains(buf.String(), "@article") {
		t.Errorf("YAML report should not contain BibTeX entries:\n%s", buf.String())
	}
}

func TestWriteYAML_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Report{}).WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if !strings.Contains(buf.String(), "outcomes: []") {
		t.Errorf("expected empty outcomes list:\n%s", buf.String())
	}
}
