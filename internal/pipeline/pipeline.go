// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs each resolved PDF through extraction, DOI
// detection, metadata lookup and formatting, one file at a time.
package pipeline

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/pdf2bib/internal/bib"
	"github.com/pdiddy/pdf2bib/internal/convert"
	"github.com/pdiddy/pdf2bib/internal/doi"
	"github.com/pdiddy/pdf2bib/internal/lookup"
	"github.com/pdiddy/pdf2bib/internal/report"
)

// fileField is the BibTeX field that records the source PDF.
const fileField = "file"

// Pipeline holds the collaborators for one run.
type Pipeline struct {
	Converter convert.Converter
	Fetcher   lookup.Fetcher
	Exclude   bib.FieldSet
	Logger    *log.Logger
}

// Run processes paths in order and returns one outcome per path. Per-file
// failures are recorded in the report and never stop the run.
func (p *Pipeline) Run(ctx context.Context, paths []string) *report.Report {
	logger := p.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keys := bib.NewKeyring()
	rep := &report.Report{}

	for i, path := range paths {
		logger.Info("analyzing", "file", path, "n", i+1, "of", len(paths))

		text, err := p.Converter.Convert(ctx, path)
		if err != nil {
			logger.Warn("extraction failed", "file", path, "err", err)
			rep.AddExtractionFailed(path, err)
			continue
		}

		id, ok := doi.Extract(text)
		if !ok {
			logger.Warn("no DOI found", "file", path)
			rep.AddNoDOI(path)
			continue
		}
		logger.Info("found DOI", "file", path, "doi", id)

		rec, err := p.Fetcher.Fetch(ctx, id)
		if err != nil {
			logger.Warn("lookup failed", "file", path, "doi", id, "err", err)
			rep.AddLookupFailed(path, id, err)
			continue
		}
		rec.SetField(fileField, path)

		key := keys.Unique(bib.CiteKey(rec))
		rep.AddWritten(path, id, key, bib.Format(rec, key, p.Exclude))
		logger.Info("wrote entry", "file", path, "key", key)
	}
	return rep
}
