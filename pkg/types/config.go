package types

import "time"

// HTTPConfig holds shared HTTP settings used by the metadata lookup.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdf2bib/0.1 (mailto:me@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent" validate:"required"`
}

// ExtractionBackend identifies the external PDF-to-text tool.
type ExtractionBackend string

const (
	BackendAuto       ExtractionBackend = "auto"
	BackendPdftotext  ExtractionBackend = "pdftotext"
	BackendPdftohtml  ExtractionBackend = "pdftohtml"
	BackendMarkitdown ExtractionBackend = "markitdown"
)

// ExtractionConfig holds settings for the text extraction stage.
type ExtractionConfig struct {
	// Backend selects the tool: auto, pdftotext, pdftohtml, or markitdown.
	Backend ExtractionBackend `json:"backend" yaml:"backend" validate:"oneof=auto pdftotext pdftohtml markitdown"`

	// Pages is the number of leading pages to convert; 0 converts all pages.
	Pages int `json:"pages" yaml:"pages" validate:"gte=0"`

	// Timeout bounds a single tool invocation.
	Timeout time.Duration `json:"timeout" yaml:"timeout" validate:"gt=0"`
}

// MetadataSource identifies the remote service used to resolve DOIs.
type MetadataSource string

const (
	SourceDOI      MetadataSource = "doi"
	SourceCrossRef MetadataSource = "crossref"
)

// LookupConfig holds settings for the metadata lookup stage.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// Source selects the metadata service: doi (content negotiation) or crossref.
	Source MetadataSource `json:"source" yaml:"source" validate:"oneof=doi crossref"`

	// BaseURL overrides the service endpoint. Empty uses the source default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`

	// Mailto is a contact address added to the User-Agent for polite access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty" validate:"omitempty,email"`

	// Rate is the maximum number of lookups per second; 0 means unlimited.
	Rate float64 `json:"rate" yaml:"rate" validate:"gte=0"`
}

// OutputConfig holds settings for the output sinks.
type OutputConfig struct {
	// Path is the BibTeX output file. Empty writes to standard output.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Exclude is the raw comma-separated list of fields to omit.
	Exclude string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	// ReportPath is an optional YAML outcome report file.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
}

// Config groups all stage configurations for one run.
type Config struct {
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Lookup     LookupConfig     `json:"lookup" yaml:"lookup"`
	Output     OutputConfig     `json:"output" yaml:"output"`
}
