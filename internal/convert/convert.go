// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert extracts text from PDF files by delegating to an external
// tool. The tool is chosen once per run with Detect; each Convert call is a
// single process invocation with no retry.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pdf2bib/internal/command"
	"github.com/pdiddy/pdf2bib/pkg/types"
)

// ErrToolMissing is returned by Detect when no usable extraction tool is
// installed. Every file would fail the same way, so callers treat it as fatal.
var ErrToolMissing = errors.New("text extraction tool not available")

// Converter turns a PDF into plain text. Different backends (pdftotext,
// pdftohtml, markitdown) implement this interface.
type Converter interface {
	// Name identifies the backend in logs.
	Name() string

	// Convert reads the PDF at pdfPath and returns its text.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// tool describes how to invoke one command-line extractor.
type tool struct {
	args func(pdfPath string, pages int) []string
	post func(string) string
}

var tools = map[types.ExtractionBackend]tool{
	types.BackendPdftotext: {
		args: func(pdfPath string, pages int) []string {
			args := []string{"-q", "-enc", "UTF-8"}
			args = append(args, pageArgs(pages)...)
			return append(args, safePath(pdfPath), "-")
		},
	},
	types.BackendPdftohtml: {
		args: func(pdfPath string, pages int) []string {
			args := []string{"-stdout", "-i", "-q", "-noframes"}
			args = append(args, pageArgs(pages)...)
			return append(args, safePath(pdfPath))
		},
		post: stripHTML,
	},
}

// autoOrder is the preference order for the auto backend.
var autoOrder = []types.ExtractionBackend{types.BackendPdftotext, types.BackendPdftohtml}

// ToolConverter runs a poppler command-line tool and captures its stdout.
type ToolConverter struct {
	name    types.ExtractionBackend
	bin     string
	tool    tool
	pages   int
	timeout time.Duration
	exec    command.Executor
}

// Name returns the backend name.
func (c *ToolConverter) Name() string { return string(c.name) }

// Convert runs the tool on pdfPath. A non-zero exit status, a timeout, or a
// missing input file is returned as an error; empty output is not.
func (c *ToolConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var out bytes.Buffer
	if err := c.exec.Run(ctx, c.bin, c.tool.args(pdfPath, c.pages), nil, &out); err != nil {
		return "", fmt.Errorf("converting %s with %s: %w", pdfPath, c.name, err)
	}

	text := out.String()
	if c.tool.post != nil {
		text = c.tool.post(text)
	}
	return text, nil
}

// Detect selects the extraction backend named in cfg, verifying that its
// tool is installed. The auto backend picks the first available poppler
// tool. A nil exec uses the real operating system.
func Detect(ctx context.Context, cfg types.ExtractionConfig, exec command.Executor) (Converter, error) {
	if exec == nil {
		exec = command.OS{}
	}

	switch cfg.Backend {
	case types.BackendMarkitdown:
		return detectMarkitdown(ctx, cfg, exec)
	case types.BackendAuto, "":
		for _, name := range autoOrder {
			if c, err := lookupTool(name, cfg, exec); err == nil {
				return c, nil
			}
		}
		return nil, fmt.Errorf("%w: install poppler-utils (pdftotext or pdftohtml)", ErrToolMissing)
	default:
		if _, ok := tools[cfg.Backend]; !ok {
			return nil, fmt.Errorf("unknown extraction backend %q", cfg.Backend)
		}
		return lookupTool(cfg.Backend, cfg, exec)
	}
}

func lookupTool(name types.ExtractionBackend, cfg types.ExtractionConfig, exec command.Executor) (*ToolConverter, error) {
	bin, err := exec.LookPath(string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found on PATH", ErrToolMissing, name)
	}
	return &ToolConverter{
		name:    name,
		bin:     bin,
		tool:    tools[name],
		pages:   cfg.Pages,
		timeout: cfg.Timeout,
		exec:    exec,
	}, nil
}

// pageArgs limits conversion to the first pages pages; 0 means all.
func pageArgs(pages int) []string {
	if pages <= 0 {
		return nil
	}
	return []string{"-f", "1", "-l", strconv.Itoa(pages)}
}

// safePath keeps file names that start with a dash from being read as flags.
func safePath(p string) string {
	if strings.HasPrefix(p, "-") {
		return "./" + p
	}
	return p
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML reduces pdftohtml output to text: tags become spaces and
// entities are decoded.
func stripHTML(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, " "))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
