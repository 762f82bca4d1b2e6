// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/pdf2bib/internal/command"
	"github.com/pdiddy/pdf2bib/internal/container"
	"github.com/pdiddy/pdf2bib/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

// MarkitdownConverter converts PDFs by piping them through the markitdown
// container image. It always converts the whole document.
type MarkitdownConverter struct {
	runtime container.Runtime
	timeout time.Duration
}

// NewMarkitdownConverter creates a converter that uses the given container
// runtime. It verifies that the markitdown image exists locally.
func NewMarkitdownConverter(ctx context.Context, rt container.Runtime, timeout time.Duration) (*MarkitdownConverter, error) {
	if err := rt.ImageExists(ctx, imageMarkitdown); err != nil {
		return nil, fmt.Errorf("%w: markitdown image not available in %s: %v", ErrToolMissing, rt.Name(), err)
	}
	return &MarkitdownConverter{runtime: rt, timeout: timeout}, nil
}

// Name returns the backend name.
func (m *MarkitdownConverter) Name() string { return string(types.BackendMarkitdown) }

// Convert pipes the PDF at pdfPath through the markitdown container and
// returns the resulting Markdown text.
func (m *MarkitdownConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, imageMarkitdown, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", pdfPath, err)
	}
	return out.String(), nil
}

func detectMarkitdown(ctx context.Context, cfg types.ExtractionConfig, exec command.Executor) (Converter, error) {
	rt, err := container.DetectRuntime(ctx, exec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrToolMissing, err)
	}
	return NewMarkitdownConverter(ctx, rt, cfg.Timeout)
}
