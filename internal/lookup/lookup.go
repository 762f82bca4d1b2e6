// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup resolves a DOI to a citation record through a remote
// bibliographic service. Each call is a single request; failures are final.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/pdf2bib/internal/doi"
	"github.com/pdiddy/pdf2bib/pkg/types"
)

// Failure kinds. Callers distinguish them with errors.Is.
var (
	ErrUnreachable = errors.New("metadata service unreachable")
	ErrNotFound    = errors.New("DOI not found")
	ErrStatus      = errors.New("unexpected response status")
	ErrMalformed   = errors.New("malformed metadata response")
	ErrInvalidDOI  = errors.New("not a DOI")
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 4 << 20

// Fetcher returns the citation record for a DOI.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (*types.Citation, error)
}

// New builds the Fetcher for cfg.Source using client for all requests.
func New(cfg types.LookupConfig, client *http.Client) (Fetcher, error) {
	switch cfg.Source {
	case types.SourceDOI, "":
		return NewResolver(client, cfg.BaseURL), nil
	case types.SourceCrossRef:
		return NewCrossRef(client, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown metadata source %q", cfg.Source)
	}
}

// get performs one GET request and classifies the outcome into the
// package's failure kinds.
func get(ctx context.Context, client *http.Client, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: HTTP %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrStatus, resp.StatusCode, req.URL.Host)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}
	return body, nil
}

// checkDOI strips a "doi:" or resolver URL label from id and rejects
// anything that is not a DOI before a request is made.
func checkDOI(id string) (string, error) {
	n := doi.Normalize(id)
	if !doi.Valid(n) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDOI, id)
	}
	return n, nil
}

// escapePath escapes each segment of a DOI for use in a URL path while
// keeping the separating slashes.
func escapePath(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// joinURL appends path to base with exactly one slash between them.
func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
