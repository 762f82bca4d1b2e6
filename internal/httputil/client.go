// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client used for metadata lookups.
package httputil

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pdf2bib/pkg/types"
)

// NewClient returns an HTTP client with the configured timeout whose
// transport sets the User-Agent header and, when perSecond is positive,
// paces requests to at most perSecond per second. It never retries.
func NewClient(cfg types.HTTPConfig, perSecond float64) *http.Client {
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewTransport(http.DefaultTransport, cfg.UserAgent, perSecond),
	}
}

// NewTransport wraps next with User-Agent injection and optional pacing.
func NewTransport(next http.RoundTripper, userAgent string, perSecond float64) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &transport{
		next:      next,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

type transport struct {
	next      http.RoundTripper
	userAgent string
	limiter   *rate.Limiter
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.next.RoundTrip(req)
}

// UserAgent builds the User-Agent value, adding a mailto contact when one
// is configured so metadata services can reach the operator.
func UserAgent(product, version, mailto string) string {
	ua := product + "/" + version
	if mailto != "" {
		ua += " (mailto:" + mailto + ")"
	}
	return ua
}
