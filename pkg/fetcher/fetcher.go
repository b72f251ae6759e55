// Package fetcher runs the single bounded GET that retrieves a page's
// head markup for classification.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"mediumgate/models"
)

// rangeHint asks the origin for roughly the first 16 KB, which covers
// the head section of Medium pages. Servers are free to ignore it, so
// maxBytes still caps the local read.
const rangeHint = "bytes=0-16383"

var (
	headOpenRe  = regexp.MustCompile(`(?i)<head(?:[\s/][^>]*)?>`)
	headCloseRe = regexp.MustCompile(`(?i)</head\s*>`)
)

// Fetcher probes URLs for their head markup. One GET per call, no
// retries; a probe that fails is an answer, not something to recover.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	userAgent string
}

// NewFetcher builds a probe from config, applying defaults for unset
// fields. Redirects are followed so custom publication domains that
// bounce through canonical hosts still classify.
func NewFetcher(cfg models.FetchConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if cfg.TimeoutMS <= 0 {
		timeout = models.DefaultTimeoutMS * time.Millisecond
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = models.DefaultMaxBytes
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = models.DefaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{},
		timeout:   timeout,
		maxBytes:  maxBytes,
		userAgent: userAgent,
	}
}

// Result is one probe outcome. OK distinguishes "the origin answered
// with markup" from any failure; Err is diagnostic context for logs,
// never a reason to abort classification.
type Result struct {
	OK         bool
	StatusCode int
	HeadHTML   string
	Err        error
}

// FetchHead GETs rawURL with a range hint and a deadline, reads at
// most maxBytes, and slices out the head section. Any 2xx answer
// counts as success; 206 is the expected reply to the range hint.
func (f *Fetcher) FetchHead(ctx context.Context, rawURL string) Result {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Range", rangeHint)
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to probe %s: %w", rawURL, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("probe returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil && len(body) == 0 {
		return Result{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}
	// A short read with partial bytes still classifies; the head
	// section usually arrived before the connection died.

	return Result{
		OK:         true,
		StatusCode: resp.StatusCode,
		HeadHTML:   CutHead(string(body)),
	}
}

// CutHead returns the markup between the first <head...> tag and the
// first </head>, matching case-insensitively. When the close tag is
// missing (the range hint routinely truncates mid-head) everything
// after the open tag is kept; without an open tag the result is empty.
func CutHead(markup string) string {
	open := headOpenRe.FindStringIndex(markup)
	if open == nil {
		return ""
	}
	rest := markup[open[1]:]
	end := headCloseRe.FindStringIndex(rest)
	if end == nil {
		return rest
	}
	return rest[:end[0]]
}
