// Package classifier decides whether URLs point at Medium-hosted
// content, combining the domain allowlist, the hostname cache, and the
// head probe.
package classifier

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"mediumgate/internal/metrics"
	"mediumgate/models"
	"mediumgate/pkg/caching"
	"mediumgate/pkg/detector"
	"mediumgate/pkg/domains"
	"mediumgate/pkg/fetcher"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// HeadFetcher is the probe the engine runs on cache misses. The
// concrete fetcher satisfies it; tests substitute stubs.
type HeadFetcher interface {
	FetchHead(ctx context.Context, rawURL string) fetcher.Result
}

// Engine classifies URLs. Decision operations never return errors:
// anything that goes wrong degrades to a negative answer and a log
// line, because the caller is deciding where to send a click, not
// running a transaction.
type Engine struct {
	matcher    *domains.Matcher
	probe      HeadFetcher
	cache      caching.Store
	logger     *slog.Logger
	threshold  int
	mirrorBase string
	now        func() time.Time
}

// New wires an engine from its collaborators. Nil arguments fall back
// to defaults: the compiled-in allowlist, a real HTTP fetcher, an
// in-process cache, and the default logger.
func New(matcher *domains.Matcher, probe HeadFetcher, cache caching.Store, logger *slog.Logger) *Engine {
	if matcher == nil {
		matcher = domains.NewMatcher()
	}
	if probe == nil {
		probe = fetcher.NewFetcher(models.FetchConfig{})
	}
	if cache == nil {
		cache = caching.NewMemoryStore(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		matcher:    matcher,
		probe:      probe,
		cache:      cache,
		logger:     logger,
		threshold:  models.DefaultThreshold,
		mirrorBase: models.DefaultMirrorBase,
		now:        time.Now,
	}
}

// NewFromConfig builds the production engine: allowlist extras, tuned
// fetcher, and the Redis store when configured, memory store otherwise.
func NewFromConfig(cfg *models.Config, logger *slog.Logger) *Engine {
	if cfg == nil {
		cfg = models.DefaultConfig()
	}
	var cache caching.Store
	if cfg.Cache.RedisURL != "" {
		cache = caching.NewRedisStore(cfg.Cache.RedisURL, cfg.CacheTTL(), logger)
	} else {
		cache = caching.NewMemoryStore(cfg.CacheTTL(), cfg.Cache.Capacity)
	}
	e := New(
		domains.NewMatcher(cfg.Detection.ExtraDomains...),
		fetcher.NewFetcher(cfg.Fetch),
		cache,
		logger,
	)
	if cfg.Detection.Threshold > 0 {
		e.threshold = cfg.Detection.Threshold
	}
	if cfg.Detection.MirrorBase != "" {
		e.mirrorBase = cfg.Detection.MirrorBase
	}
	return e
}

// Matcher exposes the engine's allowlist matcher for surfaces that
// answer domain-only questions.
func (e *Engine) Matcher() *domains.Matcher {
	return e.matcher
}

// Threshold returns the engine's default decision threshold.
func (e *Engine) Threshold() int {
	return e.threshold
}

// IsMediumURL reports whether rawURL points at Medium-hosted content.
// Unparseable input is false without any network traffic; an allowlist
// hit is true without touching cache or network; everything else runs
// the head detection.
func (e *Engine) IsMediumURL(ctx context.Context, rawURL string) bool {
	return e.Classify(ctx, models.DetectRequest{URL: rawURL}).IsMediumLikely
}

// Classify is IsMediumURL with the full result attached: allowlist
// hits answer immediately with no score, everything else runs Detect.
func (e *Engine) Classify(ctx context.Context, req models.DetectRequest) models.DetectionResult {
	host, ok := hostnameOf(req.URL)
	if !ok {
		e.logger.Debug("unparseable url treated as not medium", "url", req.URL)
		metrics.RecordDetection(models.SourceInvalid, false)
		return models.DetectionResult{Source: models.SourceInvalid}
	}
	if e.matcher.IsDirectMediumDomain(host) {
		metrics.RecordDetection(models.SourceAllowlist, true)
		return models.DetectionResult{
			IsMediumLikely: true,
			Reasons:        []string{"hostname is a known Medium publication domain"},
			Source:         models.SourceAllowlist,
		}
	}
	return e.Detect(ctx, req)
}

// Detect runs the cached head-probe classification for one URL.
// A fresh cache entry answers verbatim, cached boolean included, even
// when the request carries a different threshold; the stored score and
// reasons say why. Otherwise the host is probed once and the outcome,
// including the all-zero outcome of a failed probe, is written back
// under the hostname.
func (e *Engine) Detect(ctx context.Context, req models.DetectRequest) models.DetectionResult {
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = e.threshold
	}

	host, ok := hostnameOf(req.URL)
	if !ok {
		e.logger.Warn("detection skipped: unparseable url", "url", req.URL)
		metrics.RecordDetection(models.SourceInvalid, false)
		return models.DetectionResult{Source: models.SourceInvalid}
	}

	if entry, ok := e.cache.Get(host); ok {
		metrics.RecordCacheEvent("hit")
		metrics.RecordDetection(models.SourceCache, entry.IsMedium)
		return models.DetectionResult{
			IsMediumLikely: entry.IsMedium,
			Score:          entry.Score,
			Reasons:        entry.Reasons,
			Source:         models.SourceCache,
		}
	}
	metrics.RecordCacheEvent("miss")

	start := e.now()
	probe := e.probe.FetchHead(ctx, req.URL)
	elapsed := e.now().Sub(start)
	metrics.ObserveProbe(elapsed)

	var score int
	var reasons []string
	switch {
	case !probe.OK:
		metrics.RecordProbeFailure(failureKind(probe))
		e.logger.Warn("head probe failed, caching negative outcome",
			"url", req.URL, "host", host, "status", probe.StatusCode,
			"duration", elapsed, "error", probe.Err)
	case probe.HeadHTML == "":
		metrics.RecordProbeFailure("empty-head")
		e.logger.Warn("page served no head markup",
			"url", req.URL, "host", host, "status", probe.StatusCode)
	default:
		score, reasons = detector.ScoreSignals(probe.HeadHTML)
	}

	result := models.DetectionResult{
		IsMediumLikely: score >= threshold,
		Score:          score,
		Reasons:        reasons,
		Source:         models.SourceProbe,
	}
	entry := models.CacheEntry{
		Timestamp: e.now(),
		IsMedium:  result.IsMediumLikely,
		Score:     score,
		Reasons:   reasons,
	}
	if err := e.cache.Set(host, entry); err != nil {
		e.logger.Warn("cache write failed", "host", host, "error", err)
	}
	metrics.RecordDetection(models.SourceProbe, result.IsMediumLikely)
	e.logger.Debug("head probe scored",
		"url", req.URL, "host", host, "score", score,
		"threshold", threshold, "medium", result.IsMediumLikely)
	return result
}

// DetectByHead is Detect with the engine's default threshold.
func (e *Engine) DetectByHead(ctx context.Context, rawURL string) models.DetectionResult {
	return e.Detect(ctx, models.DetectRequest{URL: rawURL})
}

// MirrorURL rewrites rawURL onto the engine's configured mirror.
func (e *Engine) MirrorURL(rawURL string) string {
	return ConvertToMirrorURL(e.mirrorBase, rawURL)
}

// ConvertToFreediumURL rewrites rawURL onto the default freedium
// mirror: the scheme is dropped and the rest of the URL, path and
// query included, rides behind the mirror origin.
func ConvertToFreediumURL(rawURL string) string {
	return ConvertToMirrorURL(models.DefaultMirrorBase, rawURL)
}

// ConvertToMirrorURL is ConvertToFreediumURL against any mirror base.
// A URL without an http scheme is passed through untouched behind the
// base, which keeps the transform total and string-in string-out.
func ConvertToMirrorURL(base, rawURL string) string {
	return strings.TrimRight(base, "/") + "/" + schemeRe.ReplaceAllString(rawURL, "")
}

// Hostname extracts the lowercased hostname, reporting false for
// anything url.Parse rejects or that carries no host at all.
func Hostname(rawURL string) (string, bool) {
	return hostnameOf(rawURL)
}

func hostnameOf(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	return strings.ToLower(u.Hostname()), true
}

// failureKind labels a failed probe for metrics.
func failureKind(r fetcher.Result) string {
	switch {
	case errors.Is(r.Err, context.DeadlineExceeded):
		return "timeout"
	case r.StatusCode != 0:
		return "status"
	default:
		return "network"
	}
}
