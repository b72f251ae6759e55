package models

import "time"

// Sources recorded in DetectionResult.Source, telling callers where an
// answer came from without changing its meaning.
const (
	SourceAllowlist = "allowlist" // hostname matched without network traffic
	SourceCache     = "cache"     // fresh cached outcome for the hostname
	SourceProbe     = "probe"     // live head probe scored this request
	SourceInvalid   = "invalid-url"
)

// DetectRequest is one classification request. Threshold <= 0 selects
// the engine default.
type DetectRequest struct {
	URL       string `json:"url"`
	Threshold int    `json:"threshold,omitempty"`
}

// DetectionResult is the outcome of classifying a single URL.
type DetectionResult struct {
	IsMediumLikely bool     `json:"is_medium_likely" yaml:"is_medium_likely"`
	Score          int      `json:"score" yaml:"score"`
	Reasons        []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`
	Source         string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// CacheEntry is the per-hostname record the classifier stores after a
// probe, successful or not. Timestamp drives freshness; entries older
// than the cache TTL read as misses.
type CacheEntry struct {
	Timestamp time.Time `json:"timestamp"`
	IsMedium  bool      `json:"is_medium"`
	Score     int       `json:"score"`
	Reasons   []string  `json:"reasons,omitempty"`
}
