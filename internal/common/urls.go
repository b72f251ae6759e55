// Package common holds the URL hygiene shared by the CLI batch input
// and the HTTP redirect surface.
package common

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var markdownLinkRe = regexp.MustCompile(`^\[.*?\]\((https?://[^\)]+)\)$`)

// SanitizeURL cleans one pasted URL: surrounding whitespace, markdown
// link wrappers, and the stray punctuation that rides along when a URL
// is copied out of chat or notes.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// "[read this](https://example.com/p)" -> "https://example.com/p"
	if matches := markdownLinkRe.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	cleaned = strings.TrimLeft(cleaned, `([<"'`)
	cleaned = strings.TrimRight(cleaned, `,.)}]"'>;`)

	return strings.TrimSpace(cleaned)
}

// SanitizeAndValidateURLs cleans every input and splits it into
// probe-ready URLs and the rejects that stayed invalid after cleanup.
// Rejects are reported in their original form so the caller can show
// the user what they typed.
func SanitizeAndValidateURLs(urls []string) ([]string, []string) {
	sanitized := make([]string, 0, len(urls))
	var invalid []string

	for _, rawURL := range urls {
		cleaned := SanitizeURL(rawURL)
		if err := ValidateProbeURL(cleaned); err != nil {
			invalid = append(invalid, rawURL)
			continue
		}
		sanitized = append(sanitized, cleaned)
	}

	return sanitized, invalid
}

// ValidateProbeURL decides whether a URL is safe to probe or redirect
// to: absolute, http or https, with a real host. The redirect surface
// uses this as its open-redirect guard, so the rules are strict.
func ValidateProbeURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty url")
	}
	if strings.ContainsAny(rawURL, " \t\n") {
		return fmt.Errorf("url contains whitespace")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("unparseable url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme %q is not http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url has no host")
	}
	if strings.ContainsAny(parsed.Host, `{}[]<>"'`) {
		return fmt.Errorf("host contains invalid characters")
	}
	return nil
}
