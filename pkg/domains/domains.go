// Package domains answers whether a hostname belongs to the Medium
// family without any network traffic.
package domains

import "strings"

// knownMediumDomains lists Medium-owned hosts plus the custom domains
// of Medium-run publications that serve Medium content under their own
// names. Subdomains of any entry match too.
var knownMediumDomains = []string{
	"medium.com",
	"towardsdatascience.com",
	"betterprogramming.pub",
	"betterhumans.pub",
	"bettermarketing.pub",
	"uxdesign.cc",
	"uxplanet.org",
	"itnext.io",
	"codeburst.io",
	"levelup.gitconnected.com",
	"javascript.plainenglish.io",
	"python.plainenglish.io",
	"aws.plainenglish.io",
	"blog.bitsrc.io",
	"infosecwriteups.com",
	"entrepreneurshandbook.co",
	"thebolditalic.com",
	"writingcooperative.com",
}

// Matcher checks hostnames against the publication allowlist.
type Matcher struct {
	domains []string
}

// NewMatcher builds a matcher over the built-in allowlist plus any
// extra domains. Extras are normalized to lowercase without leading
// dots; empty entries are dropped.
func NewMatcher(extra ...string) *Matcher {
	m := &Matcher{domains: make([]string, 0, len(knownMediumDomains)+len(extra))}
	m.domains = append(m.domains, knownMediumDomains...)
	for _, d := range extra {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d != "" {
			m.domains = append(m.domains, d)
		}
	}
	return m
}

// Domains returns a copy of the active allowlist.
func (m *Matcher) Domains() []string {
	out := make([]string, len(m.domains))
	copy(out, m.domains)
	return out
}

// IsDirectMediumDomain reports whether hostname is Medium-family on
// name alone: an allowlist entry, a subdomain of one, or any hostname
// containing "medium". The substring rule is deliberately broad (it
// matches hosts like mediumrare.example.org); it trades precision for
// a zero-cost fast path, and the mirror tolerates false positives.
func (m *Matcher) IsDirectMediumDomain(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if host == "" {
		return false
	}
	if strings.Contains(host, "medium") {
		return true
	}
	for _, d := range m.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
