// Package detector scores head markup for signals that a page is
// served by Medium's platform.
package detector

import (
	"fmt"
	"regexp"
	"strings"

	"mediumgate/models"
	"mediumgate/pkg/headparser"
)

// Identifiers Medium publishes in its app-link and search markup.
// These appear on medium.com and on every custom-domain publication
// Medium hosts, which is what makes head probing work.
const (
	iosAppStoreID  = "828256236"
	androidPackage = "com.medium.reader"
	appName        = "Medium"
)

var (
	androidDeepLinkRe = regexp.MustCompile(`(?i)^android-app://com\.medium\.reader/`)
	authorProfileRe   = regexp.MustCompile(`(?i)^https?://medium\.com/@[^/\s]+`)
	profileMentionRe  = regexp.MustCompile(`(?i)medium\.com/@[a-z0-9._-]+`)
	assetHostRe       = regexp.MustCompile(`(?i)\b(?:miro|glyph|cdn-images-\d+)\.medium\.com\b`)
	osdPathRe         = regexp.MustCompile(`(?i)/osd\.xml(?:$|[?#])`)
)

// Evidence is the input every rule sees: the parsed head document plus
// the raw markup for containment checks.
type Evidence struct {
	Doc *models.HeadDocument
	Raw string
}

// Rule is one weighted signal. Weights are positive, so the total is a
// plain sum and never negative.
type Rule struct {
	Reason string
	Weight int
	Match  func(ev *Evidence) bool
}

// rules is the fixed signal table, evaluated in order on every probe.
// Order only determines how reasons are listed, never the total.
var rules = []Rule{
	{
		Reason: fmt.Sprintf("meta al:ios:app_store_id matches Medium's App Store id %s", iosAppStoreID),
		Weight: 3,
		Match:  metaEquals("al:ios:app_store_id", iosAppStoreID),
	},
	{
		Reason: "meta al:ios:app_name names the Medium iOS app",
		Weight: 2,
		Match:  metaEquals("al:ios:app_name", appName),
	},
	{
		Reason: fmt.Sprintf("meta al:android:package matches Medium's Android package %s", androidPackage),
		Weight: 3,
		Match:  metaEquals("al:android:package", androidPackage),
	},
	{
		Reason: "meta al:android:app_name names the Medium Android app",
		Weight: 2,
		Match:  metaEquals("al:android:app_name", appName),
	},
	{
		Reason: "alternate link deep-links into the Medium Android app",
		Weight: 3,
		Match: func(ev *Evidence) bool {
			return anyMatch(ev.Doc.LinkHrefs("alternate"), androidDeepLinkRe)
		},
	},
	{
		Reason: "author link points at a medium.com profile",
		Weight: 3,
		Match: func(ev *Evidence) bool {
			return anyMatch(ev.Doc.LinkHrefs("author"), authorProfileRe)
		},
	},
	{
		Reason: "ld+json block references a medium.com profile",
		Weight: 2,
		Match: func(ev *Evidence) bool {
			for _, script := range ev.Doc.Scripts {
				// JSON-LD frequently escapes forward slashes
				if profileMentionRe.MatchString(strings.ReplaceAll(script, `\/`, `/`)) {
					return true
				}
			}
			return false
		},
	},
	{
		Reason: "og:site_name is Medium",
		Weight: 1,
		Match:  metaEquals("og:site_name", appName),
	},
	{
		Reason: "OpenSearch link is titled Medium",
		Weight: 1,
		Match: func(ev *Evidence) bool {
			return anyEqualFold(ev.Doc.LinkTitles("search"), appName)
		},
	},
	{
		Reason: "OpenSearch descriptor served from /osd.xml",
		Weight: 1,
		Match: func(ev *Evidence) bool {
			return anyMatch(ev.Doc.LinkHrefs("search"), osdPathRe)
		},
	},
	{
		Reason: "head markup references a Medium asset host",
		Weight: 1,
		Match: func(ev *Evidence) bool {
			return assetHostRe.MatchString(ev.Raw)
		},
	},
}

// Rules returns a copy of the signal table for listing surfaces.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// MaxScore is the total a page matching every rule would reach.
func MaxScore() int {
	total := 0
	for _, r := range rules {
		total += r.Weight
	}
	return total
}

// Score evaluates every rule against the parsed document and raw
// markup, returning the summed weight and the reasons that fired.
func Score(doc *models.HeadDocument, raw string) (int, []string) {
	score := 0
	var reasons []string
	ev := &Evidence{Doc: doc, Raw: raw}
	for _, r := range rules {
		if r.Match(ev) {
			score += r.Weight
			reasons = append(reasons, r.Reason)
		}
	}
	return score, reasons
}

// ScoreSignals parses headHTML and scores it in one call. Empty input
// scores zero with no reasons.
func ScoreSignals(headHTML string) (int, []string) {
	return Score(headparser.Parse(headHTML), headHTML)
}

// metaEquals matches a meta tag keyed by either property or name
// (pages disagree on which attribute app-link tags use) whose content
// equals want, ignoring case.
func metaEquals(key, want string) func(ev *Evidence) bool {
	return func(ev *Evidence) bool {
		values := ev.Doc.MetaByProperty(key)
		values = append(values, ev.Doc.MetaByName(key)...)
		return anyEqualFold(values, want)
	}
}

func anyEqualFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

func anyMatch(values []string, re *regexp.Regexp) bool {
	for _, v := range values {
		if re.MatchString(strings.TrimSpace(v)) {
			return true
		}
	}
	return false
}
