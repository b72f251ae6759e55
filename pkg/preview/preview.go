// Package preview lifts display metadata out of head markup for the
// surfaces that show a detection to a person: CLI verbose output, the
// API's preview flag, and the history log's title column. It never
// runs on the classification hot path.
package preview

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Preview is the presentable subset of a page's head metadata.
type Preview struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	SiteName    string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string `json:"author,omitempty" yaml:"author,omitempty"`
	Canonical   string `json:"canonical,omitempty" yaml:"canonical,omitempty"`
	Favicon     string `json:"favicon,omitempty" yaml:"favicon,omitempty"`
}

// Extract pulls display metadata from head markup. goquery tolerates
// the truncated fragments the probe produces; anything unreadable
// yields the zero Preview.
func Extract(headHTML string) Preview {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(headHTML))
	if err != nil {
		return Preview{}
	}

	p := Preview{}
	p.Title = normalizeText(doc.Find("title").First().Text())
	if p.Title == "" {
		p.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	p.SiteName = metaContent(doc, `meta[property="og:site_name"]`)
	p.Description = metaContent(doc, `meta[name="description"]`)
	if p.Description == "" {
		p.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	p.Author = metaContent(doc, `meta[name="author"]`)
	p.Canonical = linkHref(doc, `link[rel="canonical"]`)
	p.Favicon = linkHref(doc, `link[rel="icon"]`)
	if p.Favicon == "" {
		p.Favicon = linkHref(doc, `link[rel="shortcut icon"]`)
	}
	return p
}

func metaContent(doc *goquery.Document, selector string) string {
	if v, ok := doc.Find(selector).First().Attr("content"); ok {
		return normalizeText(v)
	}
	return ""
}

func linkHref(doc *goquery.Document, selector string) string {
	if v, ok := doc.Find(selector).First().Attr("href"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// normalizeText collapses runs of whitespace, including newlines
// inside wrapped title tags, into single spaces.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
