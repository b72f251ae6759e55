package models

import "strings"

// MetaTag is one <meta> element lifted from a page's head markup.
// A nil field means the attribute was absent on the tag; an empty
// string means it was present and empty. Scoring rules rely on that
// distinction.
type MetaTag struct {
	Name     *string `json:"name,omitempty"`
	Property *string `json:"property,omitempty"`
	Content  *string `json:"content,omitempty"`
}

// LinkTag is one <link> element lifted from a page's head markup.
type LinkTag struct {
	Rel   *string `json:"rel,omitempty"`
	Href  *string `json:"href,omitempty"`
	Title *string `json:"title,omitempty"`
}

// HeadDocument holds everything the head parser extracts: meta tags,
// link tags, and the raw bodies of application/ld+json script blocks.
// Tags appear in document order.
type HeadDocument struct {
	Meta    []MetaTag `json:"meta,omitempty"`
	Links   []LinkTag `json:"links,omitempty"`
	Scripts []string  `json:"scripts,omitempty"`
}

// MetaByName returns the content values of every meta tag whose name
// attribute equals name, compared case-insensitively. Tags without a
// content attribute are skipped.
func (d *HeadDocument) MetaByName(name string) []string {
	var out []string
	for _, m := range d.Meta {
		if m.Name != nil && strings.EqualFold(*m.Name, name) && m.Content != nil {
			out = append(out, *m.Content)
		}
	}
	return out
}

// MetaByProperty is MetaByName for the property attribute, which
// OpenGraph and app-link tags use instead of name.
func (d *HeadDocument) MetaByProperty(property string) []string {
	var out []string
	for _, m := range d.Meta {
		if m.Property != nil && strings.EqualFold(*m.Property, property) && m.Content != nil {
			out = append(out, *m.Content)
		}
	}
	return out
}

// LinkHrefs returns the href values of every link tag carrying the
// given rel, compared case-insensitively.
func (d *HeadDocument) LinkHrefs(rel string) []string {
	var out []string
	for _, l := range d.Links {
		if l.Rel != nil && strings.EqualFold(*l.Rel, rel) && l.Href != nil {
			out = append(out, *l.Href)
		}
	}
	return out
}

// LinkTitles returns the title values of every link tag carrying the
// given rel.
func (d *HeadDocument) LinkTitles(rel string) []string {
	var out []string
	for _, l := range d.Links {
		if l.Rel != nil && strings.EqualFold(*l.Rel, rel) && l.Title != nil {
			out = append(out, *l.Title)
		}
	}
	return out
}
