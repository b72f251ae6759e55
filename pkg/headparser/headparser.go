// Package headparser extracts meta tags, link tags, and ld+json script
// blocks from head markup.
//
// It runs a streaming tokenizer rather than regular expressions, so
// attribute order, quoting style, and entity escaping never matter,
// and the truncated fragments the range-hinted probe produces are
// handled the same as complete documents: parsing keeps whatever was
// extracted before the input ran out.
package headparser

import (
	"strings"

	"golang.org/x/net/html"

	"mediumgate/models"
)

// Parse tokenizes headHTML and collects every meta tag, link tag, and
// application/ld+json script body in document order. It never fails;
// malformed input yields whatever was recognized before the bad spot.
func Parse(headHTML string) *models.HeadDocument {
	doc := &models.HeadDocument{}
	z := html.NewTokenizer(strings.NewReader(headHTML))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return doc
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		switch string(name) {
		case "meta":
			doc.Meta = append(doc.Meta, metaTag(tagAttrs(z, hasAttr)))
		case "link":
			doc.Links = append(doc.Links, linkTag(tagAttrs(z, hasAttr)))
		case "script":
			attrs := tagAttrs(z, hasAttr)
			if tt == html.StartTagToken && isLDJSON(attrs["type"]) {
				doc.Scripts = append(doc.Scripts, scriptBody(z))
			}
		}
	}
}

// tagAttrs drains the current tag's attributes. The tokenizer has
// already lowercased keys and unescaped values; on duplicate keys the
// first occurrence wins, as browsers resolve them.
func tagAttrs(z *html.Tokenizer, hasAttr bool) map[string]string {
	if !hasAttr {
		return nil
	}
	attrs := make(map[string]string, 4)
	for {
		key, val, more := z.TagAttr()
		k := string(key)
		if _, seen := attrs[k]; !seen {
			attrs[k] = string(val)
		}
		if !more {
			return attrs
		}
	}
}

func metaTag(attrs map[string]string) models.MetaTag {
	var t models.MetaTag
	if v, ok := attrs["name"]; ok {
		t.Name = &v
	}
	if v, ok := attrs["property"]; ok {
		t.Property = &v
	}
	if v, ok := attrs["content"]; ok {
		t.Content = &v
	}
	return t
}

func linkTag(attrs map[string]string) models.LinkTag {
	var t models.LinkTag
	if v, ok := attrs["rel"]; ok {
		t.Rel = &v
	}
	if v, ok := attrs["href"]; ok {
		t.Href = &v
	}
	if v, ok := attrs["title"]; ok {
		t.Title = &v
	}
	return t
}

// scriptBody reads the raw text of the script element the tokenizer is
// positioned inside. Script content is a raw-text element, so it
// arrives as a single text token followed by the close tag; a
// truncated input ends the body at the cut.
func scriptBody(z *html.Tokenizer) string {
	var b strings.Builder
	for {
		switch z.Next() {
		case html.TextToken:
			b.Write(z.Text())
		default:
			return b.String()
		}
	}
}

// isLDJSON matches the type attribute against application/ld+json,
// ignoring case, surrounding space, and any media-type parameters.
func isLDJSON(typ string) bool {
	mime, _, _ := strings.Cut(typ, ";")
	return strings.EqualFold(strings.TrimSpace(mime), "application/ld+json")
}
