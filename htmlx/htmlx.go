// SPDX-License-Identifier: MIT

// Package htmlx provides HTML text extraction, sanitization, and link
// rewriting on top of golang.org/x/net/html.
package htmlx

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	unorm "golang.org/x/text/unicode/norm"
)

// unsafeElements are removed entirely, contents included, by Sanitize and
// skipped by StripTags.
var unsafeElements = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// unsafeAttrPrefixes strips inline event handlers (onclick, onload, ...).
const unsafeAttrPrefix = "on"

// urlAttr reports whether key carries a URL: link targets, embedded
// resources, and form submission targets.
func urlAttr(key string) bool {
	switch strings.ToLower(key) {
	case "href", "src", "action":
		return true
	}
	return false
}

// StripTags returns the text content of the given HTML with all tags
// removed. Script and style elements are dropped with their contents,
// non-breaking spaces become plain spaces, and newlines are removed.
func StripTags(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && unsafeElements[n.DataAtom] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.ReplaceAll(sb.String(), " ", " ")
	return strings.ReplaceAll(text, "\n", ""), nil
}

// Sanitize removes script and style elements together with their contents
// and drops event-handler attributes and javascript: URLs from the remaining
// nodes. The document structure is otherwise preserved.
func Sanitize(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	clean(doc)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return sb.String(), nil
}

func clean(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && unsafeElements[c.DataAtom] {
			n.RemoveChild(c)
		} else {
			clean(c)
		}
		c = next
	}

	if n.Type != html.ElementNode {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, unsafeAttrPrefix) {
			continue
		}
		if urlAttr(key) &&
			strings.HasPrefix(strings.TrimSpace(strings.ToLower(a.Val)), "javascript:") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// AbsolutizeLinks rewrites relative href, src, and action attributes in the
// document against base. Attributes that do not parse as URLs are left
// untouched.
func AbsolutizeLinks(raw, base string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for i, a := range n.Attr {
				if !urlAttr(a.Key) {
					continue
				}
				ref, err := url.Parse(a.Val)
				if err != nil || ref.IsAbs() {
					continue
				}
				n.Attr[i].Val = baseURL.ResolveReference(ref).String()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return sb.String(), nil
}

var spaceRun = regexp.MustCompile(`\s+`)

// NormalizeText prepares extracted text for comparison: Unicode is
// normalized to NFC form, whitespace runs collapse to a single space, and
// leading/trailing space is trimmed.
func NormalizeText(s string) string {
	s = unorm.NFC.String(s)
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Decode converts an HTML document of unknown encoding to UTF-8, detecting
// the charset from the content-type hint, a meta tag, or a BOM.
// contentType may be empty.
func Decode(r io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}
	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", fmt.Errorf("decode html: %w", err)
	}
	return string(data), nil
}
