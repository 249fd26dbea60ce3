// Package extractor turns a fetched listing page into ordered entries whose
// hyperlinks are rendered inline as [text](absolute url).
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is a hyperlink found inside an entry, already made absolute.
type Link struct {
	Text string
	URL  string
}

// Entry is one item of the listing. Text is the flattened text content with
// every link replaced by its [Text](URL) form.
type Entry struct {
	Text  string
	Links []Link
}

// Extractor resolves links against a fixed base URL.
type Extractor struct {
	baseRaw string
	base    *url.URL
}

func New(baseURL string) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	return &Extractor{baseRaw: baseURL, base: base}, nil
}

// Extract returns one Entry per node matching selector, in document order.
// The parsed tree is only read; rendering builds new strings.
func (e *Extractor) Extract(doc []byte, selector string) ([]Entry, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	root, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	entries := []Entry{}
	root.FindMatcher(matcher).Each(func(_ int, s *goquery.Selection) {
		entries = append(entries, e.Render(s.Get(0)))
	})
	return entries, nil
}

// Render flattens a single node.
func (e *Extractor) Render(n *html.Node) Entry {
	var buf strings.Builder
	entry := Entry{Links: []Link{}}
	e.render(n, &buf, &entry.Links)
	entry.Text = buf.String()
	return entry
}

func (e *Extractor) render(n *html.Node, buf *strings.Builder, links *[]Link) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.DataAtom == atom.A {
			link := Link{Text: textOf(n), URL: e.resolve(n)}
			*links = append(*links, link)
			fmt.Fprintf(buf, "[%s](%s)", link.Text, link.URL)
			return
		}
	case html.DocumentNode:
	default:
		// comments and doctypes carry no text
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.render(c, buf, links)
	}
}

// resolve makes the anchor's href absolute. A missing href resolves to the
// base URL itself so the link is still emitted.
func (e *Extractor) resolve(n *html.Node) string {
	href, ok := attr(n, "href")
	if !ok {
		return e.baseRaw
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return e.baseRaw + href
	}
	return e.base.ResolveReference(ref).String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	var buf bytes.Buffer
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}
