// Package adapters pulls readable article text out of fetched HTML pages.
package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/newsintel/internal/extract"
)

// Article is the readable part of a fetched page
type Article struct {
	URL     string
	Title   string
	Text    string
	Adapter string // Name of the adapter that produced it
}

// Adapter defines the interface for site-specific article extractors
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(url string, contentType string) bool

	// Extract pulls title and body text from the parsed document
	Extract(doc *goquery.Document, url string) (*Article, error)
}

// Registry manages site adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewWikipediaAdapter())
	registry.Register(NewNewsAdapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given URL and content type
func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(url, contentType) {
			return adapter
		}
	}
	return r.generic
}

// Extract parses htmlContent and runs the matching adapter. When the adapter
// finds no paragraphs the visible text of the whole page is used.
func (r *Registry) Extract(htmlContent, url, contentType string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	adapter := r.FindAdapter(url, contentType)
	article, err := adapter.Extract(doc, url)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(article.Text) == "" {
		article.Text, err = extract.VisibleText(htmlContent)
		if err != nil {
			return nil, err
		}
	}
	article.URL = url
	article.Adapter = adapter.Name()
	return article, nil
}

// paragraphs joins the text of every selected node, one paragraph per line
func paragraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		t := strings.Join(strings.Fields(s.Text()), " ")
		if t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// pageTitle prefers og:title over <title>
func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
