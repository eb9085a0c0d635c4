package adapters

import "github.com/PuerkitoBio/goquery"

// GenericAdapter is the fallback adapter for unknown domains
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// Extract prefers paragraphs inside <article> or <main>, then any <p>
func (a *GenericAdapter) Extract(doc *goquery.Document, url string) (*Article, error) {
	doc.Find("script, style, noscript, nav, footer, aside").Remove()

	body := paragraphs(doc.Find("article p"))
	if body == "" {
		body = paragraphs(doc.Find("main p"))
	}
	if body == "" {
		body = paragraphs(doc.Find("p"))
	}
	return &Article{Title: pageTitle(doc), Text: body}, nil
}
