package adapters

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NewsAdapter extracts the story body from news outlet pages, dropping
// captions, pull quotes and related-story rails
type NewsAdapter struct {
	outlets map[string]bool
}

// NewNewsAdapter creates a news adapter for the built-in outlet list
func NewNewsAdapter() *NewsAdapter {
	return &NewsAdapter{
		outlets: map[string]bool{
			"reuters.com":     true,
			"apnews.com":      true,
			"bbc.com":         true,
			"bbc.co.uk":       true,
			"theguardian.com": true,
			"nytimes.com":     true,
			"npr.org":         true,
			"aljazeera.com":   true,
		},
	}
}

// Name returns the adapter name
func (a *NewsAdapter) Name() string {
	return "news"
}

// CanHandle matches known outlets and typical story paths
func (a *NewsAdapter) CanHandle(rawURL string, contentType string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for outlet := range a.outlets {
		if host == outlet || strings.HasSuffix(host, "."+outlet) {
			return true
		}
	}
	path := strings.ToLower(u.Path)
	return strings.Contains(path, "/news/") || strings.Contains(path, "/article/")
}

// Extract reads the article body; outlets mark it with itemprop, a body
// class or plain <article>
func (a *NewsAdapter) Extract(doc *goquery.Document, rawURL string) (*Article, error) {
	doc.Find("script, style, noscript, nav, footer, aside, figure, figcaption, blockquote.pullquote, [class*=related]").Remove()

	var body string
	for _, sel := range []string{
		`[itemprop="articleBody"] p`,
		`[data-component="text-block"] p`,
		`.article-body p`,
		`article p`,
	} {
		if body = paragraphs(doc.Find(sel)); body != "" {
			break
		}
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = pageTitle(doc)
	}
	return &Article{Title: title, Text: body}, nil
}
