package adapters

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// WikipediaAdapter extracts content specifically from Wikipedia pages
type WikipediaAdapter struct{}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia URL
func (a *WikipediaAdapter) CanHandle(rawURL string, contentType string) bool {
	return strings.Contains(rawURL, "wikipedia.org")
}

// Extract keeps the lead section: paragraphs of the parser output before the
// first heading, with citation markers removed
func (a *WikipediaAdapter) Extract(doc *goquery.Document, rawURL string) (*Article, error) {
	content := doc.Find("#mw-content-text .mw-parser-output").First()
	if content.Length() == 0 {
		content = doc.Find("#mw-content-text").First()
	}
	content.Find("sup.reference, .mw-editsection, table, .navbox, style").Remove()

	var lead *goquery.Selection
	content.Children().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "h2" || s.HasClass("mw-heading") {
			return false
		}
		if goquery.NodeName(s) == "p" {
			if lead == nil {
				lead = s
			} else {
				lead = lead.AddSelection(s)
			}
		}
		return true
	})

	body := ""
	if lead != nil {
		body = paragraphs(lead)
	}
	if body == "" {
		body = paragraphs(content.Find("p"))
	}

	title := strings.TrimSpace(doc.Find("#firstHeading").First().Text())
	if title == "" {
		title = pageTitle(doc)
	}
	return &Article{Title: title, Text: body}, nil
}
