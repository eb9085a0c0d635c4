package lookup

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
)

// FeedLookup reads an RSS/Atom search feed whose URL template takes the
// escaped query as its single %s verb
type FeedLookup struct {
	client      *Client
	urlTemplate string
	maxResults  int
	parser      *gofeed.Parser
}

// NewFeedLookup creates a feed-search backend
func NewFeedLookup(client *Client, urlTemplate string, maxResults int) *FeedLookup {
	if maxResults <= 0 {
		maxResults = 4
	}
	return &FeedLookup{client: client, urlTemplate: urlTemplate, maxResults: maxResults, parser: gofeed.NewParser()}
}

// Lookup fetches the feed and maps its items to results
func (f *FeedLookup) Lookup(ctx context.Context, query string, _ model.Bucket) ([]Result, error) {
	if !strings.Contains(f.urlTemplate, "%s") {
		return nil, eris.Errorf("feed: url template %q has no %%s", f.urlTemplate)
	}
	rawURL := fmt.Sprintf(f.urlTemplate, url.QueryEscape(query))

	body, err := f.client.Get(ctx, "feed", rawURL, "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.5")
	if err != nil {
		return nil, err
	}
	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "feed: parse")
	}

	source := "RSS search"
	if feed.Title != "" {
		source = feed.Title
	}
	results := make([]Result, 0, f.maxResults)
	for _, item := range feed.Items {
		if len(results) >= f.maxResults {
			break
		}
		if item == nil || strings.TrimSpace(item.Title) == "" || item.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:    strings.TrimSpace(item.Title),
			Summary:  truncate(stripHTML(item.Description), 240),
			SourceID: item.Link,
			Source:   source,
		})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
