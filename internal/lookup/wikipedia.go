package lookup

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
)

// WikipediaLookup searches the MediaWiki API
type WikipediaLookup struct {
	client     *Client
	apiURL     string
	maxResults int
}

// NewWikipediaLookup creates a Wikipedia backend for apiURL (…/w/api.php)
func NewWikipediaLookup(client *Client, apiURL string, maxResults int) *WikipediaLookup {
	if maxResults <= 0 {
		maxResults = 4
	}
	return &WikipediaLookup{client: client, apiURL: apiURL, maxResults: maxResults}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			PageID  int    `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}

// Lookup runs a full-text search and links each hit to its article
func (w *WikipediaLookup) Lookup(ctx context.Context, query string, _ model.Bucket) ([]Result, error) {
	base, err := url.Parse(w.apiURL)
	if err != nil {
		return nil, eris.Wrap(err, "wikipedia: parse api url")
	}
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(w.maxResults))
	params.Set("format", "json")
	params.Set("utf8", "1")
	base.RawQuery = params.Encode()

	var resp wikiSearchResponse
	if err := w.client.GetJSON(ctx, "wikipedia", base.String(), &resp); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Query.Search))
	for _, hit := range resp.Query.Search {
		if strings.TrimSpace(hit.Title) == "" {
			continue
		}
		page := url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/wiki/" + strings.ReplaceAll(hit.Title, " ", "_")}
		results = append(results, Result{
			Title:    hit.Title,
			Summary:  stripHTML(hit.Snippet),
			SourceID: page.String(),
			Source:   "Wikipedia",
		})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// stripHTML returns the text content of an HTML fragment with whitespace collapsed
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
