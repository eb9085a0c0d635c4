package lookup

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
)

// CrossrefLookup searches scholarly works through the Crossref REST API
type CrossrefLookup struct {
	client     *Client
	worksURL   string
	maxResults int
}

// NewCrossrefLookup creates a Crossref backend for worksURL (…/works)
func NewCrossrefLookup(client *Client, worksURL string, maxResults int) *CrossrefLookup {
	if maxResults <= 0 {
		maxResults = 4
	}
	return &CrossrefLookup{client: client, worksURL: worksURL, maxResults: maxResults}
}

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	Title          []string `json:"title"`
	ContainerTitle []string `json:"container-title"`
	Publisher      string   `json:"publisher"`
	DOI            string   `json:"DOI"`
	URL            string   `json:"URL"`
	Type           string   `json:"type"`
	Issued         struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

// Lookup queries works by title and links each hit through doi.org
func (c *CrossrefLookup) Lookup(ctx context.Context, query string, _ model.Bucket) ([]Result, error) {
	base, err := url.Parse(c.worksURL)
	if err != nil {
		return nil, eris.Wrap(err, "crossref: parse works url")
	}
	params := url.Values{}
	params.Set("query.title", query)
	params.Set("rows", strconv.Itoa(c.maxResults))
	params.Set("select", "title,container-title,publisher,DOI,URL,type,issued")
	base.RawQuery = params.Encode()

	var resp crossrefResponse
	if err := c.client.GetJSON(ctx, "crossref", base.String(), &resp); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		if len(item.Title) == 0 || strings.TrimSpace(item.Title[0]) == "" {
			continue
		}
		source := item.URL
		if item.DOI != "" {
			source = "https://doi.org/" + item.DOI
		}
		if source == "" {
			continue
		}
		results = append(results, Result{
			Title:    stripHTML(item.Title[0]),
			Summary:  item.summary(),
			SourceID: source,
			Source:   "Crossref",
		})
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// summary reads like "journal-article in Nature (2021)"
func (i crossrefItem) summary() string {
	var b strings.Builder
	kind := i.Type
	if kind == "" {
		kind = "work"
	}
	b.WriteString(kind)
	venue := i.Publisher
	if len(i.ContainerTitle) > 0 && i.ContainerTitle[0] != "" {
		venue = i.ContainerTitle[0]
	}
	if venue != "" {
		b.WriteString(" in ")
		b.WriteString(venue)
	}
	if len(i.Issued.DateParts) > 0 && len(i.Issued.DateParts[0]) > 0 && i.Issued.DateParts[0][0] > 0 {
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(i.Issued.DateParts[0][0]))
		b.WriteString(")")
	}
	return b.String()
}
