package lookup

import (
	"context"
	"net/url"
	"strings"

	"github.com/ppiankov/newsintel/internal/model"
)

// StaticFallbackLookup returns pre-authored guidance entries pointing at
// search indexes; it never fails
type StaticFallbackLookup struct{}

// NewStaticFallbackLookup creates the guidance backend
func NewStaticFallbackLookup() *StaticFallbackLookup {
	return &StaticFallbackLookup{}
}

// Lookup returns the guidance for bucket
func (s *StaticFallbackLookup) Lookup(_ context.Context, query string, bucket model.Bucket) ([]Result, error) {
	return Guidance(query, bucket), nil
}

// Guidance is the static entry list for a bucket, keyed on topic
func Guidance(topic string, bucket model.Bucket) []Result {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "this claim"
	}
	switch bucket {
	case model.BucketMainstream:
		return []Result{{
			Title:    "Mainstream coverage index: " + topic,
			Summary:  "Fallback index for mainstream reporting when live sources are unavailable.",
			SourceID: searchLink(topic + " site:reuters.com OR site:apnews.com OR site:bbc.com"),
			Source:   "News search",
		}}
	case model.BucketAcademic:
		return []Result{{
			Title:    "Academic index: " + topic,
			Summary:  "Fallback academic search index when scholarly metadata is unavailable.",
			SourceID: "https://scholar.google.com/scholar?q=" + url.QueryEscape(topic),
			Source:   "Google Scholar",
		}}
	default:
		return OSINTGuidance(topic)[:1]
	}
}

// OSINTGuidance is the alternative-viewpoint checklist attached to the
// report root
func OSINTGuidance(topic string) []Result {
	return []Result{
		{
			Title:    "Independent analyses on " + topic,
			Summary:  "Check whether authors provide raw evidence, primary sources, and transparent methodology.",
			SourceID: searchLink(topic + " independent analysis"),
			Source:   "Independent newsletters and investigative blogs",
		},
		{
			Title:    "OSINT discussion threads about " + topic,
			Summary:  "Useful for chronology checks, geolocation, and media provenance verification.",
			SourceID: searchLink(topic + " osint discussion"),
			Source:   "Open-source intelligence communities",
		},
		{
			Title:    "Contrarian commentary clusters: " + topic,
			Summary:  "Use only with corroboration; identify where claims diverge from mainstream or primary-source evidence.",
			SourceID: searchLink(topic + " alternative viewpoint"),
			Source:   "Niche forums and alternative media",
		},
	}
}

func searchLink(q string) string {
	return "https://duckduckgo.com/?q=" + url.QueryEscape(q)
}
