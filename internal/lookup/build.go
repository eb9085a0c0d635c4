package lookup

import (
	"github.com/ppiankov/newsintel/internal/cache"
	"github.com/ppiankov/newsintel/internal/model"
)

// NewLive assembles the live router from configuration: Wikipedia for the
// mainstream bucket, Crossref for academic, the feed search for alternative.
// Each backend is retried, then cached. Returns nil when lookups are disabled.
func NewLive(cfg *model.Config, store cache.Cache) Lookup {
	if !cfg.Lookup.Enabled {
		return nil
	}
	client := NewClient(cfg.HTTP, cfg.RateLimiting)
	n := cfg.Lookup.MaxResults

	wrap := func(l Lookup) Lookup {
		return WithCache(WithRetry(l, cfg.Lookup.MaxAttempts), store, 0)
	}

	router := Router{}
	if cfg.Lookup.WikipediaURL != "" {
		router[model.BucketMainstream] = wrap(NewWikipediaLookup(client, cfg.Lookup.WikipediaURL, n))
	}
	if cfg.Lookup.CrossrefURL != "" {
		router[model.BucketAcademic] = wrap(NewCrossrefLookup(client, cfg.Lookup.CrossrefURL, n))
	}
	if cfg.Lookup.FeedURLTemplate != "" {
		router[model.BucketAlternative] = wrap(NewFeedLookup(client, cfg.Lookup.FeedURLTemplate, n))
	}
	return router
}

// NewPolicyFromConfig builds the fallback policy around NewLive
func NewPolicyFromConfig(cfg *model.Config, store cache.Cache) *Policy {
	return NewPolicy(NewLive(cfg, store), cfg.Lookup.Timeout, cfg.Lookup.MaxResults)
}
