// Package triangulate cross-checks claims against the mainstream, academic
// and alternative reference buckets.
package triangulate

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/ppiankov/newsintel/internal/lookup"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/validate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Resolver settles a query for one bucket, substituting guidance on failure
type Resolver interface {
	Resolve(ctx context.Context, query string, bucket model.Bucket) lookup.Outcome
}

// Triangulator fans lookups out over claim × bucket pairs
type Triangulator struct {
	resolver   Resolver
	authority  *validate.AuthorityClassifier
	workers    int
	maxResults int
}

// New creates a triangulator; authority nil uses the default tiers
func New(resolver Resolver, authority *validate.AuthorityClassifier, workers, maxResults int) *Triangulator {
	if authority == nil {
		authority = validate.NewAuthorityClassifier(nil)
	}
	if workers <= 0 {
		workers = 8
	}
	if maxResults <= 0 {
		maxResults = 4
	}
	return &Triangulator{resolver: resolver, authority: authority, workers: workers, maxResults: maxResults}
}

type task struct {
	query  string
	bucket model.Bucket
}

// Triangulate returns copies of claims with references attached (at least one
// per bucket, live or guidance) and the report-root OSINT guidance for topic.
// Identical queries are looked up once. Cancelling ctx turns pending lookups
// into guidance; it never yields a partial claim.
func (t *Triangulator) Triangulate(ctx context.Context, claims []model.Claim, topic string) ([]model.Claim, []model.Reference) {
	start := time.Now()

	index := make(map[task]int)
	var tasks []task
	queries := make([]string, len(claims))
	for i, c := range claims {
		queries[i] = Query(c)
		for _, b := range model.Buckets {
			k := task{query: queries[i], bucket: b}
			if _, ok := index[k]; !ok {
				index[k] = len(tasks)
				tasks = append(tasks, k)
			}
		}
	}

	outcomes := make([]lookup.Outcome, len(tasks))
	var g errgroup.Group
	g.SetLimit(t.workers)
	for i, tk := range tasks {
		g.Go(func() error {
			outcomes[i] = t.resolver.Resolve(ctx, tk.query, tk.bucket)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]model.Claim, len(claims))
	fallbacks := 0
	for i, c := range claims {
		refs := make([]model.Reference, 0, len(model.Buckets)*t.maxResults)
		for _, b := range model.Buckets {
			o := outcomes[index[task{query: queries[i], bucket: b}]]
			if o.Fallback {
				fallbacks++
			}
			refs = append(refs, t.references(c, queries[i], b, o)...)
		}
		c.References = refs
		out[i] = c
	}

	zap.L().Debug("triangulation complete",
		zap.Int("claims", len(claims)),
		zap.Int("lookups", len(tasks)),
		zap.Int("fallbacks", fallbacks),
		zap.Duration("took", time.Since(start)),
	)
	return out, t.rootGuidance(topic)
}

// references converts one outcome into the claim's references for a bucket,
// deduplicated by normalized title and capped; never empty
func (t *Triangulator) references(c model.Claim, query string, bucket model.Bucket, o lookup.Outcome) []model.Reference {
	results := o.Results
	if len(results) == 0 {
		results = lookup.Guidance(query, bucket)
		o.Fallback = true
		if o.Reason == "" {
			o.Reason = "no results"
		}
	}

	terms := c.Subjects
	if len(terms) == 0 {
		terms = strings.Fields(query)
	}

	seen := make(map[string]bool, len(results))
	refs := make([]model.Reference, 0, t.maxResults)
	for _, r := range results {
		key := NormalizeTitle(r.Title)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		ref := model.Reference{
			Bucket:    bucket,
			Title:     r.Title,
			Summary:   r.Summary,
			SourceID:  r.SourceID,
			Source:    r.Source,
			Authority: t.authority.Classify(r.SourceID),
			Query:     query,
			Fallback:  o.Fallback,
			Reason:    o.Reason,
		}
		switch {
		case o.Fallback:
			ref.Relevance = model.RelevanceGuidance
		case r.Relevance != "" && r.Relevance != model.RelevanceGuidance:
			ref.Relevance = r.Relevance
		default:
			ref.Relevance = Relevance(terms, r.Title+" "+r.Summary)
		}
		refs = append(refs, ref)
		if len(refs) == t.maxResults {
			break
		}
	}
	return refs
}

func (t *Triangulator) rootGuidance(topic string) []model.Reference {
	guidance := lookup.OSINTGuidance(topic)
	refs := make([]model.Reference, len(guidance))
	for i, g := range guidance {
		refs[i] = model.Reference{
			Bucket:    model.BucketAlternative,
			Title:     g.Title,
			Summary:   g.Summary,
			SourceID:  g.SourceID,
			Source:    g.Source,
			Relevance: model.RelevanceGuidance,
			Authority: t.authority.Classify(g.SourceID),
			Query:     topic,
		}
	}
	return refs
}

// Query is the lookup string for a claim: its subject terms, or the claim
// text when none were found
func Query(c model.Claim) string {
	if len(c.Subjects) > 0 {
		return strings.Join(c.Subjects, " ")
	}
	return strings.Join(strings.Fields(strings.TrimRight(c.Text, ".!?")), " ")
}

// NormalizeTitle lowercases a title and reduces it to letters and digits
// separated by single spaces
func NormalizeTitle(title string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}
