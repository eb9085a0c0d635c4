// Package pipeline wires the analysis stages into one request-scoped call.
package pipeline

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/newsintel/internal/assess"
	"github.com/ppiankov/newsintel/internal/cache"
	"github.com/ppiankov/newsintel/internal/extract"
	"github.com/ppiankov/newsintel/internal/intent"
	"github.com/ppiankov/newsintel/internal/lexicon"
	"github.com/ppiankov/newsintel/internal/lookup"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/narrative"
	"github.com/ppiankov/newsintel/internal/score"
	"github.com/ppiankov/newsintel/internal/text"
	"github.com/ppiankov/newsintel/internal/triangulate"
	"github.com/ppiankov/newsintel/internal/validate"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyInput is returned by Analyze for empty or whitespace-only input
var ErrEmptyInput = text.ErrEmptyInput

// Engine runs normalize → extract → assess → {intent ∥ triangulate} → score → narrative.
// It holds only read-only tables and clients, so one Engine serves concurrent calls.
type Engine struct {
	normalizer   *text.Normalizer
	extractor    *extract.ClaimExtractor
	assessor     *assess.Assessor
	detector     *intent.Detector
	triangulator *triangulate.Triangulator
	links        *validate.LinkChecker
	scorer       *score.Scorer
	rules        narrative.VerdictRules
	fetcher      *Fetcher
	now          func() time.Time
	newID        func() string
}

// Option customizes an Engine
type Option func(*engineOptions)

type engineOptions struct {
	resolver triangulate.Resolver
	fetcher  *Fetcher
	now      func() time.Time
	newID    func() string
}

// WithResolver replaces the configured lookup policy
func WithResolver(r triangulate.Resolver) Option {
	return func(o *engineOptions) { o.resolver = r }
}

// WithFetcher replaces the configured article fetcher
func WithFetcher(f *Fetcher) Option {
	return func(o *engineOptions) { o.fetcher = f }
}

// WithClock fixes the report timestamp and ID source
func WithClock(now func() time.Time, newID func() string) Option {
	return func(o *engineOptions) { o.now, o.newID = now, newID }
}

// NewEngine builds an engine from configuration. The only error source is a
// broken lexicon override file.
func NewEngine(cfg *model.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	o := engineOptions{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}

	lex, err := lexicon.Load(cfg.LexiconFile)
	if err != nil {
		return nil, eris.Wrap(err, "load lexicon")
	}
	if o.resolver == nil {
		o.resolver = lookup.NewPolicyFromConfig(cfg, cache.New(cfg.Cache))
	}
	if o.fetcher == nil {
		o.fetcher = NewFetcherFromConfig(cfg.HTTP, cfg.RateLimiting)
	}

	e := &Engine{
		normalizer:   text.NewNormalizer(lex),
		extractor:    extract.NewClaimExtractor(lex, cfg.Extract),
		assessor:     assess.NewAssessor(cfg.Scoring),
		detector:     intent.NewDetector(lex, cfg.Intent),
		triangulator: triangulate.New(o.resolver, validate.NewAuthorityClassifier(&cfg.Authority), cfg.Concurrency.LookupWorkers, cfg.Lookup.MaxResults),
		scorer:       score.NewScorer(cfg.Scoring),
		rules:        narrative.DefaultVerdictRules(),
		fetcher:      o.fetcher,
		now:          o.now,
		newID:        o.newID,
	}
	if cfg.Lookup.CheckLinks {
		e.links = validate.NewLinkChecker(cfg.HTTP, cfg.Lookup.Timeout, cfg.Concurrency.LookupWorkers)
	}
	return e, nil
}

// Analyze produces a complete report for input. It fails only with
// ErrEmptyInput; every later stage degrades instead of failing.
func (e *Engine) Analyze(ctx context.Context, input string) (*model.AnalysisReport, error) {
	start := time.Now()

	norm, err := e.normalizer.Normalize(input)
	if err != nil {
		return nil, err
	}
	topic := e.normalizer.Topic(norm)

	claims := e.assessor.Assess(e.extractor.Extract(norm, topic))
	zap.L().Debug("claims extracted",
		zap.Int("sentences", len(norm.Sentences)),
		zap.Int("claims", len(claims)),
		zap.String("kind", string(norm.Kind)),
	)

	var (
		profile model.IntentProfile
		rootRef []model.Reference
		refined []model.Claim
	)
	var g errgroup.Group
	g.Go(func() error {
		profile = e.detector.Detect(norm, claims)
		return nil
	})
	g.Go(func() error {
		refined, rootRef = e.triangulator.Triangulate(ctx, claims, topic)
		if e.links != nil {
			refined = e.checkLinks(ctx, refined)
		}
		return nil
	})
	_ = g.Wait()

	scores := e.scorer.Calculate(refined, profile)
	verdict := narrative.Verdict(scores, profile.Dominant, e.rules)

	report := &model.AnalysisReport{
		ID:         e.newID(),
		Input:      model.AnalysisInput{Text: norm.Text, Kind: norm.Kind},
		Topic:      topic,
		AnalyzedAt: e.now().UTC(),
		Claims:     refined,
		References: rootRef,
		Intent:     profile,
		Scores:     scores,
		Verdict:    verdict,
		Assessment: narrative.Assessment(verdict, scores, profile, refined),
		FollowUps:  narrative.FollowUps(topic, norm.Kind, refined, profile),
		Findings:   narrative.Findings(profile),
		Principles: model.DefaultPrinciples(),
	}

	zap.L().Debug("analysis complete",
		zap.String("id", report.ID),
		zap.String("verdict", verdict),
		zap.String("risk", string(scores.Risk)),
		zap.Duration("took", time.Since(start)),
	)
	return report, nil
}

// AnalyzeURL fetches an article and analyzes its readable text
func (e *Engine) AnalyzeURL(ctx context.Context, rawURL string) (*model.AnalysisReport, error) {
	article, err := e.fetcher.FetchArticle(ctx, rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", rawURL)
	}

	input := article.Text
	if article.Title != "" && !strings.HasPrefix(input, article.Title) {
		input = article.Title + ".\n" + input
	}
	report, err := e.Analyze(ctx, input)
	if err != nil {
		return nil, eris.Wrapf(err, "analyze %s", rawURL)
	}
	report.SourceURL = article.URL
	report.SourceTitle = article.Title
	return report, nil
}

// AnalyzeSource treats http(s) URLs as articles and anything else as text
func (e *Engine) AnalyzeSource(ctx context.Context, source string) (*model.AnalysisReport, error) {
	if IsURL(source) {
		return e.AnalyzeURL(ctx, source)
	}
	return e.Analyze(ctx, source)
}

// checkLinks marks dead live links per claim; a dead link stops counting as corroboration
func (e *Engine) checkLinks(ctx context.Context, claims []model.Claim) []model.Claim {
	for i := range claims {
		claims[i].References = e.links.Check(ctx, claims[i].References)
	}
	return claims
}

// IsURL reports whether s is a single absolute http(s) URL
func IsURL(s string) bool {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
