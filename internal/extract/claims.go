package extract

import (
	"fmt"
	"strings"

	"github.com/ppiankov/newsintel/internal/lexicon"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/text"
)

const (
	maxFallbackRunes = 280
	maxKeywords      = 4
)

// ClaimExtractor segments normalized text into candidate claims
type ClaimExtractor struct {
	lex              *lexicon.Lexicon
	maxClaims        int
	minWords         int
	opinionThreshold float64
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor(lex *lexicon.Lexicon, cfg model.ExtractConfig) *ClaimExtractor {
	if lex == nil {
		lex = lexicon.Default()
	}
	if cfg.MaxClaims <= 0 {
		cfg.MaxClaims = 15
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = 4
	}
	if cfg.OpinionThreshold <= 0 {
		cfg.OpinionThreshold = 0.12
	}
	return &ClaimExtractor{
		lex:              lex,
		maxClaims:        cfg.MaxClaims,
		minWords:         cfg.MinWords,
		opinionThreshold: cfg.OpinionThreshold,
	}
}

type candidate struct {
	index     int
	sentence  text.Sentence
	heuristic string
	words     int
}

// Extract returns at least one claim for any normalized input. Claims are
// typed, tagged with cues and subjects, and numbered c1..cN in text order.
func (e *ClaimExtractor) Extract(in *text.Normalized, topic string) []model.Claim {
	if in.Unreadable {
		c := e.synthetic(in, topic)
		c.ID = "c1"
		c.Subjects = []string{}
		return []model.Claim{c}
	}

	var assertive, short []candidate
	for i, s := range in.Sentences {
		if text.IsQuestionSentence(s.Text) || e.isFiller(s.Text) {
			continue
		}
		h := e.heuristic(s.Text)
		if h == "" {
			continue
		}
		c := candidate{index: i, sentence: s, heuristic: h, words: len(text.Words(s.Text))}
		if c.words >= e.minWords {
			assertive = append(assertive, c)
		} else {
			short = append(short, c)
		}
	}
	if len(assertive) == 0 {
		assertive = short
	}

	var claims []model.Claim
	for _, c := range assertive {
		claims = append(claims, e.build(c.sentence.Text, model.Span{
			Sentence: c.index,
			Start:    c.sentence.Start,
			End:      c.sentence.End,
		}, c.heuristic))
	}
	claims = dedupeClaims(claims)

	if len(claims) == 0 {
		claims = []model.Claim{e.synthetic(in, topic)}
	}
	if len(claims) > e.maxClaims {
		claims = claims[:e.maxClaims]
	}
	for i := range claims {
		claims[i].ID = fmt.Sprintf("c%d", i+1)
	}
	return claims
}

// heuristic names the first rule that makes a sentence checkable, "" if none
func (e *ClaimExtractor) heuristic(sentence string) string {
	if q := e.lex.Quantities().First(sentence); q != "" {
		return "numeric:" + q
	}
	if loc := numberRe.FindString(sentence); loc != "" {
		return "numeric:" + loc
	}
	if c := e.lex.Causal().First(sentence); c != "" {
		return "causal:" + c
	}
	if ents := e.entities(sentence); len(ents) > 0 {
		return "entity:" + ents[0]
	}
	if v := e.lex.AssertionVerbs().First(sentence); v != "" {
		return "assertion:" + v
	}
	return ""
}

// isFiller skips greetings, interjections and short exclamations
func (e *ClaimExtractor) isFiller(sentence string) bool {
	words := len(text.Words(sentence))
	if words == 0 {
		return true
	}
	covered := 0
	for _, f := range e.lex.Filler().FindAll(sentence) {
		covered += len(text.Words(f))
	}
	if covered >= words {
		return true
	}
	return strings.HasSuffix(sentence, "!") && words < 3
}

func (e *ClaimExtractor) build(sentence string, span model.Span, heuristic string) model.Claim {
	cues := e.Cues(sentence)
	return model.Claim{
		Text:      sentence,
		Span:      span,
		Type:      e.classify(sentence, cues),
		Heuristic: heuristic,
		Subjects:  e.subjects(sentence),
		Cues:      cues,
	}
}

// synthetic covers inputs with no checkable sentence: the presupposition of a
// question, or the whole input as one minimal factual claim
func (e *ClaimExtractor) synthetic(in *text.Normalized, topic string) model.Claim {
	if in.Kind == model.InputQuestion {
		subjects := e.keywords(topic)
		if topic == text.DefaultTopic {
			subjects = []string{}
		}
		return model.Claim{
			Text:      in.Text,
			Span:      model.Span{Sentence: -1, Start: 0, End: len(in.Text)},
			Type:      model.ClaimTypeFactual,
			Heuristic: model.HeuristicPresupposition,
			Subjects:  subjects,
			Cues:      e.Cues(in.Text),
			Synthetic: true,
		}
	}

	body := in.Text
	if r := []rune(body); len(r) > maxFallbackRunes {
		body = string(r[:maxFallbackRunes])
	}
	return model.Claim{
		Text:      body,
		Span:      model.Span{Sentence: -1, Start: 0, End: len(in.Text)},
		Type:      model.ClaimTypeFactual,
		Heuristic: model.HeuristicWholeInput,
		Subjects:  e.keywords(body),
		Cues:      []model.Cue{},
		Synthetic: true,
	}
}

// classify applies the type precedence:
// statistical > causal > attribution > prediction > opinion > factual
func (e *ClaimExtractor) classify(sentence string, cues []model.Cue) model.ClaimType {
	if model.CountCues(cues, model.CuePercent) > 0 {
		return model.ClaimTypeStatistical
	}
	if e.lex.Causal().Contains(sentence) {
		return model.ClaimTypeCausal
	}
	if e.lex.ReportingVerbs().Contains(sentence) && e.attributedSource(sentence, cues) {
		return model.ClaimTypeAttribution
	}
	if e.lex.Future().Contains(sentence) {
		return model.ClaimTypePrediction
	}
	if words := len(text.Words(sentence)); words > 0 {
		density := float64(e.lex.Subjective().Count(sentence)) / float64(words)
		if density > e.opinionThreshold {
			return model.ClaimTypeOpinion
		}
	}
	return model.ClaimTypeFactual
}

func (e *ClaimExtractor) attributedSource(sentence string, cues []model.Cue) bool {
	if strings.Count(sentence, `"`) >= 2 {
		return true
	}
	return model.CountCues(cues, model.CueAttribution) > 0 ||
		model.CountCues(cues, model.CueNamedSource) > 0 ||
		model.CountCues(cues, model.CueEntity) > 0
}

// subjects returns named entities in order, or the leading content words when
// the sentence names nothing
func (e *ClaimExtractor) subjects(sentence string) []string {
	if ents := e.entities(sentence); len(ents) > 0 {
		return ents
	}
	return e.keywords(sentence)
}

func (e *ClaimExtractor) keywords(s string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, w := range text.Words(strings.ToLower(s)) {
		if len([]rune(w)) < 4 || e.lex.IsStopword(w) || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

// dedupeClaims removes duplicate claims
func dedupeClaims(claims []model.Claim) []model.Claim {
	seen := make(map[string]bool)
	var unique []model.Claim

	for _, claim := range claims {
		key := strings.ToLower(strings.TrimSpace(claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
