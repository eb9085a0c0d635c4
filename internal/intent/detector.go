// Package intent classifies the rhetorical purpose of a text and flags
// manipulation patterns from lexical cue density.
package intent

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/newsintel/internal/lexicon"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/text"
	"go.uber.org/zap"
)

// Detector scans the whole input for intent and manipulation cues
type Detector struct {
	lex           *lexicon.Lexicon
	densityScale  float64
	flagThreshold int
}

// NewDetector creates a detector
func NewDetector(lex *lexicon.Lexicon, cfg model.IntentConfig) *Detector {
	if lex == nil {
		lex = lexicon.Default()
	}
	if cfg.DensityScale <= 0 {
		cfg.DensityScale = 60
	}
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = 25
	}
	return &Detector{lex: lex, densityScale: cfg.DensityScale, flagThreshold: cfg.FlagThreshold}
}

var categories = []model.Intent{
	model.IntentPolitical,
	model.IntentPR,
	model.IntentEmotionalManipulation,
	model.IntentPersuasion,
}

// Detect never fails: any panic during the scan yields the neutral profile
func (d *Detector) Detect(in *text.Normalized, claims []model.Claim) (profile model.IntentProfile) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("intent scan failed, defaulting to neutral", zap.Any("panic", r))
			profile = model.NeutralProfile()
		}
	}()
	return d.scan(in, claims)
}

func (d *Detector) scan(in *text.Normalized, claims []model.Claim) model.IntentProfile {
	sentences := len(in.Sentences)
	if sentences == 0 {
		sentences = 1
	}

	scores := make(map[model.Intent]int, len(categories)+1)
	matched := make(map[model.Intent][]string, len(categories))
	top := 0
	for _, cat := range categories {
		hits := d.lex.IntentMatcher(string(cat)).FindAll(in.Text)
		matched[cat] = hits
		scores[cat] = Confidence(len(hits), sentences, d.densityScale)
		if scores[cat] > top {
			top = scores[cat]
		}
	}
	scores[model.IntentNeutral] = 100 - top

	dominant := Dominant(scores)
	return model.IntentProfile{
		Dominant:   dominant,
		Confidence: scores[dominant],
		Reason:     reason(dominant, lexicon.Distinct(matched[dominant]), sentences),
		Scores:     scores,
		Flags:      d.flags(in, claims, sentences),
	}
}

func (d *Detector) flags(in *text.Normalized, claims []model.Claim, sentences int) []model.PatternFlag {
	flags := []model.PatternFlag{}
	for _, p := range model.Patterns {
		hits := d.lex.PatternMatcher(string(p)).FindAll(in.Text)
		count := len(hits)
		if p == model.PatternUnsupportedAssertions {
			unsupported := d.unsupportedClaims(claims)
			count += unsupported
			if unsupported > 0 {
				hits = append(hits, fmt.Sprintf("%d claim(s) without attribution", unsupported))
			}
		}
		conf := Confidence(count, sentences, d.densityScale)
		if count > 0 && conf > d.flagThreshold {
			flags = append(flags, model.PatternFlag{
				Pattern:    p,
				CueCount:   count,
				Confidence: conf,
				Cues:       lexicon.Distinct(hits),
			})
		}
	}
	return flags
}

// unsupportedClaims counts asserted claims with no attribution, named source
// or evidence wording
func (d *Detector) unsupportedClaims(claims []model.Claim) int {
	n := 0
	for _, c := range claims {
		if c.Heuristic == model.HeuristicPresupposition {
			continue
		}
		if model.CountCues(c.Cues, model.CueAttribution) > 0 || model.CountCues(c.Cues, model.CueNamedSource) > 0 {
			continue
		}
		if d.lex.Evidence().Contains(c.Text) {
			continue
		}
		n++
	}
	return n
}

// Confidence = min(100, round(matches / sentences × scale)); monotonic in matches
func Confidence(matches, sentences int, scale float64) int {
	if matches <= 0 {
		return 0
	}
	if sentences <= 0 {
		sentences = 1
	}
	v := math.Round(float64(matches) / float64(sentences) * scale)
	return int(math.Min(100, v))
}

// Dominant picks the highest score, breaking ties by model.IntentPriority
func Dominant(scores map[model.Intent]int) model.Intent {
	best := model.IntentNeutral
	bestScore := -1
	for _, in := range model.IntentPriority {
		if s, ok := scores[in]; ok && s > bestScore {
			best, bestScore = in, s
		}
	}
	return best
}

func reason(dominant model.Intent, cues []string, sentences int) string {
	quoted := strings.Join(cues, ", ")
	switch dominant {
	case model.IntentPolitical:
		return fmt.Sprintf("Narrative centers political actors or outcomes (%s) across %d sentence(s) and likely seeks opinion shaping.", quoted, sentences)
	case model.IntentPR:
		return fmt.Sprintf("Narrative emphasizes image enhancement and positive brand framing (%s).", quoted)
	case model.IntentEmotionalManipulation:
		return fmt.Sprintf("Emotion-heavy wording (%s) can pressure judgment over evidence review.", quoted)
	case model.IntentPersuasion:
		return fmt.Sprintf("Direct calls to action (%s) indicate behavior or belief influence intent.", quoted)
	default:
		return "Narrative is primarily descriptive without strong directional agenda markers."
	}
}
