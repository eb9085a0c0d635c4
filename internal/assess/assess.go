// Package assess scores claims for specificity and independent verifiability.
//
// Both scores are weighted sums of cue counts clipped to [0,100]. Nothing here
// performs I/O; a claim's scores depend only on its own cues.
package assess

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/newsintel/internal/model"
)

// Assessor applies the specificity and verifiability weights
type Assessor struct {
	weights model.ScoringConfig
}

// NewAssessor creates an assessor with the given weights
func NewAssessor(weights model.ScoringConfig) *Assessor {
	return &Assessor{weights: weights}
}

// Assess returns a scored copy of every claim
func (a *Assessor) Assess(claims []model.Claim) []model.Claim {
	out := make([]model.Claim, len(claims))
	for i, c := range claims {
		out[i] = a.AssessClaim(c)
	}
	return out
}

// AssessClaim scores one claim and fills its rationale
func (a *Assessor) AssessClaim(c model.Claim) model.Claim {
	c.Specificity = Specificity(c.Cues, a.weights)
	if c.Heuristic == model.HeuristicWholeInput {
		c.Specificity = 0
	}
	c.Verifiability = Verifiability(c.Cues, a.weights)
	c.Rationale = Rationale(c)
	return c
}

// Specificity = number·n + percent·p + date·d + entity·e + named_source·s, clipped to [0,100]
func Specificity(cues []model.Cue, w model.ScoringConfig) int {
	sum := w.NumberWeight*float64(model.CountCues(cues, model.CueNumber)) +
		w.PercentWeight*float64(model.CountCues(cues, model.CuePercent)) +
		w.DateWeight*float64(model.CountCues(cues, model.CueDate)) +
		w.EntityWeight*float64(model.CountCues(cues, model.CueEntity)) +
		w.NamedSourceWeight*float64(model.CountCues(cues, model.CueNamedSource))
	return Clip(sum)
}

// Verifiability = base + attribution·a + source·s + number·n − hedge·h, clipped to [0,100]
func Verifiability(cues []model.Cue, w model.ScoringConfig) int {
	sum := w.VerifiabilityBase +
		w.AttributionWeight*float64(model.CountCues(cues, model.CueAttribution)) +
		w.SourceVerifiabilityBonus*float64(model.CountCues(cues, model.CueNamedSource)) +
		w.NumberVerifiabilityBonus*float64(model.CountCues(cues, model.CueNumber)) -
		w.HedgePenalty*float64(model.CountCues(cues, model.CueHedge))
	return Clip(sum)
}

// Clip rounds and bounds a raw score to [0,100]
func Clip(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

// Rationale explains a scored claim in one templated sentence pair; every
// clause maps to a cue count
func Rationale(c model.Claim) string {
	var b strings.Builder

	anchors := model.CountCues(c.Cues, model.CueNumber) + model.CountCues(c.Cues, model.CueDate) +
		model.CountCues(c.Cues, model.CueEntity) + model.CountCues(c.Cues, model.CueNamedSource)
	if c.Specificity >= 40 {
		fmt.Fprintf(&b, "The claim is specific: it includes %d concrete anchor(s) (numbers, dates, names or sources).", anchors)
	} else if anchors > 0 {
		fmt.Fprintf(&b, "The claim is only partly specific: %d concrete anchor(s) found.", anchors)
	} else {
		b.WriteString("The claim is vague: it lacks concrete anchors (time, place, data).")
	}

	attribution := cueMatches(c.Cues, model.CueAttribution)
	hedges := cueMatches(c.Cues, model.CueHedge)
	switch {
	case len(attribution) > 0 && len(hedges) > 0:
		fmt.Fprintf(&b, " Evidence is referenced (%s) but hedged (%s)", strings.Join(attribution, ", "), strings.Join(hedges, ", "))
	case len(attribution) > 0:
		fmt.Fprintf(&b, " Evidence is referenced (%s)", strings.Join(attribution, ", "))
	case len(hedges) > 0:
		fmt.Fprintf(&b, " Evidence is not explicit and the wording is hedged (%s)", strings.Join(hedges, ", "))
	default:
		b.WriteString(" Evidence is not explicit")
	}
	fmt.Fprintf(&b, ", so independent checking potential is %s.", strings.ToLower(model.VerifiabilityBand(c.Verifiability)))
	return b.String()
}

func cueMatches(cues []model.Cue, kind model.CueKind) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range cues {
		if c.Kind == kind && !seen[c.Match] {
			seen[c.Match] = true
			out = append(out, c.Match)
		}
	}
	return out
}
