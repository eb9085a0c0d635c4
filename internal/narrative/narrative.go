// Package narrative turns scores and flags into the report's verdict,
// assessment text and follow-up questions.
//
// Every sentence comes from a fixed template library. A template is selected
// by a score band or an active flag, never generated.
package narrative

import (
	"fmt"
	"strings"

	"github.com/ppiankov/newsintel/internal/model"
)

// Verdict labels
const (
	VerdictFactual    = "Likely factual reporting"
	VerdictPR         = "Likely PR or reputation management"
	VerdictPropaganda = "Likely propaganda"
	VerdictMisleading = "Likely misleading or unreliable"
)

// VerdictRules holds the verdict cut-offs
type VerdictRules struct {
	PropagandaPR          int // Political intent at or above this PR probability
	PropagandaObjectivity int // Political intent below this objectivity
	FactualReliability    int
	FactualObjectivity    int
	FactualMaxPR          int // Factual only below this PR probability
	PRFloor               int // Any intent at or above this PR probability
}

// DefaultVerdictRules returns the stock cut-offs
func DefaultVerdictRules() VerdictRules {
	return VerdictRules{
		PropagandaPR:          45,
		PropagandaObjectivity: 95,
		FactualReliability:    72,
		FactualObjectivity:    68,
		FactualMaxPR:          45,
		PRFloor:               70,
	}
}

// Verdict selects a label; directional intent is checked before the factual band
func Verdict(s model.ScoreSet, dominant model.Intent, r VerdictRules) string {
	switch {
	case dominant == model.IntentPolitical && (s.PRProbability >= r.PropagandaPR || s.Objectivity < r.PropagandaObjectivity):
		return VerdictPropaganda
	case dominant == model.IntentPR:
		return VerdictPR
	case s.FactualReliability >= r.FactualReliability && s.Objectivity >= r.FactualObjectivity && s.PRProbability < r.FactualMaxPR:
		return VerdictFactual
	case s.PRProbability >= r.PRFloor:
		return VerdictPR
	default:
		return VerdictMisleading
	}
}

var findingText = map[model.Pattern]string{
	model.PatternOneSidedFraming:       "One-sided framing: absolute language indicates potential overgeneralization.",
	model.PatternHeroVillainFraming:    "Hero/villain framing: binary moral narrative may suppress nuance.",
	model.PatternEmotionalPressure:     "Emotional pressure: highly charged phrasing may displace evidence-led evaluation.",
	model.PatternUnsupportedAssertions: "Unsupported assertions risk: limited traceable sourcing cues in the text.",
}

// NoPatternFinding is reported when no manipulation flag fired
const NoPatternFinding = "No dominant manipulation pattern detected from text alone; external source checks still required."

// Findings lists one sentence per fired flag, in flag order
func Findings(p model.IntentProfile) []string {
	out := make([]string, 0, len(p.Flags))
	for _, f := range p.Flags {
		if s, ok := findingText[f.Pattern]; ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{NoPatternFinding}
	}
	return out
}

// Assessment builds the final assessment paragraph
func Assessment(verdict string, s model.ScoreSet, p model.IntentProfile, claims []model.Claim) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s (risk: %s).", verdict, s.Risk))

	switch {
	case s.FactualReliability >= 70:
		parts = append(parts, "Claims carry concrete anchors and traceable sourcing, so they can be checked independently.")
	case s.FactualReliability >= 45:
		parts = append(parts, "Claims are partly checkable; some lack attribution or corroborating references.")
	default:
		parts = append(parts, "Claims are weakly supported: few anchors, little attribution and no corroborating references.")
	}

	switch {
	case s.Objectivity >= 85:
		parts = append(parts, "Framing is largely descriptive.")
	case s.Objectivity >= 60:
		parts = append(parts, "Framing shows some directional or subjective language.")
	default:
		parts = append(parts, "Framing is strongly directional and displaces neutral description.")
	}

	if s.PRProbability >= 50 {
		parts = append(parts, "Intent and framing markers point to a promotional or agenda-driven narrative.")
	}
	if p.Dominant != model.IntentNeutral && p.Confidence > 0 {
		parts = append(parts, fmt.Sprintf("Dominant intent is %s at %d%% confidence.", strings.ReplaceAll(string(p.Dominant), "_", " "), p.Confidence))
	}
	if p.Degraded {
		parts = append(parts, "Intent scan was unavailable, so intent defaulted to neutral.")
	}
	for _, f := range Findings(p) {
		if f != NoPatternFinding {
			parts = append(parts, f)
		}
	}
	if allFallback(claims) {
		parts = append(parts, "No live references were retrieved; the listed guidance entries are starting points for manual checks.")
	}
	parts = append(parts, "This assessment measures support and framing, not truth.")
	return strings.Join(parts, " ")
}

var baseQuestions = []string{
	"What primary evidence (documents, datasets, official statements, or raw media) supports each major claim?",
	"Which independent sources outside the original narrative ecosystem confirm or challenge these claims?",
	"Who benefits materially, politically, or reputationally if this narrative is accepted?",
	"Are there chronology gaps, context omissions, or attribution ambiguities affecting interpretation?",
	"Which claim can be falsified fastest, and what test would disprove it?",
}

// FollowUps returns the base questions plus those triggered by the claims and flags.
// The result is never empty.
func FollowUps(topic string, kind model.InputKind, claims []model.Claim, p model.IntentProfile) []string {
	out := append([]string(nil), baseQuestions...)

	if kind == model.InputQuestion {
		out = append(out, fmt.Sprintf("What observation or dataset would settle '%s', and who has collected it?", topic))
	}
	if len(claims) > 1 {
		out = append(out, fmt.Sprintf("For '%s', which extracted claim has the strongest evidence chain and which has the weakest?", topic))
	}
	if weakest := weakestClaim(claims); weakest != nil && weakest.Verifiability < 45 && !weakest.Synthetic {
		out = append(out, fmt.Sprintf("Who originally made the claim %q, and where can it be traced?", weakest.Text))
	}
	if len(p.Flags) > 1 {
		out = append(out, "Which statements rely more on framing/emotion than directly verifiable facts?")
	}
	if p.HasFlag(model.PatternUnsupportedAssertions) {
		out = append(out, "Which assertions would change if a named source or dataset were required for each?")
	}
	if p.Dominant == model.IntentPR || p.Dominant == model.IntentPolitical {
		out = append(out, "Who commissioned or distributed this text, and what do they gain from its reception?")
	}
	if allFallback(claims) {
		out = append(out, "Which archives or databases could answer the open lookups that returned no live results?")
	}
	return out
}

func weakestClaim(claims []model.Claim) *model.Claim {
	var w *model.Claim
	for i := range claims {
		if w == nil || claims[i].Verifiability < w.Verifiability {
			w = &claims[i]
		}
	}
	return w
}

// allFallback reports whether no claim received a corroborating reference
func allFallback(claims []model.Claim) bool {
	if len(claims) == 0 {
		return false
	}
	for _, c := range claims {
		for _, r := range c.References {
			if r.Corroborates() {
				return false
			}
		}
	}
	return true
}
