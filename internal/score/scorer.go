package score

import (
	"fmt"

	"github.com/ppiankov/newsintel/internal/assess"
	"github.com/ppiankov/newsintel/internal/model"
)

// Objectivity = 100 − flag·flags − opinion·opinion_ratio − intent·(conf/100 when not neutral)
func Objectivity(f Features, w model.ScoringConfig) int {
	v := 100 -
		w.FlagPenalty*float64(f.FlagCount) -
		w.OpinionRatioPenalty*f.OpinionRatio -
		w.IntentPenalty*float64(f.IntentConfidence)/100
	return assess.Clip(v)
}

// Reliability = share·avg_verifiability + corroboration·ratio + supported·(1 − unsupported)
func Reliability(f Features, w model.ScoringConfig) int {
	v := w.VerifiabilityShare*f.AvgVerifiability + w.CorroborationBonus*f.Corroboration
	if !f.Unsupported {
		v += w.SupportedBonus
	}
	return assess.Clip(v)
}

// PRProbability = share·max(pr, political) + one_sided + hero_villain + low_diversity·(1 − diversity)
func PRProbability(f Features, w model.ScoringConfig) int {
	v := w.IntentShare*float64(f.PRIntent) + w.LowDiversityWeight*(1-f.Diversity)
	if f.OneSided {
		v += w.OneSidedWeight
	}
	if f.HeroVillain {
		v += w.HeroVillainWeight
	}
	return assess.Clip(v)
}

// Risk derives the label from the score triple alone. Moderate marks an
// objectivity at or below one flag's worth of penalty, the level any fired
// manipulation pattern produces. With no flag penalty configured objectivity
// never leaves 100, so moderate is unreachable.
func Risk(objectivity, reliability, pr int, w model.ScoringConfig) model.RiskLabel {
	switch {
	case pr >= w.CriticalPR || reliability < w.CriticalReliability:
		return model.RiskCritical
	case pr >= w.HighPR || reliability < w.HighReliability:
		return model.RiskHigh
	case w.FlagPenalty > 0 && float64(objectivity) <= 100-w.FlagPenalty:
		return model.RiskModerate
	default:
		return model.RiskLow
	}
}

// Scorer computes the ScoreSet with a signal per component
type Scorer struct {
	weights model.ScoringConfig
}

// NewScorer creates a scorer with the given weights
func NewScorer(weights model.ScoringConfig) *Scorer {
	return &Scorer{weights: weights}
}

// Calculate scores the assessed, triangulated claims against the profile
func (s *Scorer) Calculate(claims []model.Claim, profile model.IntentProfile) model.ScoreSet {
	f := Extract(claims, profile)
	w := s.weights

	set := model.ScoreSet{
		Objectivity:        Objectivity(f, w),
		FactualReliability: Reliability(f, w),
		PRProbability:      PRProbability(f, w),
	}
	set.Risk = Risk(set.Objectivity, set.FactualReliability, set.PRProbability, w)

	set.Signals = []model.Signal{
		s.objectivitySignal(f, set.Objectivity),
		s.reliabilitySignal(f, set.FactualReliability),
		s.prSignal(f, set.PRProbability),
		corroborationSignal(f),
	}
	if f.Fallbacks > 0 {
		set.Signals = append(set.Signals, fallbackSignal(f))
	}
	for _, flag := range profile.Flags {
		set.Signals = append(set.Signals, manipulationSignal(flag))
	}
	return set
}

func (s *Scorer) objectivitySignal(f Features, score int) model.Signal {
	return model.Signal{
		Type:        model.SignalObjectivity,
		Severity:    severityHighGood(score),
		Description: fmt.Sprintf("Objectivity %d: %d manipulation flag(s), %.0f%% opinion claims, %s intent", score, f.FlagCount, f.OpinionRatio*100, f.Intent),
		Data: map[string]interface{}{
			"flags":             f.FlagCount,
			"opinion_ratio":     f.OpinionRatio,
			"intent":            string(f.Intent),
			"intent_confidence": f.IntentConfidence,
			"score":             score,
			"formula":           fmt.Sprintf("100 - %g*flags - %g*opinion_ratio - %g*intent_confidence/100", s.weights.FlagPenalty, s.weights.OpinionRatioPenalty, s.weights.IntentPenalty),
		},
	}
}

func (s *Scorer) reliabilitySignal(f Features, score int) model.Signal {
	return model.Signal{
		Type:        model.SignalReliability,
		Severity:    severityHighGood(score),
		Description: fmt.Sprintf("Factual reliability %d: average verifiability %.0f, %.0f%% of claims corroborated", score, f.AvgVerifiability, f.Corroboration*100),
		Data: map[string]interface{}{
			"avg_verifiability":   f.AvgVerifiability,
			"corroboration_ratio": f.Corroboration,
			"unsupported_flag":    f.Unsupported,
			"score":               score,
			"formula":             fmt.Sprintf("%g*avg_verifiability + %g*corroboration_ratio + %g*(1 - unsupported)", s.weights.VerifiabilityShare, s.weights.CorroborationBonus, s.weights.SupportedBonus),
		},
	}
}

func (s *Scorer) prSignal(f Features, score int) model.Signal {
	severity := model.SeverityInfo
	if score >= s.weights.CriticalPR {
		severity = model.SeverityCritical
	} else if score >= s.weights.HighPR {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalPRProbability,
		Severity:    severity,
		Description: fmt.Sprintf("PR/propaganda probability %d: promotional or political intent %d, reference diversity %.2f", score, f.PRIntent, f.Diversity),
		Data: map[string]interface{}{
			"pr_intent":    f.PRIntent,
			"one_sided":    f.OneSided,
			"hero_villain": f.HeroVillain,
			"diversity":    f.Diversity,
			"score":        score,
			"formula":      fmt.Sprintf("%g*max(pr, political) + %g*one_sided + %g*hero_villain + %g*(1 - diversity)", s.weights.IntentShare, s.weights.OneSidedWeight, s.weights.HeroVillainWeight, s.weights.LowDiversityWeight),
		},
	}
}

func corroborationSignal(f Features) model.Signal {
	severity := model.SeverityInfo
	if f.Corroboration == 0 {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalCorroboration,
		Severity:    severity,
		Description: fmt.Sprintf("%.0f%% of claims have a relevant mainstream or academic reference", f.Corroboration*100),
		Data: map[string]interface{}{
			"claims":    f.Claims,
			"ratio":     f.Corroboration,
			"diversity": f.Diversity,
		},
	}
}

func fallbackSignal(f Features) model.Signal {
	severity := model.SeverityInfo
	if f.Fallbacks == f.Lookups {
		severity = model.SeverityWarning
	}
	return model.Signal{
		Type:        model.SignalReferenceFallback,
		Severity:    severity,
		Description: fmt.Sprintf("%d/%d reference lookups degraded to search guidance", f.Fallbacks, f.Lookups),
		Data: map[string]interface{}{
			"fallbacks": f.Fallbacks,
			"lookups":   f.Lookups,
		},
	}
}

func manipulationSignal(flag model.PatternFlag) model.Signal {
	severity := model.SeverityWarning
	if flag.Confidence >= 75 {
		severity = model.SeverityCritical
	}
	return model.Signal{
		Type:        model.SignalManipulation,
		Severity:    severity,
		Description: fmt.Sprintf("Manipulation pattern %s (confidence %d)", flag.Pattern, flag.Confidence),
		Data: map[string]interface{}{
			"pattern":    string(flag.Pattern),
			"cue_count":  flag.CueCount,
			"confidence": flag.Confidence,
			"cues":       flag.Cues,
		},
	}
}

func severityHighGood(score int) model.SignalSeverity {
	switch {
	case score < 25:
		return model.SeverityCritical
	case score < 50:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
