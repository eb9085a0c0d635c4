package model

// Intent is the inferred rhetorical purpose of the whole text
type Intent string

const (
	IntentNeutral               Intent = "neutral"
	IntentPersuasion            Intent = "persuasion"
	IntentPR                    Intent = "pr"
	IntentPolitical             Intent = "political"
	IntentEmotionalManipulation Intent = "emotional_manipulation"
)

// IntentPriority is the tie-break order, highest priority first
var IntentPriority = []Intent{
	IntentPolitical,
	IntentPR,
	IntentEmotionalManipulation,
	IntentPersuasion,
	IntentNeutral,
}

// Pattern is a manipulation technique detected via lexical cues
type Pattern string

const (
	PatternEmotionalPressure     Pattern = "emotional_pressure"
	PatternOneSidedFraming       Pattern = "one_sided_framing"
	PatternHeroVillainFraming    Pattern = "hero_villain_framing"
	PatternUnsupportedAssertions Pattern = "unsupported_assertions"
)

// Patterns lists every manipulation pattern in report order
var Patterns = []Pattern{
	PatternEmotionalPressure,
	PatternOneSidedFraming,
	PatternHeroVillainFraming,
	PatternUnsupportedAssertions,
}

// PatternFlag is a fired manipulation pattern
type PatternFlag struct {
	Pattern    Pattern  `json:"pattern"`
	CueCount   int      `json:"cue_count"`
	Confidence int      `json:"confidence"`
	Cues       []string `json:"cues,omitempty"` // Distinct matched terms
}

// IntentProfile is created once per analysis over the whole text
type IntentProfile struct {
	Dominant   Intent         `json:"dominant"`
	Confidence int            `json:"confidence"`
	Reason     string         `json:"reason"`
	Scores     map[Intent]int `json:"scores"`
	Flags      []PatternFlag  `json:"flags"`
	Degraded   bool           `json:"degraded,omitempty"` // Scan failed, defaults applied
}

// HasFlag reports whether the pattern fired
func (p IntentProfile) HasFlag(pattern Pattern) bool {
	for _, f := range p.Flags {
		if f.Pattern == pattern {
			return true
		}
	}
	return false
}

// NeutralProfile is the default used when the scan cannot complete
func NeutralProfile() IntentProfile {
	return IntentProfile{
		Dominant:   IntentNeutral,
		Confidence: 0,
		Reason:     "Intent scan unavailable; defaulting to neutral.",
		Scores:     map[Intent]int{IntentNeutral: 0},
		Flags:      []PatternFlag{},
		Degraded:   true,
	}
}
