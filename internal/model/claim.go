package model

// InputKind classifies the submitted passage
type InputKind string

const (
	InputStatement InputKind = "statement"
	InputQuestion  InputKind = "question"
)

// AnalysisInput is the raw submission. Language is assumed English.
type AnalysisInput struct {
	Text string    `json:"text"`
	Kind InputKind `json:"kind"`
}

// Span locates a claim in the normalized sentence sequence
type Span struct {
	Sentence int `json:"sentence"` // Sentence index (0-based), -1 for synthetic claims
	Start    int `json:"start"`    // Byte offset of the sentence in the normalized text
	End      int `json:"end"`      // Byte offset one past the sentence end
}

// Claim represents a discrete checkable proposition extracted from the input
type Claim struct {
	ID            string      `json:"id"`                   // Stable within one analysis run (c1, c2, ...)
	Text          string      `json:"text"`                 // Source sentence
	Span          Span        `json:"span"`                 // Where the sentence sits in the input
	Type          ClaimType   `json:"type"`                 // Rule-based classification
	Heuristic     string      `json:"heuristic,omitempty"`  // Which extraction rule matched (e.g., "numeric:95%")
	Subjects      []string    `json:"subjects"`             // Subject/entity terms, in order of appearance
	Specificity   int         `json:"specificity"`          // 0-100
	Verifiability int         `json:"verifiability"`        // 0-100
	Cues          []Cue       `json:"cues"`                 // Evidence cues found in the sentence
	Rationale     string      `json:"rationale,omitempty"`  // Templated explanation of the scores
	Synthetic     bool        `json:"synthetic,omitempty"`  // Question presupposition or whole-input fallback
	References    []Reference `json:"references,omitempty"` // Triangulated references
}

// Heuristics for synthetic claims
const (
	HeuristicPresupposition = "question:presupposition"
	HeuristicWholeInput     = "fallback:whole-input"
)

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeFactual     ClaimType = "factual"     // Default
	ClaimTypeStatistical ClaimType = "statistical" // Numeral with a unit or percent
	ClaimTypeCausal      ClaimType = "causal"      // Causal connective
	ClaimTypeOpinion     ClaimType = "opinion"     // Dense subjective language
	ClaimTypePrediction  ClaimType = "prediction"  // Future-tense marker
	ClaimTypeAttribution ClaimType = "attribution" // Reporting verb + attributed source
)

// CueKind tags a lexical cue found in a claim
type CueKind string

const (
	CueNumber      CueKind = "number"
	CuePercent     CueKind = "percent_or_unit"
	CueDate        CueKind = "date"
	CueEntity      CueKind = "named_entity"
	CueNamedSource CueKind = "named_source"
	CueAttribution CueKind = "attribution"
	CueHedge       CueKind = "hedge"
)

// Cue is a tag plus the matched term, never a copy of the sentence
type Cue struct {
	Kind  CueKind `json:"kind"`
	Match string  `json:"match"`
}

// CountCues counts cues of the given kind
func CountCues(cues []Cue, kind CueKind) int {
	n := 0
	for _, c := range cues {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// VerifiabilityBand maps a verifiability score onto the High/Medium/Low scale
func VerifiabilityBand(score int) string {
	switch {
	case score >= 70:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low"
	}
}
