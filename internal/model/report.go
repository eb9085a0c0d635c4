package model

import "time"

// AnalysisReport is the aggregate root returned by the engine.
// It is created fresh per request and never persisted.
type AnalysisReport struct {
	ID          string        `json:"id"`
	Input       AnalysisInput `json:"input"`
	Topic       string        `json:"topic"`
	AnalyzedAt  time.Time     `json:"analyzed_at"`
	Claims      []Claim       `json:"claims"`
	References  []Reference   `json:"references"` // Report-root guidance, not tied to one claim
	Intent      IntentProfile `json:"intent"`
	Scores      ScoreSet      `json:"scores"`
	Verdict     string        `json:"verdict"`
	Assessment  string        `json:"assessment"`
	Findings    []string      `json:"manipulation_findings"`
	FollowUps   []string      `json:"follow_up_questions"`
	Principles  Principles    `json:"principles"`
	SourceURL   string        `json:"source_url,omitempty"` // Set when the input was fetched from a URL
	SourceTitle string        `json:"source_title,omitempty"`
}

// RiskLabel is the coarse summary of the score triple
type RiskLabel string

const (
	RiskLow      RiskLabel = "low"
	RiskModerate RiskLabel = "moderate"
	RiskHigh     RiskLabel = "high"
	RiskCritical RiskLabel = "critical"
)

// Severity orders risk labels, higher is worse
func (r RiskLabel) Severity() int {
	switch r {
	case RiskModerate:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// ScoreSet holds the three 0-100 scores and the derived label
type ScoreSet struct {
	Objectivity        int       `json:"objectivity"`
	FactualReliability int       `json:"factual_reliability"`
	PRProbability      int       `json:"pr_probability"`
	Risk               RiskLabel `json:"risk_label"`
	Signals            []Signal  `json:"signals"` // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`           // Signal classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Data        map[string]interface{} `json:"data,omitempty"` // Formula and inputs
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalObjectivity       SignalType = "objectivity"
	SignalReliability       SignalType = "factual_reliability"
	SignalPRProbability     SignalType = "pr_probability"
	SignalCorroboration     SignalType = "corroboration"      // Claims with live mainstream/academic hits
	SignalReferenceFallback SignalType = "reference_fallback" // Lookups that degraded to guidance
	SignalManipulation      SignalType = "manipulation"       // Fired pattern flags
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Principles documents which core principles were applied
type Principles struct {
	NonNormative  bool `json:"non_normative"` // Evaluates support, not truth
	Transparent   bool `json:"transparent"`   // All scoring explainable
	Deterministic bool `json:"deterministic"` // Same input, same judgments
	NoGenerative  bool `json:"no_generative"` // No generative model in the loop
}

// DefaultPrinciples returns the standard principles
func DefaultPrinciples() Principles {
	return Principles{
		NonNormative:  true,
		Transparent:   true,
		Deterministic: true,
		NoGenerative:  true,
	}
}
