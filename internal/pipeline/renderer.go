package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rotisserie/eris"
)

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFooter bool
	wordWrap      int
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, wordWrap: 100}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.AnalysisReport, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderSummary prints the Markdown report styled for the terminal.
// Rendering failures fall back to the raw Markdown.
func (r *Renderer) RenderSummary(w io.Writer, report *model.AnalysisReport) error {
	md := r.Markdown(report)
	out := md
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.wordWrap),
	)
	if err == nil {
		if styled, rerr := tr.Render(md); rerr == nil {
			out = strings.TrimRight(styled, "\n ") + "\n"
		}
	}
	_, err = io.WriteString(w, out)
	return err
}

// Markdown builds the report document
func (r *Renderer) Markdown(report *model.AnalysisReport) string {
	var b strings.Builder

	b.WriteString("# Intelligence Report\n\n")
	if report.SourceTitle != "" {
		fmt.Fprintf(&b, "**Source:** [%s](%s)\n\n", report.SourceTitle, report.SourceURL)
	} else if report.SourceURL != "" {
		fmt.Fprintf(&b, "**Source:** %s\n\n", report.SourceURL)
	}
	fmt.Fprintf(&b, "**Topic:** %s  \n", report.Topic)
	fmt.Fprintf(&b, "**Input:** %s, %d claim(s)  \n", report.Input.Kind, len(report.Claims))
	fmt.Fprintf(&b, "**Analyzed:** %s\n\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))

	b.WriteString("## Scoreboard\n\n")
	b.WriteString("| Score | Value | Band |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Objectivity | %d/100 | %s |\n", report.Scores.Objectivity, band(report.Scores.Objectivity, false))
	fmt.Fprintf(&b, "| Factual reliability | %d/100 | %s |\n", report.Scores.FactualReliability, band(report.Scores.FactualReliability, false))
	fmt.Fprintf(&b, "| PR / propaganda probability | %d/100 | %s |\n\n", report.Scores.PRProbability, band(report.Scores.PRProbability, true))
	fmt.Fprintf(&b, "**Risk:** %s\n\n", strings.ToUpper(string(report.Scores.Risk)))

	b.WriteString("## Final Assessment\n\n")
	fmt.Fprintf(&b, "**%s**\n\n%s\n\n", report.Verdict, report.Assessment)

	b.WriteString("## Extracted Claims\n\n")
	for i, c := range report.Claims {
		fmt.Fprintf(&b, "### Claim %d: %s\n\n", i+1, claimText(c))
		fmt.Fprintf(&b, "- Type: %s | Specificity: %d | Verifiability: %d (%s)\n",
			c.Type, c.Specificity, c.Verifiability, model.VerifiabilityBand(c.Verifiability))
		if c.Rationale != "" {
			fmt.Fprintf(&b, "- %s\n", c.Rationale)
		}
		if len(c.References) > 0 {
			b.WriteString("\n")
			for _, ref := range c.References {
				writeReference(&b, ref)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("## Intent & Manipulation\n\n")
	fmt.Fprintf(&b, "**Likely intent:** %s (%d%%)\n\n%s\n\n", humanize(string(report.Intent.Dominant)), report.Intent.Confidence, report.Intent.Reason)
	for _, f := range report.Findings {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("\n")

	if len(report.References) > 0 {
		b.WriteString("## Independent & OSINT Leads\n\n")
		for _, ref := range report.References {
			writeReference(&b, ref)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Further Investigation Questions\n\n")
	for i, q := range report.FollowUps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\n")

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("*Scores measure sourcing and framing cues, not truth. Every statement above maps to a cue found in the input or to a reference lookup.*\n")
	}
	return b.String()
}

func writeReference(b *strings.Builder, ref model.Reference) {
	marker := ""
	if ref.Fallback {
		marker = fmt.Sprintf(" _(guidance: %s)_", ref.Reason)
	}
	if ref.Reachable != nil && !*ref.Reachable {
		marker += " _(link unreachable)_"
	}
	fmt.Fprintf(b, "- [%s] [%s](%s)%s\n", ref.Bucket, ref.Title, ref.SourceID, marker)
	if ref.Summary != "" {
		fmt.Fprintf(b, "  %s\n", ref.Summary)
	}
}

func claimText(c model.Claim) string {
	if c.Synthetic && c.Heuristic == model.HeuristicPresupposition {
		return c.Text + " _(question presupposition)_"
	}
	return c.Text
}

// band maps a score to the three-level risk band shown next to it;
// inverse scores are risky when high
func band(score int, inverse bool) string {
	v := score
	if inverse {
		v = 100 - score
	}
	switch {
	case v >= 70:
		return "Low risk"
	case v >= 40:
		return "Medium risk"
	default:
		return "High risk"
	}
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "create directory %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write %s", path)
	}
	return nil
}
