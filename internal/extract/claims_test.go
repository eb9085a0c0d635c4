package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractClaims(t *testing.T, input string) []model.Claim {
	t.Helper()
	n := text.NewNormalizer(nil)
	norm, err := n.Normalize(input)
	require.NoError(t, err)
	return NewClaimExtractor(nil, model.ExtractConfig{}).Extract(norm, n.Topic(norm))
}

func TestClaimExtractor_StatisticalAttribution(t *testing.T) {
	claims := extractClaims(t, "Scientists confirmed yesterday that the new vaccine is 95% effective, according to a peer-reviewed study.")
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, model.ClaimTypeStatistical, c.Type)
	assert.Equal(t, "numeric:95%", c.Heuristic)
	assert.Equal(t, 0, c.Span.Sentence)
	assert.Equal(t, []model.Cue{
		{Kind: model.CueNumber, Match: "95"},
		{Kind: model.CuePercent, Match: "95%"},
		{Kind: model.CueDate, Match: "yesterday"},
		{Kind: model.CueNamedSource, Match: "study"},
		{Kind: model.CueAttribution, Match: "according to"},
		{Kind: model.CueAttribution, Match: "peer-reviewed"},
	}, c.Cues)
	assert.Equal(t, []string{"scientists", "vaccine", "effective", "peer-reviewed"}, c.Subjects)
	assert.False(t, c.Synthetic)
}

func TestClaimExtractor_UnsupportedAssertion(t *testing.T) {
	claims := extractClaims(t, "Everyone knows this vaccine is dangerous and the government is hiding the truth!")
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, model.ClaimTypeFactual, c.Type)
	assert.Equal(t, "assertion:is", c.Heuristic)
	assert.Equal(t, 1, model.CountCues(c.Cues, model.CueHedge))
	assert.Equal(t, 0, model.CountCues(c.Cues, model.CueAttribution))
}

func TestClaimExtractor_QuestionPresupposition(t *testing.T) {
	claims := extractClaims(t, "Do aliens exist?")
	require.Len(t, claims, 1)

	c := claims[0]
	assert.True(t, c.Synthetic)
	assert.Equal(t, model.HeuristicPresupposition, c.Heuristic)
	assert.Equal(t, model.ClaimTypeFactual, c.Type)
	assert.Equal(t, -1, c.Span.Sentence)
	assert.Equal(t, []string{"aliens", "exist"}, c.Subjects)
}

func TestClaimExtractor_QuestionWithAssertion(t *testing.T) {
	claims := extractClaims(t, "The minister resigned on Friday. Was it planned?")
	require.Len(t, claims, 1)
	assert.Equal(t, "The minister resigned on Friday.", claims[0].Text)
	assert.False(t, claims[0].Synthetic)
}

func TestClaimExtractor_GarbageFallsBackToWholeInput(t *testing.T) {
	claims := extractClaims(t, "@@@ ### $$$ %%%")
	require.Len(t, claims, 1)

	c := claims[0]
	assert.True(t, c.Synthetic)
	assert.Equal(t, model.HeuristicWholeInput, c.Heuristic)
	assert.Equal(t, model.ClaimTypeFactual, c.Type)
	assert.Empty(t, c.Cues)
}

func TestClaimExtractor_UnreadableInput(t *testing.T) {
	claims := extractClaims(t, "\x00\x01\xff")
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, model.HeuristicWholeInput, c.Heuristic)
	assert.Equal(t, model.ClaimTypeFactual, c.Type)
	assert.Empty(t, c.Subjects)
	assert.Empty(t, c.Cues)
}

func TestClaimExtractor_TypePrecedence(t *testing.T) {
	tests := []struct {
		sentence string
		want     model.ClaimType
	}{
		{"Unemployment fell to 3.5 percent in the spring.", model.ClaimTypeStatistical},
		{"Smoking causes cancer in long-term users.", model.ClaimTypeCausal},
		{`Senator Jane Doe said "the budget is balanced" on Tuesday.`, model.ClaimTypeAttribution},
		{"The company will launch the product next year.", model.ClaimTypePrediction},
		{"This is the best and most amazing, wonderful plan.", model.ClaimTypeOpinion},
		{"The bridge was built by engineers.", model.ClaimTypeFactual},
	}
	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			claims := extractClaims(t, tt.sentence)
			require.Len(t, claims, 1)
			assert.Equal(t, tt.want, claims[0].Type)
		})
	}
}

func TestClaimExtractor_ShortSentencesWhenNothingElse(t *testing.T) {
	claims := extractClaims(t, "Taxes rose. Prices fell.")
	require.Len(t, claims, 2)
	assert.Equal(t, "Taxes rose.", claims[0].Text)
	assert.Equal(t, "c2", claims[1].ID)
}

func TestClaimExtractor_ShortSentencesDroppedNextToLongOnes(t *testing.T) {
	claims := extractClaims(t, "Taxes rose. The finance ministry confirmed the new rates on Monday.")
	require.Len(t, claims, 1)
	assert.Equal(t, 1, claims[0].Span.Sentence)
}

func TestClaimExtractor_SkipsFiller(t *testing.T) {
	claims := extractClaims(t, "Hello! Thank you. The factory closed in 2019 after losses.")
	require.Len(t, claims, 1)
	assert.Contains(t, claims[0].Text, "factory")
}

func TestClaimExtractor_Entities(t *testing.T) {
	claims := extractClaims(t, "The report by the World Health Organization was released in Geneva.")
	require.Len(t, claims, 1)
	assert.Equal(t, []string{"World Health Organization", "Geneva"}, claims[0].Subjects)
	assert.Equal(t, "entity:World Health Organization", claims[0].Heuristic)
}

func TestClaimExtractor_DatesAreNotNumbers(t *testing.T) {
	claims := extractClaims(t, "The law passed on 2021-03-04 after a failed vote in 1999.")
	require.Len(t, claims, 1)

	c := claims[0]
	assert.Equal(t, 0, model.CountCues(c.Cues, model.CueNumber))
	assert.Equal(t, 2, model.CountCues(c.Cues, model.CueDate))
}

func TestClaimExtractor_CapAndIDs(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "Report number %d was filed by the agency. ", i+1)
	}
	claims := extractClaims(t, b.String())

	require.Len(t, claims, 15)
	for i, c := range claims {
		assert.Equal(t, fmt.Sprintf("c%d", i+1), c.ID)
	}
}

func TestClaimExtractor_Dedupe(t *testing.T) {
	claims := extractClaims(t, "The dam was completed in 1936. The dam was completed in 1936.")
	assert.Len(t, claims, 1)
}

func TestClaimExtractor_Deterministic(t *testing.T) {
	input := "Officials in Brazil said 40 people died. Critics claim the storm was caused by neglect. It will rain again."
	first := extractClaims(t, input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, extractClaims(t, input))
	}
}

func TestVisibleText(t *testing.T) {
	got, err := VisibleText(`<html><body><p>Visible</p><script>hidden()</script><p>text</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Visible text", got)
}
