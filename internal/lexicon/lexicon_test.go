package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEveryCategory(t *testing.T) {
	lex := Default()

	for _, name := range []string{"pr", "political", "persuasion", "emotional_manipulation"} {
		assert.NotNil(t, lex.IntentMatcher(name), "intent %s", name)
	}
	for _, name := range []string{"emotional_pressure", "one_sided_framing", "hero_villain_framing", "unsupported_assertions"} {
		assert.NotNil(t, lex.PatternMatcher(name), "pattern %s", name)
	}
	assert.True(t, lex.Attribution().Contains("according to a peer-reviewed study"))
	assert.True(t, lex.IsStopword("The"))
	assert.True(t, lex.IsAbbreviation("Dr."))
	assert.True(t, lex.IsInterrogative("Do"))
	assert.True(t, lex.IsAuxiliary("Doesn't"))
	assert.False(t, lex.IsAuxiliary("what"))
	assert.True(t, lex.IsSubjectStarter("Their"))
	assert.False(t, lex.IsSubjectStarter("economy"))
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestMatcher_LongestPhraseWins(t *testing.T) {
	m, err := NewMatcher([]string{"everyone", "everyone knows"})
	require.NoError(t, err)

	got := m.FindAll("Everyone knows it. Everyone agrees.")
	assert.Equal(t, []string{"everyone knows", "everyone"}, got)
}

func TestMatcher_WordBoundaries(t *testing.T) {
	m, err := NewMatcher([]string{"war"})
	require.NoError(t, err)

	assert.Equal(t, 0, m.Count("The software was warm"))
	assert.Equal(t, 1, m.Count("The war ended"))
}

func TestMatcher_PhraseToleratesWhitespace(t *testing.T) {
	m, err := NewMatcher([]string{"according to"})
	require.NoError(t, err)

	assert.Equal(t, "according to", m.First("ACCORDING   TO officials"))
}

func TestMatcher_EmptyTerms(t *testing.T) {
	m, err := NewMatcher([]string{"", "  "})
	require.NoError(t, err)

	assert.False(t, m.Contains("anything"))
	assert.Nil(t, m.FindAll("anything"))

	var nilMatcher *Matcher
	assert.Equal(t, 0, nilMatcher.Count("anything"))
}

func TestQuantities(t *testing.T) {
	q := Default().Quantities()

	assert.Equal(t, []string{"95%", "2 million"}, q.FindAll("It is 95% effective for 2 million people"))
	assert.Equal(t, "3.5 percentage points", q.First("up 3.5 percentage points"))
	assert.False(t, q.Contains("in 2020 the vote"))
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Distinct([]string{"a", "b", "a"}))
}

func TestLoad_OverrideMergesSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	override := `
intent:
  pr:
    - synergy
cues:
  hedges:
    - supposedly
`
	require.NoError(t, os.WriteFile(path, []byte(override), 0o644))

	lex, err := Load(path)
	require.NoError(t, err)

	assert.True(t, lex.IntentMatcher("pr").Contains("pure synergy"))
	assert.False(t, lex.IntentMatcher("pr").Contains("award-winning"))
	// untouched sections keep their defaults
	assert.True(t, lex.IntentMatcher("political").Contains("election"))
	assert.True(t, lex.Hedges().Contains("supposedly"))
	assert.False(t, lex.Hedges().Contains("allegedly"))
	assert.True(t, lex.Attribution().Contains("according to"))
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), lex)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
