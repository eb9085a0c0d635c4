// Package lexicon holds the cue tables the analysis stages match against.
//
// Tables are loaded once and never mutated; every stage shares the same
// read-only *Lexicon.
package lexicon

import (
	_ "embed"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Cues holds the per-claim cue tables
type Cues struct {
	Attribution    []string `yaml:"attribution"`
	Hedges         []string `yaml:"hedges"`
	ReportingVerbs []string `yaml:"reporting_verbs"`
	AssertionVerbs []string `yaml:"assertion_verbs"`
	Causal         []string `yaml:"causal"`
	Future         []string `yaml:"future"`
	Subjective     []string `yaml:"subjective"`
	NamedSources   []string `yaml:"named_sources"`
	Evidence       []string `yaml:"evidence"`
	Units          []string `yaml:"units"`
	DateTerms      []string `yaml:"date_terms"`
	Filler         []string `yaml:"filler"`
}

// Lexicon is the full set of cue tables plus their compiled matchers
type Lexicon struct {
	Intent          map[string][]string `yaml:"intent"`
	Patterns        map[string][]string `yaml:"patterns"`
	Cues            Cues                `yaml:"cues"`
	Interrogatives  []string            `yaml:"interrogatives"`
	Auxiliaries     []string            `yaml:"auxiliaries"`
	SubjectStarters []string            `yaml:"subject_starters"`
	Abbreviations   []string            `yaml:"abbreviations"`
	Stopwords       []string            `yaml:"stopwords"`

	intent    map[string]*Matcher
	patterns  map[string]*Matcher
	matchers  map[string]*Matcher
	stopwords map[string]struct{}
	abbrevs   map[string]struct{}
	interrog  map[string]struct{}
	aux       map[string]struct{}
	subjects  map[string]struct{}
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
	defaultErr  error
)

// Default returns the embedded lexicon, parsed on first use
func Default() *Lexicon {
	defaultOnce.Do(func() {
		defaultLex, defaultErr = parse(nil)
	})
	if defaultErr != nil {
		// embedded table is broken
		panic(defaultErr)
	}
	return defaultLex
}

// Load reads an override file on top of the embedded defaults.
// Sections present in the file replace the default section; maps merge per key.
// An empty path returns Default().
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "lexicon: read %s", path)
	}
	return parse(data)
}

func parse(override []byte) (*Lexicon, error) {
	lex := &Lexicon{}
	if err := yaml.Unmarshal(defaultYAML, lex); err != nil {
		return nil, eris.Wrap(err, "lexicon: parse embedded defaults")
	}
	if len(override) > 0 {
		if err := yaml.Unmarshal(override, lex); err != nil {
			return nil, eris.Wrap(err, "lexicon: parse override")
		}
	}
	if err := lex.compile(); err != nil {
		return nil, err
	}
	return lex, nil
}

func (l *Lexicon) compile() error {
	l.intent = make(map[string]*Matcher, len(l.Intent))
	for name, terms := range l.Intent {
		m, err := NewMatcher(terms)
		if err != nil {
			return eris.Wrapf(err, "lexicon: intent %q", name)
		}
		l.intent[name] = m
	}

	l.patterns = make(map[string]*Matcher, len(l.Patterns))
	for name, terms := range l.Patterns {
		m, err := NewMatcher(terms)
		if err != nil {
			return eris.Wrapf(err, "lexicon: pattern %q", name)
		}
		l.patterns[name] = m
	}

	tables := map[string][]string{
		"attribution":     l.Cues.Attribution,
		"hedges":          l.Cues.Hedges,
		"reporting_verbs": l.Cues.ReportingVerbs,
		"assertion_verbs": l.Cues.AssertionVerbs,
		"causal":          l.Cues.Causal,
		"future":          l.Cues.Future,
		"subjective":      l.Cues.Subjective,
		"named_sources":   l.Cues.NamedSources,
		"evidence":        l.Cues.Evidence,
		"units":           l.Cues.Units,
		"date_terms":      l.Cues.DateTerms,
		"filler":          l.Cues.Filler,
	}
	l.matchers = make(map[string]*Matcher, len(tables))
	for name, terms := range tables {
		m, err := NewMatcher(terms)
		if err != nil {
			return eris.Wrapf(err, "lexicon: cues %q", name)
		}
		l.matchers[name] = m
	}

	q, err := newQuantityMatcher(l.Cues.Units)
	if err != nil {
		return eris.Wrap(err, "lexicon: quantities")
	}
	l.matchers["quantities"] = q

	l.stopwords = toSet(l.Stopwords)
	l.abbrevs = toSet(l.Abbreviations)
	l.interrog = toSet(l.Interrogatives)
	l.aux = toSet(l.Auxiliaries)
	l.subjects = toSet(l.SubjectStarters)
	return nil
}

// IntentMatcher returns the matcher for an intent category, nil if unknown
func (l *Lexicon) IntentMatcher(name string) *Matcher { return l.intent[name] }

// PatternMatcher returns the matcher for a manipulation pattern, nil if unknown
func (l *Lexicon) PatternMatcher(name string) *Matcher { return l.patterns[name] }

// Per-claim cue matchers

func (l *Lexicon) Attribution() *Matcher    { return l.matchers["attribution"] }
func (l *Lexicon) Hedges() *Matcher         { return l.matchers["hedges"] }
func (l *Lexicon) ReportingVerbs() *Matcher { return l.matchers["reporting_verbs"] }
func (l *Lexicon) AssertionVerbs() *Matcher { return l.matchers["assertion_verbs"] }
func (l *Lexicon) Causal() *Matcher         { return l.matchers["causal"] }
func (l *Lexicon) Future() *Matcher         { return l.matchers["future"] }
func (l *Lexicon) Subjective() *Matcher     { return l.matchers["subjective"] }
func (l *Lexicon) NamedSources() *Matcher   { return l.matchers["named_sources"] }
func (l *Lexicon) Evidence() *Matcher       { return l.matchers["evidence"] }
func (l *Lexicon) Units() *Matcher          { return l.matchers["units"] }
func (l *Lexicon) DateTerms() *Matcher      { return l.matchers["date_terms"] }
func (l *Lexicon) Filler() *Matcher         { return l.matchers["filler"] }

// Quantities matches a numeral followed by a percent sign or a unit term
func (l *Lexicon) Quantities() *Matcher { return l.matchers["quantities"] }

// IsStopword reports whether the lowercased word is a stopword
func (l *Lexicon) IsStopword(word string) bool {
	_, ok := l.stopwords[strings.ToLower(word)]
	return ok
}

// IsAbbreviation reports whether the token (with trailing dot) is a known abbreviation
func (l *Lexicon) IsAbbreviation(token string) bool {
	_, ok := l.abbrevs[strings.ToLower(token)]
	return ok
}

// IsInterrogative reports whether the word opens a question
func (l *Lexicon) IsInterrogative(word string) bool {
	_, ok := l.interrog[strings.ToLower(word)]
	return ok
}

// IsAuxiliary reports whether the word is an auxiliary that inverts with
// its subject in questions ("does it", "can we")
func (l *Lexicon) IsAuxiliary(word string) bool {
	_, ok := l.aux[strings.ToLower(word)]
	return ok
}

// IsSubjectStarter reports whether the word is a pronoun or determiner
// that opens a subject noun phrase
func (l *Lexicon) IsSubjectStarter(word string) bool {
	_, ok := l.subjects[strings.ToLower(word)]
	return ok
}

// Matcher finds lexicon terms in text, case-insensitively, on word boundaries
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles terms into one alternation, longest term first so
// multi-word phrases win over their prefixes
func NewMatcher(terms []string) (*Matcher, error) {
	cleaned := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		cleaned = append(cleaned, t)
	}
	if len(cleaned) == 0 {
		return &Matcher{}, nil
	}
	sort.SliceStable(cleaned, func(i, j int) bool {
		if len(cleaned[i]) != len(cleaned[j]) {
			return len(cleaned[i]) > len(cleaned[j])
		}
		return cleaned[i] < cleaned[j]
	})

	quoted := make([]string, len(cleaned))
	for i, t := range cleaned {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(t), " ", `\s+`)
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, eris.Wrap(err, "compile matcher")
	}
	return &Matcher{re: re}, nil
}

func newQuantityMatcher(units []string) (*Matcher, error) {
	alts := []string{`%`}
	for _, u := range units {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "" {
			continue
		}
		alts = append(alts, strings.ReplaceAll(regexp.QuoteMeta(u), " ", `\s+`)+`\b`)
	}
	rest := alts[1:]
	sort.SliceStable(rest, func(i, j int) bool { return len(rest[i]) > len(rest[j]) })
	re, err := regexp.Compile(`(?i)\b\d[\d,]*(?:\.\d+)?\s*(?:` + strings.Join(alts, "|") + `)`)
	if err != nil {
		return nil, eris.Wrap(err, "compile quantity matcher")
	}
	return &Matcher{re: re}, nil
}

// FindAll returns every non-overlapping match, lowercased, in text order
func (m *Matcher) FindAll(text string) []string {
	if m == nil || m.re == nil {
		return nil
	}
	raw := m.re.FindAllString(text, -1)
	out := make([]string, len(raw))
	for i, r := range raw {
		out[i] = strings.ToLower(strings.Join(strings.Fields(r), " "))
	}
	return out
}

// Count returns the number of matches in text
func (m *Matcher) Count(text string) int {
	if m == nil || m.re == nil {
		return 0
	}
	return len(m.re.FindAllStringIndex(text, -1))
}

// Contains reports whether text has at least one match
func (m *Matcher) Contains(text string) bool {
	if m == nil || m.re == nil {
		return false
	}
	return m.re.MatchString(text)
}

// First returns the first match, lowercased, or ""
func (m *Matcher) First(text string) string {
	if m == nil || m.re == nil {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(m.re.FindString(text)), " "))
}

// Distinct returns unique matches in first-seen order
func Distinct(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
