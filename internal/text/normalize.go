// Package text turns raw submissions into clean, sentence-split input.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/newsintel/internal/lexicon"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/rivo/uniseg"
	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyInput is returned when the input is empty or whitespace-only
var ErrEmptyInput = eris.New("empty input")

// Sentence is one sentence of the normalized text
type Sentence struct {
	Text  string
	Start int // Byte offset in Normalized.Text
	End   int
}

// UnreadableText stands in for non-blank input that has no printable text
// left after cleaning (control bytes, invalid UTF-8, format characters)
const UnreadableText = "[unreadable input]"

// Normalized is the Normalizer output
type Normalized struct {
	Text       string
	Sentences  []Sentence
	Kind       model.InputKind
	Unreadable bool // Text is UnreadableText
}

// Normalizer cleans, splits and classifies input text
type Normalizer struct {
	lex *lexicon.Lexicon
}

// NewNormalizer creates a normalizer over the given cue tables
func NewNormalizer(lex *lexicon.Lexicon) *Normalizer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Normalizer{lex: lex}
}

// Normalize cleans raw text, splits it into sentences and classifies it.
// Only empty or whitespace-only input fails; input that cleans down to
// nothing becomes a single UnreadableText statement.
func (n *Normalizer) Normalize(raw string) (*Normalized, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}
	clean := Clean(raw)
	if clean == "" {
		return &Normalized{
			Text:       UnreadableText,
			Sentences:  []Sentence{{Text: UnreadableText, Start: 0, End: len(UnreadableText)}},
			Kind:       model.InputStatement,
			Unreadable: true,
		}, nil
	}

	sentences := n.Split(clean)
	return &Normalized{
		Text:      clean,
		Sentences: sentences,
		Kind:      n.Classify(clean, sentences),
	}, nil
}

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"–", "-", "—", "-",
)

// Clean applies NFKC, straightens quotes, drops control and format
// characters and collapses whitespace
func Clean(raw string) string {
	if !utf8.ValidString(raw) {
		raw = strings.ToValidUTF8(raw, " ")
	}
	s := norm.NFKC.String(raw)
	s = quoteReplacer.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), r == utf8.RuneError:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Split segments clean text into sentences using UAX #29 boundaries, then
// rejoins breaks after known abbreviations and before lowercase
// continuations (quoted speech such as `"Stop!" he said.`)
func (n *Normalizer) Split(clean string) []Sentence {
	var raw []Sentence
	offset := 0
	rest := clean
	state := -1
	for len(rest) > 0 {
		var s string
		s, rest, state = uniseg.FirstSentenceInString(rest, state)
		start := offset
		offset += len(s)

		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		lead := strings.Index(s, trimmed)
		raw = append(raw, Sentence{
			Text:  trimmed,
			Start: start + lead,
			End:   start + lead + len(trimmed),
		})
	}

	var merged []Sentence
	for _, s := range raw {
		if len(merged) > 0 && n.continues(merged[len(merged)-1], s) {
			last := &merged[len(merged)-1]
			last.End = s.End
			last.Text = clean[last.Start:last.End]
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func (n *Normalizer) continues(prev, next Sentence) bool {
	fields := strings.Fields(prev.Text)
	if len(fields) > 0 && n.lex.IsAbbreviation(fields[len(fields)-1]) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(next.Text)
	return unicode.IsLower(first)
}

// Classify reports whether the input is a question: it ends with '?', or it is
// a single unterminated sentence with question word order
func (n *Normalizer) Classify(clean string, sentences []Sentence) model.InputKind {
	trimmed := strings.TrimSpace(clean)
	if strings.HasSuffix(trimmed, "?") {
		return model.InputQuestion
	}
	if len(sentences) != 1 || strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") {
		return model.InputStatement
	}
	if n.inverted(Words(trimmed)) {
		return model.InputQuestion
	}
	return model.InputStatement
}

// howDegree words turn "how" into a question opener without an auxiliary
var howDegree = map[string]bool{"many": true, "much": true, "long": true, "often": true, "far": true, "old": true}

// inverted checks question word order. An auxiliary opener needs a subject
// right after it ("does the", "is it"); a wh-word needs an auxiliary after
// it ("why did"), after its noun ("which country has") or, for "who", a verb
// in subject position ("who killed").
func (n *Normalizer) inverted(words []string) bool {
	if len(words) < 2 {
		return false
	}
	first := strings.ToLower(words[0])
	if n.lex.IsAuxiliary(first) {
		return n.opensSubject(words[1])
	}
	if !n.lex.IsInterrogative(first) {
		return false
	}
	second := strings.ToLower(words[1])
	switch {
	case n.lex.IsAuxiliary(second):
		return true
	case first == "who":
		return !n.lex.IsSubjectStarter(second) && !n.lex.IsStopword(second)
	case first == "how":
		return howDegree[second] && len(words) > 2
	case first == "which" || first == "what" || first == "whose":
		return len(words) > 2 && !n.lex.IsSubjectStarter(second) && n.lex.IsAuxiliary(words[2])
	}
	return false
}

func (n *Normalizer) opensSubject(word string) bool {
	w := strings.ToLower(word)
	if n.lex.IsSubjectStarter(w) {
		return true
	}
	return w != "not" && !n.lex.IsAuxiliary(w) && !n.lex.IsStopword(w)
}

// IsQuestionSentence reports whether a single sentence is interrogative
func IsQuestionSentence(s string) bool {
	return strings.HasSuffix(strings.TrimRight(s, `"') `), "?")
}

// Words splits text into word tokens, keeping inner apostrophes and hyphens
func Words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
