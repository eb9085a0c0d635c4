package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/newsintel/internal/model"
)

var (
	numberRe   = regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\b`)
	yearRe     = regexp.MustCompile(`\b(?:1[6-9]\d{2}|20\d{2})s?\b`)
	isoDateRe  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slashRe    = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	capSeqRe   = regexp.MustCompile(`\p{Lu}[\p{L}\d'&-]*(?:\s+(?:of\s+|the\s+|for\s+|and\s+)?\p{Lu}[\p{L}\d'&-]*)*`)
	acronymRe  = regexp.MustCompile(`^\p{Lu}{2,}s?$`)
	openQuotes = `"'([`
)

// Cues tags every lexical evidence cue in a sentence. Order is fixed by cue
// kind, then by position, so identical text always yields identical cues.
func (e *ClaimExtractor) Cues(sentence string) []model.Cue {
	cues := []model.Cue{}
	add := func(kind model.CueKind, matches []string) {
		for _, m := range matches {
			cues = append(cues, model.Cue{Kind: kind, Match: m})
		}
	}

	dates, dateSpans := e.dates(sentence)
	add(model.CueNumber, numbersOutside(sentence, dateSpans))
	add(model.CuePercent, e.lex.Quantities().FindAll(sentence))
	add(model.CueDate, dates)
	add(model.CueEntity, e.entities(sentence))
	add(model.CueNamedSource, e.lex.NamedSources().FindAll(sentence))
	add(model.CueAttribution, e.lex.Attribution().FindAll(sentence))
	add(model.CueHedge, e.lex.Hedges().FindAll(sentence))
	return cues
}

func (e *ClaimExtractor) dates(sentence string) ([]string, [][]int) {
	var spans [][]int
	for _, re := range []*regexp.Regexp{isoDateRe, slashRe, yearRe} {
		for _, loc := range re.FindAllStringIndex(sentence, -1) {
			if !overlaps(loc, spans) {
				spans = append(spans, loc)
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })

	out := make([]string, 0, len(spans))
	for _, loc := range spans {
		out = append(out, sentence[loc[0]:loc[1]])
	}
	out = append(out, e.lex.DateTerms().FindAll(sentence)...)
	return out, spans
}

func numbersOutside(sentence string, spans [][]int) []string {
	var out []string
	for _, loc := range numberRe.FindAllStringIndex(sentence, -1) {
		if !overlaps(loc, spans) {
			out = append(out, sentence[loc[0]:loc[1]])
		}
	}
	return out
}

// entities returns capitalized sequences that look like names. A single
// capitalized word opening the sentence is treated as ordinary
// capitalization unless it is an acronym.
func (e *ClaimExtractor) entities(sentence string) []string {
	var out []string
	seen := make(map[string]bool)
	start := strings.IndexFunc(sentence, func(r rune) bool { return !strings.ContainsRune(openQuotes, r) })

	for _, loc := range capSeqRe.FindAllStringIndex(sentence, -1) {
		if loc[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(sentence[:loc[0]])
			if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
				continue
			}
		}
		words := strings.Fields(sentence[loc[0]:loc[1]])
		leading := true
		for len(words) > 0 && e.lex.IsStopword(words[0]) && !acronymRe.MatchString(words[0]) {
			words = words[1:]
			leading = false
		}
		if len(words) == 0 {
			continue
		}
		if leading && loc[0] == start && len(words) == 1 && !acronymRe.MatchString(words[0]) {
			continue
		}
		name := strings.Join(words, " ")
		if utf8.RuneCountInString(name) < 2 || e.lex.IsStopword(name) || e.lex.IsInterrogative(name) {
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func overlaps(loc []int, spans [][]int) bool {
	for _, s := range spans {
		if loc[0] < s[1] && s[0] < loc[1] {
			return true
		}
	}
	return false
}
