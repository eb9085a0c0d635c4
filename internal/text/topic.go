package text

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/newsintel/internal/model"
)

// DefaultTopic is used when no topic terms survive filtering
const DefaultTopic = "general topic"

const (
	maxTopicRunes  = 100
	topicTermCount = 5
	minTopicRunes  = 4
)

// Topic derives a short search topic for the whole input. Questions keep
// their wording minus the leading interrogative; statements use their most
// frequent content words.
func (n *Normalizer) Topic(in *Normalized) string {
	if in == nil || in.Text == "" || in.Unreadable {
		return DefaultTopic
	}
	if in.Kind == model.InputQuestion {
		if t := n.questionTopic(in.Text); t != "" {
			return t
		}
		return DefaultTopic
	}
	if t := n.frequentTerms(in.Text); t != "" {
		return t
	}
	return DefaultTopic
}

func (n *Normalizer) questionTopic(text string) string {
	q := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), "?"))
	words := strings.Fields(q)
	if len(words) > 1 && n.lex.IsInterrogative(strings.Trim(words[0], `"'(`)) {
		words = words[1:]
	}
	topic := strings.Join(words, " ")
	if len(Words(topic)) == 0 {
		return ""
	}
	if utf8.RuneCountInString(topic) > maxTopicRunes {
		topic = strings.TrimSpace(string([]rune(topic)[:maxTopicRunes]))
	}
	return topic
}

func (n *Normalizer) frequentTerms(text string) string {
	counts := make(map[string]int)
	var order []string
	for _, w := range Words(strings.ToLower(text)) {
		if utf8.RuneCountInString(w) < minTopicRunes || n.lex.IsStopword(w) {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	if len(order) == 0 {
		return ""
	}

	// stable sort keeps first-occurrence order among equal counts
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topicTermCount {
		order = order[:topicTermCount]
	}
	return strings.Join(order, " ")
}
