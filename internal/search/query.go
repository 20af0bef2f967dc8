package search

import (
	"strings"
)

// Query is one search variant derived from a topic.
type Query struct {
	Text string
	// Phrase asks the provider to match Text as an exact phrase.
	Phrase bool
	// InTitle restricts matching to the headline where the provider supports it.
	InTitle bool
}

func (q Query) String() string {
	var b strings.Builder
	if q.InTitle {
		b.WriteString("intitle:")
	}
	if q.Phrase {
		b.WriteString(`"` + q.Text + `"`)
	} else {
		b.WriteString(q.Text)
	}
	return b.String()
}

// ExpandQueries turns a topic into the query variants sent to each provider:
// the exact phrase restricted to headlines, then the plain keywords anywhere.
func ExpandQueries(topic string) []Query {
	words := strings.Fields(topic)
	if len(words) == 0 {
		return nil
	}
	text := strings.Join(words, " ")

	variants := []Query{
		{Text: text, Phrase: len(words) > 1, InTitle: true},
		{Text: text},
	}
	return variants
}
