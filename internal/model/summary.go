package model

import (
	"fmt"
	"strings"
)

// Sentiment is the overall tone the model assigned to an article.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment accepts a label case-insensitively.
func ParseSentiment(value string) (Sentiment, error) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(value))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	case SentimentNegative:
		return SentimentNegative, nil
	}
	return "", fmt.Errorf("unknown sentiment %q", value)
}

// SummaryResult is the validated output of the summarization model.
type SummaryResult struct {
	Headline   string    `json:"headline"`
	Summary    string    `json:"summary"`
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	Tags       []string  `json:"tags"`
}
