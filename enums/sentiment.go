package enums

import (
	"fmt"
	"strings"
)

type Sentiment string

const (
	SentimentUnknown  Sentiment = ""
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

func ParseSentiment(s string) (Sentiment, error) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	case SentimentNegative:
		return SentimentNegative, nil
	}
	return SentimentUnknown, fmt.Errorf("invalid sentiment: %q", s)
}
