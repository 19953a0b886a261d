package models

import (
	"time"

	"github.com/kova98/redditscope.api/enums"
)

// Post is a keyword mention normalized from a forum source. Sentiment fields
// stay empty until the post has been scored.
type Post struct {
	ID              string           `json:"id"`
	Section         string           `json:"section"`
	Title           string           `json:"title"`
	Body            string           `json:"body,omitempty"`
	Author          string           `json:"author"`
	Permalink       string           `json:"permalink"`
	Upvotes         int              `json:"upvotes"`
	CommentCount    int              `json:"commentCount"`
	CreatedAt       time.Time        `json:"createdAt"`
	TimeAgo         string           `json:"timeAgo"`
	KeywordsMatched []string         `json:"keywordsMatched"`
	SentimentLabel  enums.Sentiment  `json:"sentimentLabel,omitempty"`
	SentimentScore  *float64         `json:"sentimentScore,omitempty"`
	Status          enums.PostStatus `json:"status"`
}

// Score returns the sentiment score, or 0 when the post has not been scored.
func (p Post) Score() float64 {
	if p.SentimentScore == nil {
		return 0
	}
	return *p.SentimentScore
}

type SectionSummary struct {
	Name             string  `json:"name"`
	Mentions         int     `json:"mentions"`
	AverageSentiment float64 `json:"averageSentiment"`
}

type MentionsResponse struct {
	Posts            []Post           `json:"posts"`
	AverageSentiment float64          `json:"averageSentiment"`
	Sections         []SectionSummary `json:"sections"`
}
