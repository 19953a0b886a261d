package mentions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/kova98/redditscope.api/enums"
	"github.com/kova98/redditscope.api/matchers"
	"github.com/kova98/redditscope.api/metrics"
	"github.com/kova98/redditscope.api/models"
	"github.com/kova98/redditscope.api/sources"
)

var ErrInvalidLimit = sources.ErrInvalidLimit

type Fetcher interface {
	Fetch(ctx context.Context, sections, keywords []string, limit int) ([]models.Post, error)
}

type Scorer interface {
	Score(posts []models.Post) []models.Post
}

type FlagLookup interface {
	GetFlaggedIDs(ctx context.Context, postIDs []string) (map[string]bool, error)
}

// Query selects the mentions to return. An empty Sentiment returns every post.
type Query struct {
	Sections  []string
	Keywords  []string
	Limit     int
	Sentiment enums.Sentiment
}

// Service runs the mention pipeline: fetch, score, annotate and aggregate.
type Service struct {
	logger  *slog.Logger
	fetcher Fetcher
	scorer  Scorer
	flags   FlagLookup
	clock   clockwork.Clock
}

// NewService wires the pipeline. flags may be nil, in which case every post
// is reported as pending.
func NewService(logger *slog.Logger, fetcher Fetcher, scorer Scorer, flags FlagLookup, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		logger:  logger,
		fetcher: fetcher,
		scorer:  scorer,
		flags:   flags,
		clock:   clock,
	}
}

// GetRecentMentions returns the scored mentions for q and their average
// sentiment. Per-section and per-post failures degrade the result instead of
// failing it; only invalid input is an error.
func (s *Service) GetRecentMentions(ctx context.Context, q Query) (models.MentionsResponse, error) {
	start := s.clock.Now()
	resp := models.MentionsResponse{Posts: []models.Post{}, Sections: []models.SectionSummary{}}

	if q.Limit < 0 {
		return resp, errors.Wrap(ErrInvalidLimit, "get recent mentions")
	}

	posts, err := s.fetcher.Fetch(ctx, q.Sections, q.Keywords, q.Limit)
	if err != nil {
		return resp, errors.Wrap(err, "get recent mentions: fetch")
	}
	posts = s.scorer.Score(posts)

	now := s.clock.Now()
	for i := range posts {
		posts[i].TimeAgo = TimeAgo(now, posts[i].CreatedAt)
		posts[i].Status = enums.PostStatusPending
	}
	s.markFlagged(ctx, posts)

	if q.Sentiment != enums.SentimentUnknown {
		posts = filterBySentiment(posts, q.Sentiment)
	}

	resp.Posts = posts
	resp.AverageSentiment = Average(posts)
	sections, _ := matchers.NormalizeSections(q.Sections)
	resp.Sections = summarize(sections, posts)

	metrics.MentionRequestDuration.Observe(s.clock.Since(start).Seconds())
	metrics.MentionsReturned.Observe(float64(len(posts)))
	metrics.AverageSentiment.Set(resp.AverageSentiment)

	s.logger.Debug("recent mentions", "sections", len(q.Sections), "keywords", len(q.Keywords), "posts", len(posts), "average", resp.AverageSentiment)
	return resp, nil
}

func (s *Service) markFlagged(ctx context.Context, posts []models.Post) {
	if s.flags == nil || len(posts) == 0 {
		return
	}

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	flagged, err := s.flags.GetFlaggedIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to load flags, reporting posts as pending", "error", err)
		return
	}
	for i := range posts {
		if flagged[posts[i].ID] {
			posts[i].Status = enums.PostStatusFlagged
		}
	}
}

// Average is the mean sentiment score of posts, or 0 for no posts.
func Average(posts []models.Post) float64 {
	if len(posts) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range posts {
		sum += p.Score()
	}
	return sum / float64(len(posts))
}

func filterBySentiment(posts []models.Post, sentiment enums.Sentiment) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.SentimentLabel == sentiment {
			out = append(out, p)
		}
	}
	return out
}

func summarize(sections []string, posts []models.Post) []models.SectionSummary {
	summaries := make([]models.SectionSummary, 0, len(sections))
	for _, section := range sections {
		var matched []models.Post
		for _, p := range posts {
			if matchers.SameSection(p.Section, section) {
				matched = append(matched, p)
			}
		}
		summaries = append(summaries, models.SectionSummary{
			Name:             section,
			Mentions:         len(matched),
			AverageSentiment: Average(matched),
		})
	}
	return summaries
}

// TimeAgo renders the age of t relative to now the way the dashboard shows it.
func TimeAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
