package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetcher metrics
var (
	// SourceRequestsTotal counts forum API requests by source and outcome
	// (ok, rate_limited, error).
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redditscope_source_requests_total",
			Help: "Forum API requests by source and status",
		},
		[]string{"source", "status"},
	)

	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redditscope_source_request_duration_seconds",
			Help:    "Forum API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	SourceRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redditscope_source_retries_total",
			Help: "Forum API retries by source",
		},
		[]string{"source"},
	)

	// SectionsSkippedTotal counts sections dropped from a fetch after retries.
	SectionsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redditscope_sections_skipped_total",
			Help: "Sections skipped because the source was unavailable",
		},
		[]string{"source"},
	)

	PostsMatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redditscope_posts_matched_total",
			Help: "Fetched posts that matched at least one keyword",
		},
	)
)

// Scorer metrics
var (
	SentimentScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redditscope_sentiment_score",
			Help:    "Distribution of post sentiment scores",
			Buckets: []float64{-0.75, -0.5, -0.25, -0.05, 0.05, 0.25, 0.5, 0.75, 1},
		},
	)

	ClassificationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redditscope_classification_failures_total",
			Help: "Posts that could not be classified and were scored neutral",
		},
	)
)

// Pipeline metrics
var (
	MentionRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redditscope_mention_request_duration_seconds",
			Help:    "Duration of a recent-mentions pipeline run",
			Buckets: prometheus.DefBuckets,
		},
	)

	MentionsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "redditscope_mentions_returned",
			Help:    "Posts returned per recent-mentions request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	AverageSentiment = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "redditscope_average_sentiment",
			Help: "Average sentiment of the last recent-mentions response",
		},
	)
)
