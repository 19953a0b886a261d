package sentiment

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"github.com/kova98/redditscope.api/enums"
	"github.com/kova98/redditscope.api/metrics"
	"github.com/kova98/redditscope.api/models"
)

// Label thresholds. Both boundaries are neutral.
const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

var ErrClassification = errors.New("classification failed")

// Typographic apostrophes are folded to ASCII so contractions such as
// "isn’t" are recognized as negations.
var apostrophes = strings.NewReplacer("\u2019", "'", "\u2018", "'", "\u02bc", "'")

type Scorer struct {
	logger   *slog.Logger
	analyzer *govader.SentimentIntensityAnalyzer
	gate     LanguageGate
}

// NewScorer returns a VADER scorer. gate may be nil, in which case every
// language is scored.
func NewScorer(logger *slog.Logger, gate LanguageGate) *Scorer {
	return &Scorer{
		logger:   logger,
		analyzer: govader.NewSentimentIntensityAnalyzer(),
		gate:     gate,
	}
}

// Classify returns the compound sentiment of text in [-1, 1], rounded to four
// decimals.
func (s *Scorer) Classify(text string) (float64, error) {
	if !utf8.ValidString(text) {
		return 0, fmt.Errorf("%w: invalid utf-8", ErrClassification)
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	if s.gate != nil && !s.gate.Supported(text) {
		return 0, fmt.Errorf("%w: unsupported language", ErrClassification)
	}

	compound := s.analyzer.PolarityScores(apostrophes.Replace(text)).Compound
	if math.IsNaN(compound) {
		return 0, fmt.Errorf("%w: no score", ErrClassification)
	}
	return round4(math.Max(-1, math.Min(1, compound))), nil
}

// Score sets the sentiment of every post in place and returns the same slice.
// A post that cannot be classified is scored neutral.
func (s *Scorer) Score(posts []models.Post) []models.Post {
	for i := range posts {
		p := &posts[i]

		score, err := s.Classify(postText(*p))
		if err != nil {
			s.logger.Debug("scoring post as neutral", "post_id", p.ID, "error", err)
			metrics.ClassificationFailuresTotal.Inc()
			score = 0
		}

		p.SentimentScore = &score
		p.SentimentLabel = Label(score)
		metrics.SentimentScore.Observe(score)
	}
	return posts
}

func Label(score float64) enums.Sentiment {
	switch {
	case score > PositiveThreshold:
		return enums.SentimentPositive
	case score < NegativeThreshold:
		return enums.SentimentNegative
	default:
		return enums.SentimentNeutral
	}
}

func postText(p models.Post) string {
	if p.Body == "" {
		return p.Title
	}
	return p.Title + "\n" + p.Body
}

func round4(f float64) float64 {
	r := math.Round(f*10000) / 10000
	if r == 0 {
		return 0 // avoid -0 in responses
	}
	return r
}
