package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kova98/redditscope.api/config"
	"github.com/kova98/redditscope.api/data"
	"github.com/kova98/redditscope.api/enums"
	"github.com/kova98/redditscope.api/matchers"
	"github.com/kova98/redditscope.api/mentions"
	"github.com/kova98/redditscope.api/models"
)

type MentionService interface {
	GetRecentMentions(ctx context.Context, q mentions.Query) (models.MentionsResponse, error)
}

type SectionLister interface {
	GetSections(ctx context.Context) ([]data.Section, error)
}

type KeywordLister interface {
	GetKeywords(ctx context.Context) ([]data.Keyword, error)
}

// MentionDefaults fill in the parameters a request leaves out.
type MentionDefaults struct {
	Sections []string
	Keywords []string
	Limit    int
	MaxLimit int
}

func DefaultsFromConfig(c config.AppConfig) MentionDefaults {
	return MentionDefaults{
		Sections: c.DefaultSections,
		Keywords: c.DefaultKeywords,
		Limit:    c.DefaultLimit,
		MaxLimit: c.MaxLimit,
	}
}

type MentionHandler struct {
	logger   *slog.Logger
	service  MentionService
	sections SectionLister
	keywords KeywordLister
	defaults MentionDefaults
}

func NewMentionHandler(logger *slog.Logger, service MentionService, sections SectionLister, keywords KeywordLister, defaults MentionDefaults) *MentionHandler {
	return &MentionHandler{
		logger:   logger,
		service:  service,
		sections: sections,
		keywords: keywords,
		defaults: defaults,
	}
}

// GetRecentMentions serves GET /recent-mentions. Omitted sections and keywords
// come from the stores, then from the configured defaults. A parameter that is
// present but empty is honored and yields an empty result.
func (h *MentionHandler) GetRecentMentions(w http.ResponseWriter, r *http.Request) Result {
	query := r.URL.Query()
	q := mentions.Query{Limit: h.defaults.Limit}

	if query.Has("limit") {
		limit, err := strconv.Atoi(query.Get("limit"))
		if err != nil {
			return BadRequest("Limit must be an integer.")
		}
		q.Limit = limit
	}
	if h.defaults.MaxLimit > 0 && q.Limit > h.defaults.MaxLimit {
		q.Limit = h.defaults.MaxLimit
	}

	if s := query.Get("sentiment"); s != "" {
		sentiment, err := enums.ParseSentiment(s)
		if err != nil {
			return BadRequest("Sentiment must be positive, neutral or negative.")
		}
		q.Sentiment = sentiment
	}

	if query.Has("sections") {
		sections, invalid := matchers.NormalizeSections(config.SplitList(query.Get("sections")))
		if len(invalid) > 0 {
			return BadRequest(fmt.Sprintf("Invalid section %q: sections must be 2-21 characters of letters, digits or underscores.", invalid[0]))
		}
		q.Sections = sections
	} else {
		q.Sections = h.storedSections(r.Context())
	}

	if query.Has("keywords") {
		q.Keywords = config.SplitList(query.Get("keywords"))
	} else {
		q.Keywords = h.storedKeywords(r.Context())
	}

	res, err := h.service.GetRecentMentions(r.Context(), q)
	if errors.Is(err, mentions.ErrInvalidLimit) {
		return BadRequest("Limit must not be negative.")
	}
	if err != nil {
		return InternalError(err, "get recent mentions: ")
	}

	return Ok(res)
}

func (h *MentionHandler) storedSections(ctx context.Context) []string {
	if h.sections == nil {
		return h.defaults.Sections
	}
	stored, err := h.sections.GetSections(ctx)
	if err != nil {
		h.logger.Warn("failed to load sections, using defaults", "error", err)
		return h.defaults.Sections
	}
	if len(stored) == 0 {
		return h.defaults.Sections
	}

	names := make([]string, 0, len(stored))
	for _, s := range stored {
		names = append(names, s.Name)
	}
	return names
}

func (h *MentionHandler) storedKeywords(ctx context.Context) []string {
	if h.keywords == nil {
		return h.defaults.Keywords
	}
	stored, err := h.keywords.GetKeywords(ctx)
	if err != nil {
		h.logger.Warn("failed to load keywords, using defaults", "error", err)
		return h.defaults.Keywords
	}
	if len(stored) == 0 {
		return h.defaults.Keywords
	}

	kws := make([]string, 0, len(stored))
	for _, k := range stored {
		kws = append(kws, k.Keyword)
	}
	return kws
}
