package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/kova98/redditscope.api/enums"
	"github.com/kova98/redditscope.api/matchers"
	"github.com/kova98/redditscope.api/metrics"
	"github.com/kova98/redditscope.api/models"
)

// Page is one batch of posts from a section, newest first. Cursor is empty
// when the section has no older posts.
type Page struct {
	Posts  []models.Post
	Cursor string
}

// Source lists the most recent posts of a forum section.
type Source interface {
	Name() string
	RecentPosts(ctx context.Context, section, cursor string, pageSize int) (Page, error)
}

const maxPageSize = 100

type FetcherOptions struct {
	PageSize       int
	MaxPages       int
	Concurrency    int
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	SectionTimeout time.Duration
	MatchMode      enums.MatchMode
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.PageSize <= 0 || o.PageSize > maxPageSize {
		o.PageSize = maxPageSize
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 1
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 500 * time.Millisecond
	}
	if o.MaxBackoff < o.InitialBackoff {
		o.MaxBackoff = o.InitialBackoff
	}
	if o.SectionTimeout <= 0 {
		o.SectionTimeout = 30 * time.Second
	}
	if o.MatchMode == enums.MatchModeInvalid {
		o.MatchMode = enums.MatchModeBroad
	}
	return o
}

// Fetcher collects keyword mentions from the recent posts of several sections.
type Fetcher struct {
	logger *slog.Logger
	source Source
	opts   FetcherOptions
}

func NewFetcher(logger *slog.Logger, source Source, opts FetcherOptions) *Fetcher {
	return &Fetcher{
		logger: logger,
		source: source,
		opts:   opts.withDefaults(),
	}
}

// Fetch returns up to limit posts mentioning at least one keyword.
//
// Sections are fetched concurrently but merged in the order they were given,
// then stably sorted by creation time, newest first, and cut to limit. A
// section that fails is logged and skipped; if every section fails the
// result is empty. Only a negative limit is an error.
func (f *Fetcher) Fetch(ctx context.Context, sections, keywords []string, limit int) ([]models.Post, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}

	sections, invalid := matchers.NormalizeSections(sections)
	if len(invalid) > 0 {
		f.logger.Warn("ignoring invalid sections", "sections", invalid)
	}
	keywords = matchers.Normalize(keywords)
	if len(sections) == 0 || len(keywords) == 0 || limit == 0 {
		f.logger.Debug("nothing to fetch", "sections", len(sections), "keywords", len(keywords), "limit", limit)
		return []models.Post{}, nil
	}

	results := make([][]models.Post, len(sections))
	var g errgroup.Group
	g.SetLimit(f.opts.Concurrency)
	for i, section := range sections {
		g.Go(func() error {
			posts, err := f.fetchSection(ctx, section, keywords, limit)
			if err != nil {
				metrics.SectionsSkippedTotal.WithLabelValues(f.source.Name()).Inc()
				f.logger.Warn("skipping section", "source", f.source.Name(), "section", section, "error", truncateError(err))
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	_ = g.Wait()

	merged := mergePosts(results, limit)
	metrics.PostsMatchedTotal.Add(float64(len(merged)))
	return merged, nil
}

func (f *Fetcher) fetchSection(ctx context.Context, section string, keywords []string, limit int) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, f.opts.SectionTimeout)
	defer cancel()

	var matched []models.Post
	seen := make(map[string]bool)
	cursor := ""
	for page := 0; page < f.opts.MaxPages; page++ {
		res, err := f.fetchPage(ctx, section, cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, section, err)
		}

		for _, post := range res.Posts {
			if seen[post.ID] {
				continue
			}
			seen[post.ID] = true
			kws := matchers.MatchKeywords(post.Title+" "+post.Body, keywords, f.opts.MatchMode)
			if len(kws) == 0 {
				continue
			}
			post.KeywordsMatched = kws
			matched = append(matched, post)
			if len(matched) >= limit {
				return matched, nil
			}
		}

		if res.Cursor == "" || res.Cursor == cursor || len(res.Posts) == 0 {
			break
		}
		cursor = res.Cursor
	}

	f.logger.Debug("fetched section", "source", f.source.Name(), "section", section, "matches", len(matched))
	return matched, nil
}

// fetchPage requests one page, retrying throttled and transient failures with
// exponential backoff at most MaxRetries times.
func (f *Fetcher) fetchPage(ctx context.Context, section, cursor string) (Page, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.opts.InitialBackoff
	exp.MaxInterval = f.opts.MaxBackoff
	exp.MaxElapsedTime = 0

	hinted := &retryAfterBackOff{
		BackOff: backoff.WithMaxRetries(exp, uint64(f.opts.MaxRetries)),
		max:     f.opts.MaxBackoff,
	}
	policy := backoff.WithContext(hinted, ctx)

	var page Page
	op := func() error {
		var err error
		page, err = f.source.RecentPosts(ctx, section, cursor, f.opts.PageSize)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			hinted.hint(statusErr.RetryAfter)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		metrics.SourceRetriesTotal.WithLabelValues(f.source.Name()).Inc()
		f.logger.Debug("retrying section fetch", "section", section, "wait_ms", wait.Milliseconds(), "error", truncateError(err))
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return Page{}, err
	}
	return page, nil
}

// retryAfterBackOff honors a server supplied Retry-After delay for the next
// wait, as long as it does not exceed max.
type retryAfterBackOff struct {
	backoff.BackOff
	max  time.Duration
	next time.Duration
}

func (b *retryAfterBackOff) hint(d time.Duration) {
	if d > 0 && d <= b.max {
		b.next = d
	}
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	d := b.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.next > d {
		d = b.next
	}
	b.next = 0
	return d
}

// mergePosts concatenates per-section results in section order, drops
// duplicate ids, sorts newest first and applies limit. The sort is stable so
// posts with equal timestamps keep section order.
func mergePosts(results [][]models.Post, limit int) []models.Post {
	seen := make(map[string]bool)
	merged := make([]models.Post, 0)
	for _, posts := range results {
		for _, p := range posts {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			merged = append(merged, p)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
