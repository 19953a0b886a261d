package sources

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kova98/redditscope.api/enums"
	"github.com/kova98/redditscope.api/models"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var base = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	fn    func(ctx context.Context, section, cursor string) (Page, error)
	mu    sync.Mutex
	calls map[string]int
}

func newFakeSource(fn func(ctx context.Context, section, cursor string) (Page, error)) *fakeSource {
	return &fakeSource{fn: fn, calls: make(map[string]int)}
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) RecentPosts(ctx context.Context, section, cursor string, _ int) (Page, error) {
	s.mu.Lock()
	s.calls[section]++
	s.mu.Unlock()
	return s.fn(ctx, section, cursor)
}

func (s *fakeSource) callsFor(section string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[section]
}

// staticSource serves fixed posts per section.
func staticSource(posts map[string][]models.Post) *fakeSource {
	return newFakeSource(func(_ context.Context, section, _ string) (Page, error) {
		p, ok := posts[section]
		if !ok {
			return Page{}, &StatusError{Source: "fake", Code: http.StatusNotFound}
		}
		return Page{Posts: p}, nil
	})
}

func post(id, section, title string, age time.Duration) models.Post {
	return models.Post{ID: id, Section: section, Title: title, Author: "u_" + id, CreatedAt: base.Add(-age)}
}

func fastOptions() FetcherOptions {
	return FetcherOptions{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		SectionTimeout: time.Second,
	}
}

func TestFetch_NewestMatchingPostWithinLimit(t *testing.T) {
	source := staticSource(map[string][]models.Post{
		"technology": {
			post("new", "technology", "New AI model released", time.Minute),
			post("old", "technology", "Keyboard recommendations", time.Hour),
		},
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"technology"}, []string{"AI"}, 1)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "new", posts[0].ID)
	assert.Equal(t, []string{"AI"}, posts[0].KeywordsMatched)
}

func TestFetch_MatchedKeywordsOccurInText(t *testing.T) {
	source := staticSource(map[string][]models.Post{
		"SaaS": {
			post("1", "SaaS", "Looking for a Merchant of Record", time.Minute),
			{ID: "2", Section: "SaaS", Title: "Billing question", Body: "We use CLEVERBRIDGE today", CreatedAt: base.Add(-2 * time.Minute)},
			post("3", "SaaS", "Unrelated post about hiring", 3*time.Minute),
			post("4", "SaaS", "scaling past 1M ARR with an MoR", 4*time.Minute),
		},
	})
	keywords := []string{"Cleverbridge", "Merchant of Record", "MoR", "scaling"}
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"SaaS"}, keywords, 25)

	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		require.NotEmpty(t, p.KeywordsMatched, p.ID)
		text := strings.ToLower(p.Title + " " + p.Body)
		for _, kw := range p.KeywordsMatched {
			assert.Contains(t, text, strings.ToLower(kw), p.ID)
		}
	}
	assert.Equal(t, []string{"MoR", "scaling"}, posts[2].KeywordsMatched)
}

func TestFetch_NeverExceedsLimit(t *testing.T) {
	var many []models.Post
	for i := 0; i < 30; i++ {
		many = append(many, post(string(rune('a'+i)), "golang", "golang tip", time.Duration(i)*time.Minute))
	}
	source := staticSource(map[string][]models.Post{"golang": many, "rust": many[:5]})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	for _, limit := range []int{0, 1, 7, 30, 100} {
		posts, err := fetcher.Fetch(context.Background(), []string{"golang", "rust"}, []string{"golang"}, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(posts), limit)
	}
}

func TestFetch_EmptyConfiguration(t *testing.T) {
	source := staticSource(nil)
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{}, []string{"AI"}, 10)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	posts, err = fetcher.Fetch(context.Background(), []string{"technology"}, []string{" "}, 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Zero(t, source.callsFor("technology"))
}

func TestFetch_NegativeLimit(t *testing.T) {
	fetcher := NewFetcher(testLogger, staticSource(nil), fastOptions())

	_, err := fetcher.Fetch(context.Background(), []string{"technology"}, []string{"AI"}, -1)

	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestFetch_FailingSectionIsSkipped(t *testing.T) {
	source := newFakeSource(func(_ context.Context, section, _ string) (Page, error) {
		if section == "broken" {
			return Page{}, errors.New("connection refused")
		}
		return Page{Posts: []models.Post{post("ok", section, "AI news", time.Minute)}}, nil
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"broken", "technology"}, []string{"AI"}, 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "technology", posts[0].Section)
	assert.Equal(t, 3, source.callsFor("broken"), "one attempt plus two retries")
}

func TestFetch_AllSectionsFail(t *testing.T) {
	source := newFakeSource(func(context.Context, string, string) (Page, error) {
		return Page{}, &StatusError{Source: "fake", Code: http.StatusBadGateway}
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"a1", "b2"}, []string{"AI"}, 10)

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFetch_RateLimitedThenRecovers(t *testing.T) {
	source := newFakeSource(nil)
	source.fn = func(_ context.Context, section, _ string) (Page, error) {
		if source.callsFor(section) < 3 {
			return Page{}, &StatusError{Source: "fake", Code: http.StatusTooManyRequests}
		}
		return Page{Posts: []models.Post{post("1", section, "AI", time.Minute)}}, nil
	}
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"technology"}, []string{"AI"}, 10)

	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 3, source.callsFor("technology"))
}

func TestFetch_RateLimitEscalatesAfterRetries(t *testing.T) {
	source := newFakeSource(func(context.Context, string, string) (Page, error) {
		return Page{}, &StatusError{Source: "fake", Code: http.StatusTooManyRequests}
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	_, err := fetcher.fetchSection(context.Background(), "technology", []string{"AI"}, 10)

	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, source.callsFor("technology"))
}

func TestFetch_PermanentErrorIsNotRetried(t *testing.T) {
	source := newFakeSource(func(context.Context, string, string) (Page, error) {
		return Page{}, &StatusError{Source: "fake", Code: http.StatusForbidden}
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	_, err := fetcher.fetchSection(context.Background(), "private_sub", []string{"AI"}, 10)

	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.Equal(t, 1, source.callsFor("private_sub"))
}

func TestFetch_MergeOrderIndependentOfCompletionOrder(t *testing.T) {
	// The first section answers last.
	source := newFakeSource(func(_ context.Context, section, _ string) (Page, error) {
		if section == "slow" {
			time.Sleep(20 * time.Millisecond)
		}
		return Page{Posts: []models.Post{post(section+"-1", section, "AI", time.Minute)}}, nil
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	for i := 0; i < 3; i++ {
		posts, err := fetcher.Fetch(context.Background(), []string{"slow", "fast"}, []string{"AI"}, 10)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		// equal timestamps keep section order
		assert.Equal(t, "slow-1", posts[0].ID)
		assert.Equal(t, "fast-1", posts[1].ID)
	}
}

func TestFetch_SortsAcrossSectionsNewestFirst(t *testing.T) {
	source := staticSource(map[string][]models.Post{
		"SaaS":    {post("s1", "SaaS", "MoR", 10*time.Minute), post("s2", "SaaS", "MoR", 30*time.Minute)},
		"startup": {post("t1", "startup", "MoR", 5*time.Minute), post("t2", "startup", "MoR", 20*time.Minute)},
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"SaaS", "startup"}, []string{"mor"}, 3)

	require.NoError(t, err)
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"t1", "s1", "t2"}, ids)
}

func TestFetch_DropsDuplicateIDs(t *testing.T) {
	shared := post("dup", "SaaS", "MoR", time.Minute)
	source := staticSource(map[string][]models.Post{
		"SaaS":   {shared},
		"Stripe": {shared},
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())

	posts, err := fetcher.Fetch(context.Background(), []string{"SaaS", "Stripe", "saas"}, []string{"MoR"}, 10)

	require.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, 1, source.callsFor("SaaS"), "duplicate sections are fetched once")
}

func TestFetch_FollowsCursor(t *testing.T) {
	source := newFakeSource(func(_ context.Context, section, cursor string) (Page, error) {
		switch cursor {
		case "":
			return Page{Posts: []models.Post{post("p1", section, "nothing here", time.Minute)}, Cursor: "t3_p1"}, nil
		case "t3_p1":
			return Page{Posts: []models.Post{post("p2", section, "AI at last", time.Hour)}, Cursor: "t3_p2"}, nil
		}
		return Page{}, errors.New("unexpected cursor " + cursor)
	})
	opts := fastOptions()
	opts.MaxPages = 2
	fetcher := NewFetcher(testLogger, source, opts)

	posts, err := fetcher.Fetch(context.Background(), []string{"technology"}, []string{"AI"}, 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "p2", posts[0].ID)
	assert.Equal(t, 2, source.callsFor("technology"), "stops at MaxPages")
}

func TestFetch_ExactMatchMode(t *testing.T) {
	source := staticSource(map[string][]models.Post{
		"SaaS": {post("1", "SaaS", "more tools", time.Minute), post("2", "SaaS", "best MoR?", 2*time.Minute)},
	})
	opts := fastOptions()
	opts.MatchMode = enums.MatchModeExact
	fetcher := NewFetcher(testLogger, source, opts)

	posts, err := fetcher.Fetch(context.Background(), []string{"SaaS"}, []string{"mor"}, 10)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "2", posts[0].ID)
}

func TestFetch_CancelledContextReturnsEmpty(t *testing.T) {
	source := newFakeSource(func(ctx context.Context, section, _ string) (Page, error) {
		<-ctx.Done()
		return Page{}, ctx.Err()
	})
	fetcher := NewFetcher(testLogger, source, fastOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	posts, err := fetcher.Fetch(ctx, []string{"technology", "SaaS"}, []string{"AI"}, 10)

	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, source.callsFor("technology"), "cancellation is not retried")
}

func TestRetryAfterBackOff_UsesHintWithinMax(t *testing.T) {
	b := &retryAfterBackOff{BackOff: &constantBackOff{d: time.Millisecond}, max: time.Second}

	b.hint(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, b.NextBackOff())
	assert.Equal(t, time.Millisecond, b.NextBackOff(), "hint applies once")

	b.hint(time.Minute)
	assert.Equal(t, time.Millisecond, b.NextBackOff(), "hints above max are ignored")
}

type constantBackOff struct{ d time.Duration }

func (c *constantBackOff) NextBackOff() time.Duration { return c.d }
func (c *constantBackOff) Reset()                     {}

func TestTruncateError_RuneBoundary(t *testing.T) {
	msg := strings.Repeat("a", 299) + "é" + strings.Repeat("b", 50)

	got := truncateError(errors.New(msg)).Error()

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 299)+"...", got)

	short := errors.New("short")
	assert.Same(t, short, truncateError(short))
}
