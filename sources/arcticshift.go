package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kova98/redditscope.api/models"
)

const (
	arcticShiftBaseURL     = "https://arctic-shift.photon-reddit.com"
	arcticShiftPostsFields = "id,subreddit,author,title,selftext,score,num_comments,created_utc"
)

// ArcticShiftSource reads posts from the ArcticShift archive search API. The
// cursor is derived from the created_utc of the oldest post in the page.
type ArcticShiftSource struct {
	pool    ClientPool
	baseURL string
}

func NewArcticShiftSource(pool ClientPool, baseURL string) *ArcticShiftSource {
	if baseURL == "" {
		baseURL = arcticShiftBaseURL
	}
	return &ArcticShiftSource{pool: pool, baseURL: baseURL}
}

func (s *ArcticShiftSource) Name() string { return "arcticshift" }

func (s *ArcticShiftSource) RecentPosts(ctx context.Context, section, cursor string, pageSize int) (Page, error) {
	query := url.Values{}
	query.Set("subreddit", section)
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("sort", "desc")
	query.Set("fields", arcticShiftPostsFields)
	if cursor != "" {
		query.Set("before", cursor)
	}
	u := fmt.Sprintf("%s/api/posts/search?%s", s.baseURL, query.Encode())

	var resp models.ArcticShiftSearchResponse[models.ArcticShiftPost]
	if err := getJSON(ctx, s.pool, s.Name(), u, map[string]string{"User-Agent": "redditscope"}, &resp); err != nil {
		return Page{}, err
	}
	if resp.Error != "" {
		return Page{}, &DecodeError{Source: s.Name(), Err: errors.New(resp.Error)}
	}

	page := Page{Posts: make([]models.Post, 0, len(resp.Data))}
	var oldest int64
	for _, post := range resp.Data {
		if post.ID == "" {
			continue
		}
		if oldest == 0 || post.CreatedUTC < oldest {
			oldest = post.CreatedUTC
		}

		sub := firstNonEmpty(post.Subreddit, section)
		page.Posts = append(page.Posts, models.Post{
			ID:           post.ID,
			Section:      sub,
			Title:        post.Title,
			Body:         post.Selftext,
			Author:       post.Author,
			Permalink:    buildPostPermalink(sub, post.ID),
			Upvotes:      max(post.Score, 0),
			CommentCount: max(post.NumComments, 0),
			CreatedAt:    time.Unix(post.CreatedUTC, 0).UTC(),
		})
	}

	// before is exclusive, so the next page starts one second later to keep
	// posts sharing the oldest timestamp. The fetcher drops the repeats.
	if len(resp.Data) >= pageSize && oldest > 0 {
		page.Cursor = strconv.FormatInt(oldest+1, 10)
	}
	return page, nil
}

func buildPostPermalink(subreddit, postID string) string {
	if subreddit == "" || postID == "" {
		return ""
	}
	return fmt.Sprintf("%s/r/%s/comments/%s", redditBaseURL, subreddit, postID)
}
