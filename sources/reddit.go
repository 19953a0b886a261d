package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kova98/redditscope.api/models"
)

const redditBaseURL = "https://www.reddit.com"

// RedditSource reads the public /r/{section}/new listing.
type RedditSource struct {
	pool    ClientPool
	baseURL string
}

func NewRedditSource(pool ClientPool, baseURL string) *RedditSource {
	if baseURL == "" {
		baseURL = redditBaseURL
	}
	return &RedditSource{pool: pool, baseURL: baseURL}
}

func (s *RedditSource) Name() string { return "reddit" }

func (s *RedditSource) RecentPosts(ctx context.Context, section, cursor string, pageSize int) (Page, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pageSize))
	query.Set("raw_json", "1")
	if cursor != "" {
		query.Set("after", cursor)
	}
	u := fmt.Sprintf("%s/r/%s/new.json?%s", s.baseURL, url.PathEscape(section), query.Encode())

	// Make the request look like a real browser to avoid blocks
	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json",
		"Accept-Language": "en-US,en;q=0.9",
	}

	var listing models.RedditListing
	if err := getJSON(ctx, s.pool, s.Name(), u, headers, &listing); err != nil {
		return Page{}, err
	}

	page := Page{
		Posts:  make([]models.Post, 0, len(listing.Data.Children)),
		Cursor: listing.Data.After,
	}
	for _, child := range listing.Data.Children {
		if child.Kind != "" && child.Kind != "t3" {
			continue
		}
		post := child.Data
		if post.ID == "" || post.Stickied {
			continue
		}

		page.Posts = append(page.Posts, models.Post{
			ID:           post.ID,
			Section:      firstNonEmpty(post.Subreddit, section),
			Title:        post.Title,
			Body:         post.Selftext,
			Author:       post.Author,
			Permalink:    redditBaseURL + post.Permalink,
			Upvotes:      max(post.Score, 0),
			CommentCount: max(post.NumComments, 0),
			CreatedAt:    time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}

	return page, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
