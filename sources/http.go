package sources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kova98/redditscope.api/metrics"
)

// getJSON performs a GET through the pool and decodes a 200 response into dest.
func getJSON(ctx context.Context, pool ClientPool, source, url string, headers map[string]string, dest any) error {
	client, host, err := pool.Next(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := client.Do(req)
	metrics.SourceRequestDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		pool.MarkFailure(host)
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{
			Source:     source,
			Code:       resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		if errors.Is(statusErr, ErrRateLimited) {
			pool.MarkRateLimited(host, statusErr.RetryAfter)
			metrics.SourceRequestsTotal.WithLabelValues(source, "rate_limited").Inc()
		} else {
			pool.MarkFailure(host)
			metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		}
		return statusErr
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		pool.MarkFailure(host)
		metrics.SourceRequestsTotal.WithLabelValues(source, "error").Inc()
		return &DecodeError{Source: source, Err: err}
	}

	pool.MarkSuccess(host)
	metrics.SourceRequestsTotal.WithLabelValues(source, "ok").Inc()
	return nil
}

// parseRetryAfter understands the delay-seconds form of Retry-After.
func parseRetryAfter(v string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
