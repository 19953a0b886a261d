package sources

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/proxy"

	"github.com/kova98/redditscope.api/metrics"
)

// ClientPool hands out HTTP clients for forum requests and tracks how each
// one fares.
type ClientPool interface {
	Next(ctx context.Context) (*http.Client, string, error)
	MarkRateLimited(host string, cooldown time.Duration)
	MarkSuccess(host string)
	MarkFailure(host string)
}

const directHost = "direct"

// DirectPool always returns the same client.
type DirectPool struct {
	client *http.Client
}

func NewDirectPool(client *http.Client) *DirectPool {
	return &DirectPool{client: client}
}

func (p *DirectPool) Next(ctx context.Context) (*http.Client, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return p.client, directHost, nil
}

func (p *DirectPool) MarkRateLimited(string, time.Duration) {}
func (p *DirectPool) MarkSuccess(string)                    {}
func (p *DirectPool) MarkFailure(string)                    {}

// ProxyPool rotates requests over SOCKS5 proxies. A proxy is skipped while it
// is cooling down after a rate limit or was used less than minInterval ago.
type ProxyPool struct {
	clients     []*http.Client
	hosts       []string
	next        int
	cooldowns   map[int]time.Time
	lastUsed    map[int]time.Time
	successes   map[int]int
	failures    map[int]int
	mu          sync.Mutex
	minInterval time.Duration
	now         func() time.Time
}

type ProxyStats struct {
	Successes int
	Failures  int
}

func NewProxyPool(proxyURLs []string, timeout, minInterval time.Duration) (*ProxyPool, error) {
	if len(proxyURLs) == 0 {
		return nil, errors.New("no proxy URLs provided")
	}

	clients := make([]*http.Client, 0, len(proxyURLs))
	hosts := make([]string, 0, len(proxyURLs))
	seen := make(map[string]bool)

	for _, proxyURL := range proxyURLs {
		if seen[proxyURL] {
			if parsed, err := url.Parse(proxyURL); err == nil {
				slog.Warn("duplicate proxy URL, skipping", "host", parsed.Host)
			}
			continue
		}
		seen[proxyURL] = true

		client, err := NewHTTPClient(proxyURL, timeout)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)

		// host only, never credentials
		if parsed, err := url.Parse(proxyURL); err == nil {
			hosts = append(hosts, parsed.Host)
		} else {
			hosts = append(hosts, "unknown")
		}
	}

	slog.Info("proxy pool created", "count", len(clients), "hosts", hosts)

	return &ProxyPool{
		clients:     clients,
		hosts:       hosts,
		cooldowns:   make(map[int]time.Time),
		lastUsed:    make(map[int]time.Time),
		successes:   make(map[int]int),
		failures:    make(map[int]int),
		minInterval: minInterval,
		now:         time.Now,
	}, nil
}

// NewHTTPClient returns a client with the given timeout, dialing through a
// SOCKS5 proxy when proxyURL has the socks5 scheme.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	client := &http.Client{Timeout: timeout}

	if proxyURL == "" {
		return client, nil
	}

	parsedURL, err := url.Parse(proxyURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "socks5" {
		return client, nil
	}

	var auth *proxy.Auth
	if parsedURL.User != nil {
		password, _ := parsedURL.User.Password()
		auth = &proxy.Auth{
			User:     parsedURL.User.Username(),
			Password: password,
		}
	}

	dialer, err := proxy.SOCKS5("tcp", parsedURL.Host, auth, proxy.Direct)
	if err != nil {
		return nil, err
	}

	client.Transport = &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}

	return client, nil
}

// Next returns the next available proxy client, waiting for one to come off
// cooldown if necessary. It gives up when ctx is done.
func (p *ProxyPool) Next(ctx context.Context) (*http.Client, string, error) {
	n := len(p.clients)

	for {
		p.mu.Lock()
		now := p.now()

		for attempt := 0; attempt < n; attempt++ {
			i := p.next % n
			p.next++

			if until, ok := p.cooldowns[i]; ok && now.Before(until) {
				continue
			}
			if last, ok := p.lastUsed[i]; ok && now.Sub(last) < p.minInterval {
				continue
			}

			p.lastUsed[i] = now
			p.mu.Unlock()
			return p.clients[i], p.hosts[i], nil
		}

		wait := p.soonestAvailable().Sub(now)
		p.mu.Unlock()

		slog.Debug("all proxies busy, waiting", "wait_ms", wait.Milliseconds())
		timer := time.NewTimer(max(wait, time.Millisecond))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, "", ctx.Err()
		case <-timer.C:
		}
	}
}

// soonestAvailable must be called with mu held.
func (p *ProxyPool) soonestAvailable() time.Time {
	var soonest time.Time
	for i := range p.clients {
		availableAt := p.lastUsed[i].Add(p.minInterval)
		if until, ok := p.cooldowns[i]; ok && until.After(availableAt) {
			availableAt = until
		}
		if soonest.IsZero() || availableAt.Before(soonest) {
			soonest = availableAt
		}
	}
	return soonest
}

// MarkRateLimited puts a proxy on cooldown. A zero cooldown uses 30 seconds.
func (p *ProxyPool) MarkRateLimited(host string, cooldown time.Duration) {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(host); i >= 0 {
		p.cooldowns[i] = p.now().Add(cooldown)
		slog.Debug("proxy on cooldown", "host", host, "duration_seconds", cooldown.Seconds())
	}
}

func (p *ProxyPool) MarkSuccess(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(host); i >= 0 {
		p.successes[i]++
	}
}

func (p *ProxyPool) MarkFailure(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := p.indexOf(host); i >= 0 {
		p.failures[i]++
	}
}

// Stats returns success and failure counts per proxy host.
func (p *ProxyPool) Stats() map[string]ProxyStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := make(map[string]ProxyStats, len(p.hosts))
	for i, h := range p.hosts {
		stats[h] = ProxyStats{Successes: p.successes[i], Failures: p.failures[i]}
	}
	return stats
}

// Collector exposes Stats as the redditscope_proxy_requests_total metric.
func (p *ProxyPool) Collector() prometheus.Collector {
	return metrics.NewProxyCollector(func() map[string]metrics.ProxyCounts {
		stats := p.Stats()
		counts := make(map[string]metrics.ProxyCounts, len(stats))
		for host, s := range stats {
			counts[host] = metrics.ProxyCounts{Successes: s.Successes, Failures: s.Failures}
		}
		return counts
	})
}

func (p *ProxyPool) indexOf(host string) int {
	for i, h := range p.hosts {
		if h == host {
			return i
		}
	}
	return -1
}
