package metrics

import "github.com/prometheus/client_golang/prometheus"

type ProxyCounts struct {
	Successes int
	Failures  int
}

var proxyRequestsDesc = prometheus.NewDesc(
	"redditscope_proxy_requests_total",
	"Requests per proxy host by outcome",
	[]string{"host", "result"},
	nil,
)

type proxyCollector struct {
	stats func() map[string]ProxyCounts
}

// NewProxyCollector reports the counts returned by stats on every scrape.
func NewProxyCollector(stats func() map[string]ProxyCounts) prometheus.Collector {
	return &proxyCollector{stats: stats}
}

func (c *proxyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- proxyRequestsDesc
}

func (c *proxyCollector) Collect(ch chan<- prometheus.Metric) {
	for host, counts := range c.stats() {
		ch <- prometheus.MustNewConstMetric(proxyRequestsDesc, prometheus.CounterValue, float64(counts.Successes), host, "success")
		ch <- prometheus.MustNewConstMetric(proxyRequestsDesc, prometheus.CounterValue, float64(counts.Failures), host, "failure")
	}
}
