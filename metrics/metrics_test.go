package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRequestsTotal_Labels(t *testing.T) {
	before := testutil.ToFloat64(SourceRequestsTotal.WithLabelValues("reddit", "ok"))

	SourceRequestsTotal.WithLabelValues("reddit", "ok").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(SourceRequestsTotal.WithLabelValues("reddit", "ok")))
}

func TestSentimentScore_Observes(t *testing.T) {
	SentimentScore.Observe(0.5)

	var m dto.Metric
	require.NoError(t, SentimentScore.Write(&m))
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestAverageSentiment_Gauge(t *testing.T) {
	AverageSentiment.Set(-0.25)
	assert.Equal(t, -0.25, testutil.ToFloat64(AverageSentiment))
}

func TestProxyCollector(t *testing.T) {
	collector := NewProxyCollector(func() map[string]ProxyCounts {
		return map[string]ProxyCounts{"10.0.0.1:1080": {Successes: 3, Failures: 1}}
	})

	expected := `
# HELP redditscope_proxy_requests_total Requests per proxy host by outcome
# TYPE redditscope_proxy_requests_total counter
redditscope_proxy_requests_total{host="10.0.0.1:1080",result="failure"} 1
redditscope_proxy_requests_total{host="10.0.0.1:1080",result="success"} 3
`
	require.NoError(t, testutil.CollectAndCompare(collector, strings.NewReader(expected)))
}
