package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)
	require.NotNil(t, m)

	assert.NotNil(t, m.SearchRequestsTotal)
	assert.NotNil(t, m.SearchDurationSeconds)
	assert.NotNil(t, m.SearchResults)
	assert.NotNil(t, m.WebhookDurationSeconds)
	assert.NotNil(t, m.WebhookEventsTotal)
	assert.NotNil(t, m.LineAPIErrorsTotal)
	assert.NotNil(t, m.RateLimiterDropped)
	assert.NotNil(t, m.SingleflightDedupTotal)
}

func TestNewRegistersOncePerRegistry(t *testing.T) {
	t.Parallel()

	// Separate registries must not conflict
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())

	registry := prometheus.NewRegistry()
	New(registry)
	assert.Panics(t, func() { New(registry) }, "duplicate registration should panic")
}

func TestRecordMethods(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.RecordSearchRequest("gourmet", "success", 0.12)
	m.RecordSearchRequest("gourmet", "success", 0.3)
	m.RecordSearchRequest("genre", "error", 5)
	m.RecordSearchResults("gourmet", 2)
	m.RecordWebhook("text", "success", 0.5)
	m.RecordLineAPIError("reply", "invalid_token")
	m.RecordRateLimiterDrop("global")
	m.RecordSingleflightDedup("genre")
	m.SetRateLimiterActiveKeys("chat", 4)

	assert.InDelta(t, 2, testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("gourmet", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SearchRequestsTotal.WithLabelValues("genre", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.WebhookEventsTotal.WithLabelValues("text", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LineAPIErrorsTotal.WithLabelValues("reply", "invalid_token")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateLimiterDropped.WithLabelValues("global")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SingleflightDedupTotal.WithLabelValues("genre")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.RateLimiterActiveKeys.WithLabelValues("chat")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.SearchResults))
}
