package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExporter_Counters(t *testing.T) {
	e := NewPrometheusExporter(DefaultConfig())

	e.RecordEnhance("general", "slack", "success", 120*time.Millisecond)
	e.RecordEnhance("general", "slack", "success", 80*time.Millisecond)
	e.RecordEnhance("agent", "general", "rate_limited", time.Second)
	e.RecordCacheLookup("general", true)
	e.RecordCacheLookup("general", false)
	e.RecordCacheLookup("general", false)
	e.RecordAttempt("openai", "success")
	e.RecordAttempt("openai", "rate_limited")
	e.RecordRetry("rate_limited")

	assert.Equal(t, 2.0, testutil.ToFloat64(e.requests.WithLabelValues("general", "slack", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.requests.WithLabelValues("agent", "general", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.cacheHits.WithLabelValues("general")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.cacheMisses.WithLabelValues("general")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.attempts.WithLabelValues("openai", "rate_limited")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.retries.WithLabelValues("rate_limited")))
	assert.Equal(t, 2, testutil.CollectAndCount(e.latency))
}

func TestPrometheusExporter_Handler(t *testing.T) {
	e := NewPrometheusExporter(DefaultConfig())
	e.RecordEnhance("general", "email", "success", 100*time.Millisecond)
	e.RecordCacheLookup("general", true)

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "clipsense_ai_enhance_requests_total")
	assert.Contains(t, body, "clipsense_ai_enhance_latency_seconds")
	assert.Contains(t, body, "clipsense_ai_cache_hits_total")
}

func TestPrometheusExporter_WriteText(t *testing.T) {
	e := NewPrometheusExporter(DefaultConfig())
	e.RecordAttempt("gemini", "network_error")

	var buf bytes.Buffer
	require.NoError(t, e.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# HELP clipsense_ai_provider_attempts_total")
	assert.Contains(t, out, "# TYPE clipsense_ai_provider_attempts_total counter")
	assert.True(t, strings.Contains(out, `clipsense_ai_provider_attempts_total{outcome="network_error",provider="gemini"} 1`), out)
}

func TestPrometheusExporter_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewPrometheusExporter(Config{Registry: reg})
	assert.Same(t, reg, e.Registry())

	e.RecordRetry("server_error")
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func BenchmarkPrometheusExporter(b *testing.B) {
	e := NewPrometheusExporter(DefaultConfig())

	b.Run("RecordEnhance", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			e.RecordEnhance("general", "slack", "success", 100*time.Millisecond)
		}
	})
}
