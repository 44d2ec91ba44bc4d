package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	m := NewMetrics()
	m.RefreshTotal.WithLabelValues("mock").Inc()
	m.CacheHits.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`nepse_refresh_total{source="mock"} 1`,
		`nepse_cache_hits_total 3`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewMetricsTwice(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.AlertsSent.Inc()
	if a.Registry() == b.Registry() {
		t.Error("instances should not share a registry")
	}
}
