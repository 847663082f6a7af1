package prometheus

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersWithoutPanic(t *testing.T) {
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestMetrics_HandlerServesRecordedValues(t *testing.T) {
	m := NewMetrics()
	m.MatchesCreated.Add(3)
	m.MatchRunsTotal.WithLabelValues("batch", "ok").Inc()
	m.HeatmapRequestsTotal.WithLabelValues("gap", "ok").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "matchgrid_matches_created_total 3")
	assert.Contains(t, body, `matchgrid_match_runs_total{kind="batch",outcome="ok"} 1`)
	assert.Contains(t, body, `matchgrid_heatmap_requests_total{mode="gap",outcome="ok"} 1`)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()
	a.MatchesCreated.Inc()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "matchgrid_matches_created_total 0")
}
