package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/talentscout/internal/screening"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.ObserveTurn(screening.StepCollectingInfo, screening.OutcomeRejected)
	r.ObserveTurn(screening.StepCollectingInfo, screening.OutcomeRejected)
	r.ObserveFallback(screening.FallbackReply)
	r.ObserveEngineRequest("ollama", true, 120*time.Millisecond)
	r.ObserveEngineRequest("ollama", false, time.Second)
	r.SetActiveSessions(3)

	assert.InDelta(t, 2, testutil.ToFloat64(r.turnsTotal.WithLabelValues("collecting_info", "rejected")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(r.fallbacksTotal.WithLabelValues("reply")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(r.engineRequests.WithLabelValues("ollama", "success")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(r.engineRequests.WithLabelValues("ollama", "error")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(r.sessionsActive), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(r.engineDuration))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveTurn(screening.StepComplete, screening.OutcomeCompleted)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `talentscout_turns_total{outcome="completed",step="complete"} 1`)
	assert.Contains(t, string(body), "talentscout_sessions_active 0")
}

func TestRecorders_AreIsolated(t *testing.T) {
	a, b := New(), New()
	a.ObserveFallback(screening.FallbackQuestions)
	assert.InDelta(t, 0, testutil.ToFloat64(b.fallbacksTotal.WithLabelValues("questions")), 1e-9)
}
