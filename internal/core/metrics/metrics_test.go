package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()
		}
	}
	return nil
}

func TestCollector_RecordTurn(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTurn("chat", false)
	c.RecordTurn("chat", false)
	c.RecordTurn("chat", true)

	metrics := gather(t, reg, "hireplan_turns_total")
	if len(metrics) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(metrics))
	}
	var total float64
	for _, m := range metrics {
		total += m.GetCounter().GetValue()
	}
	if total != 3 {
		t.Errorf("turns_total = %v, want 3", total)
	}
}

func TestCollector_RecordCompletion(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCompletion("openai", 200*time.Millisecond, nil)
	c.RecordCompletion("openai", time.Second, errors.New("down"))

	if got := len(gather(t, reg, "hireplan_completions_total")); got != 2 {
		t.Errorf("completion label sets = %d, want 2", got)
	}
	hist := gather(t, reg, "hireplan_completion_latency_seconds")
	if len(hist) != 1 || hist[0].GetHistogram().GetSampleCount() != 2 {
		t.Errorf("latency histogram = %+v", hist)
	}
}

type fakeStats struct {
	stats analytics.Stats
	err   error
}

func (f fakeStats) UsageStats(context.Context) (analytics.Stats, error) {
	return f.stats, f.err
}

func TestRefresher_Refresh(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	src := fakeStats{stats: analytics.Stats{
		TotalSessions:             4,
		AvgSessionDurationSeconds: 12.5,
		ToolUsage:                 []models.Count{{Name: "draft_job_description", Count: 3}},
		RoleDistribution:          []models.Count{{Name: "founding engineer", Count: 2}, {Name: "genai intern", Count: 1}},
	}}

	r := NewRefresher(c, src, time.Minute, nil)
	if err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if m := gather(t, reg, "hireplan_sessions"); len(m) != 1 || m[0].GetGauge().GetValue() != 4 {
		t.Errorf("sessions gauge = %+v", m)
	}
	if m := gather(t, reg, "hireplan_role_requests"); len(m) != 2 {
		t.Errorf("role_requests label sets = %d, want 2", len(m))
	}

	failing := NewRefresher(c, fakeStats{err: errors.New("boom")}, time.Minute, nil)
	if err := failing.Refresh(context.Background()); err == nil {
		t.Error("expected refresh error")
	}
}

func TestRefresher_StartStopsOnCancel(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	r := NewRefresher(c, fakeStats{}, time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Start(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Start() = %v, want deadline exceeded", err)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordArtifact("job_description", 2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "hireplan_artifacts_generated_total") {
		t.Error("response should contain hireplan_artifacts_generated_total")
	}
}
