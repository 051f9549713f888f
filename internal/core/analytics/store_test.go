package analytics

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/neilberkman/hireplan/internal/core/docstore"
	"github.com/neilberkman/hireplan/internal/core/errs"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(t *testing.T) (*Store, *fakeClock, string) {
	t.Helper()
	dir := t.TempDir()
	docs, err := docstore.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	clock := &fakeClock{now: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	return NewStore(docs, WithClock(clock.Now)), clock, dir
}

func TestRecordSessionStart_NoDuplicates(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordSessionStart(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Minute)
	if err := store.RecordSessionStart(ctx, "s1"); err != nil {
		t.Fatal(err)
	}

	agg, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(agg.Sessions) != 1 {
		t.Fatalf("got %d session records, want 1", len(agg.Sessions))
	}
	rec := agg.Sessions[0]
	if !rec.LastActive.Equal(clock.Now()) {
		t.Errorf("LastActive = %v, want %v", rec.LastActive, clock.Now())
	}
	if rec.LastActive.Equal(rec.StartTime.Time) {
		t.Error("StartTime should not move on a repeated start")
	}
	if rec.MessagesCount != 0 || rec.DurationSeconds != 0 || len(rec.ToolsUsed) != 0 {
		t.Errorf("new record should be zeroed, got %+v", rec)
	}
}

func TestRecordMessage(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordSessionStart(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(90 * time.Second)
	if err := store.RecordMessage(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordMessage(ctx, "s1"); err != nil {
		t.Fatal(err)
	}

	agg, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rec := agg.Session("s1")
	if rec.MessagesCount != 2 {
		t.Errorf("MessagesCount = %d, want 2", rec.MessagesCount)
	}
	if rec.DurationSeconds != 90 {
		t.Errorf("DurationSeconds = %v, want 90", rec.DurationSeconds)
	}
}

func TestRecordMessage_UnknownSession(t *testing.T) {
	store, _, _ := newTestStore(t)
	err := store.RecordMessage(context.Background(), "ghost")
	if !errs.IsNotFound(err) {
		t.Errorf("RecordMessage(ghost) error = %v, want NotFoundError", err)
	}
}

func TestRecordToolUsage_SetSemantics(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordSessionStart(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := store.RecordToolUsage(ctx, "s1", "draft_job_description"); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.RecordToolUsage(ctx, "", "search_job_market"); err != nil {
		t.Fatal(err)
	}

	agg, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := agg.ToolUsage.Get("draft_job_description"); got != 3 {
		t.Errorf("tool count = %d, want 3", got)
	}
	if got := agg.ToolUsage.Get("search_job_market"); got != 1 {
		t.Errorf("global-only tool count = %d, want 1", got)
	}
	tools := agg.Session("s1").ToolsUsed
	if len(tools) != 1 || tools[0] != "draft_job_description" {
		t.Errorf("ToolsUsed = %v, want one entry", tools)
	}
}

func TestUsageStats_Empty(t *testing.T) {
	store, _, _ := newTestStore(t)
	stats, err := store.UsageStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 0 || stats.AvgSessionDurationSeconds != 0 || stats.HasMostRequestedRole() || len(stats.TopTools) != 0 {
		t.Errorf("UsageStats() on empty store = %+v", stats)
	}
}

func TestUsageStats_TopToolsTieBreak(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	counts := []struct {
		tool string
		n    int
	}{{"A", 5}, {"B", 5}, {"C", 2}, {"D", 1}}
	for _, c := range counts {
		for i := 0; i < c.n; i++ {
			if err := store.RecordToolUsage(ctx, "", c.tool); err != nil {
				t.Fatal(err)
			}
		}
	}

	stats, err := store.UsageStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A", "B", "C"}
	if len(stats.TopTools) != len(want) {
		t.Fatalf("TopTools = %+v, want %v", stats.TopTools, want)
	}
	for i, name := range want {
		if stats.TopTools[i].Name != name {
			t.Errorf("TopTools[%d] = %s, want %s", i, stats.TopTools[i].Name, name)
		}
	}
}

func TestUsageStats_TopToolsTieBreakSurvivesReload(t *testing.T) {
	store, _, dir := newTestStore(t)
	doc := `{"sessions": [], "tool_usage": {"B": 5, "A": 5, "C": 7}, "role_requests": {}}`
	path := filepath.Join(dir, "analytics", "usage_stats.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	stats, err := store.UsageStats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := []string{stats.TopTools[0].Name, stats.TopTools[1].Name, stats.TopTools[2].Name}
	if got[0] != "C" || got[1] != "B" || got[2] != "A" {
		t.Errorf("TopTools = %v, want [C B A]", got)
	}
}

func TestUsageStats_MostRequestedRole(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()

	for _, role := range []string{"genai intern", "founding engineer", "founding engineer", "genai intern"} {
		if err := store.RecordRoleRequest(ctx, role); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range []string{"s1", "s2"} {
		if err := store.RecordSessionStart(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	clock.Advance(10 * time.Second)
	if err := store.RecordMessage(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(20 * time.Second)
	if err := store.RecordMessage(ctx, "s2"); err != nil {
		t.Fatal(err)
	}

	stats, err := store.UsageStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MostRequestedRole != "genai intern" {
		t.Errorf("MostRequestedRole = %q, want first-seen on tie", stats.MostRequestedRole)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if stats.AvgSessionDurationSeconds != 20 {
		t.Errorf("AvgSessionDurationSeconds = %v, want 20", stats.AvgSessionDurationSeconds)
	}
	if len(stats.SessionsByDay) != 1 || stats.SessionsByDay[0].Sessions != 2 {
		t.Errorf("SessionsByDay = %+v", stats.SessionsByDay)
	}
}

func TestUsageStatsSince(t *testing.T) {
	store, clock, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.RecordSessionStart(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(48 * time.Hour)
	cutoff := clock.Now().Add(-time.Hour)
	if err := store.RecordSessionStart(ctx, "new"); err != nil {
		t.Fatal(err)
	}

	stats, err := store.UsageStatsSince(ctx, cutoff)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 1 {
		t.Errorf("TotalSessions since cutoff = %d, want 1", stats.TotalSessions)
	}
}

func TestLoad_CorruptDocument(t *testing.T) {
	store, _, dir := newTestStore(t)
	path := filepath.Join(dir, "analytics", "usage_stats.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRoleRequest(context.Background(), "x"); !errs.IsStorage(err) {
		t.Errorf("RecordRoleRequest() on corrupt doc error = %v, want StorageError", err)
	}
}

func TestConcurrentUpdatesSerialized(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.RecordRoleRequest(ctx, "founding engineer")
		}()
	}
	wg.Wait()

	agg, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := agg.RoleRequests.Get("founding engineer"); got != 20 {
		t.Errorf("role count = %d, want 20 (no lost updates)", got)
	}
}

func TestDocumentShape(t *testing.T) {
	store, _, dir := newTestStore(t)
	ctx := context.Background()
	if err := store.RecordSessionStart(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "analytics", "usage_stats.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"sessions", "tool_usage", "role_requests"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("document missing %q", key)
		}
	}
	var sessions []map[string]json.RawMessage
	if err := json.Unmarshal(doc["sessions"], &sessions); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"session_id", "start_time", "last_active", "duration_seconds", "messages_count", "tools_used"} {
		if _, ok := sessions[0][key]; !ok {
			t.Errorf("session record missing %q", key)
		}
	}
}
