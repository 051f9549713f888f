package agent

import (
	"context"
	"testing"
	"time"

	"github.com/neilberkman/hireplan/internal/core/models"
)

func TestImport(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	fixed := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	f.agent = New(f.sessions, f.analytics, f.provider, WithClock(func() time.Time { return fixed }))
	sess := f.start(t, "imported")

	recorded := models.At(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	turns := []models.Turn{
		{Role: models.RoleUser, Content: "We need a founding engineer", Timestamp: recorded},
		{Role: models.RoleAssistant, Content: "What skills should they have?"},
		{Role: models.RoleUser, Content: "Also an intern"},
		{Role: models.RoleAssistant, Content: "Noted."},
	}

	res, err := f.agent.Import(context.Background(), sess, turns)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.Err != nil {
		t.Errorf("absorbed errors: %v", res.Err)
	}
	if res.Turns != 4 {
		t.Errorf("Turns = %d, want 4", res.Turns)
	}
	if len(res.Roles) != 2 || res.Roles[0] != "founding engineer" || res.Roles[1] != "genai intern" {
		t.Errorf("Roles = %v", res.Roles)
	}
	if len(f.provider.calls) != 0 {
		t.Errorf("completion service called %d times", len(f.provider.calls))
	}

	reloaded, err := f.sessions.Open(context.Background(), "imported")
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.History) != 4 {
		t.Fatalf("history length = %d, want 4", len(reloaded.History))
	}
	if !reloaded.History[0].Timestamp.Equal(recorded.Time) {
		t.Errorf("recorded timestamp lost: %v", reloaded.History[0].Timestamp)
	}
	if !reloaded.History[1].Timestamp.Equal(fixed) {
		t.Errorf("zero timestamp not stamped: %v", reloaded.History[1].Timestamp)
	}

	agg, err := f.analytics.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec := agg.Session("imported"); rec == nil || rec.MessagesCount != 4 {
		t.Errorf("session record = %+v", rec)
	}
	if agg.RoleRequests.Get("founding engineer") != 1 || agg.RoleRequests.Get("genai intern") != 1 {
		t.Errorf("role requests = %+v", agg.RoleRequests.Entries())
	}
}

func TestImport_SaveFailure(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	sess := f.start(t, "broken")
	f.docs.failSaves.Store(true)

	_, err := f.agent.Import(context.Background(), sess, []models.Turn{
		{Role: models.RoleUser, Content: "hire an engineer"},
	})
	if err == nil {
		t.Fatal("Import() should fail when the session cannot be saved")
	}
}
