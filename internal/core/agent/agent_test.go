package agent

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/docstore"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/llm"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/neilberkman/hireplan/internal/core/session"
)

type fakeProvider struct {
	replies []string
	err     error
	calls   []llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "Tell me more.", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

// flakyDocs fails every save once failSaves is set.
type flakyDocs struct {
	docstore.Store
	failSaves atomic.Bool
}

func (f *flakyDocs) Save(ctx context.Context, name string, body []byte) error {
	if f.failSaves.Load() {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, name, body)
}

type fixture struct {
	agent     *Agent
	provider  *fakeProvider
	sessions  *session.Store
	analytics *analytics.Store
	docs      *flakyDocs
}

func newFixture(t *testing.T, provider *fakeProvider) *fixture {
	t.Helper()
	files, err := docstore.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	docs := &flakyDocs{Store: files}
	sessions := session.NewStore(docs)
	stats := analytics.NewStore(docs)
	return &fixture{
		agent:     New(sessions, stats, provider),
		provider:  provider,
		sessions:  sessions,
		analytics: stats,
		docs:      docs,
	}
}

func (f *fixture) start(t *testing.T, id string) *models.Session {
	t.Helper()
	sess, err := f.agent.Start(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return sess
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{"Please GENERATE JOB DESCRIPTION for them", GenerateJobDescription},
		{"can you create job description now", GenerateJobDescription},
		{"create job description and a hiring plan", GenerateJobDescription},
		{"I want a hiring plan", GenerateHiringPlan},
		{"send me the checklist", GenerateHiringPlan},
		{"write a job description", FreeformChat},
		{"hello", FreeformChat},
		{"", FreeformChat},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestHandle_EndToEndScenario(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"Happy to help you plan that hire."}})
	ctx := context.Background()
	sess := f.start(t, "e2e")

	first := f.agent.Handle(ctx, sess, "I need to hire a founding engineer, what skills and experience and budget should I plan for, and what's a reasonable timeline?")
	if first.Err != nil || first.Command != FreeformChat || first.Text != "Happy to help you plan that hire." {
		t.Fatalf("first reply = %+v", first)
	}

	needs := sess.HiringNeeds
	if !slices.Equal(needs.Roles, []string{"founding engineer"}) {
		t.Errorf("Roles = %v", needs.Roles)
	}
	if !slices.Equal(needs.Skills["founding engineer"], []string{"full-stack development", "system architecture", "devops"}) {
		t.Errorf("Skills = %v", needs.Skills)
	}
	if needs.Experience["founding engineer"] != "3-5 years" || needs.Budget["founding engineer"] != "$120,000-$150,000" {
		t.Errorf("Experience/Budget = %v / %v", needs.Experience, needs.Budget)
	}
	if needs.Timeline == nil || *needs.Timeline != 8 {
		t.Errorf("Timeline = %v", needs.Timeline)
	}

	jd := f.agent.Handle(ctx, sess, "Great, please create job description")
	if jd.Command != GenerateJobDescription || jd.Err != nil {
		t.Fatalf("jd reply = %+v", jd)
	}
	for _, want := range []string{
		"I've created job descriptions based on your requirements:\n\n## FOUNDING ENGINEER JOB DESCRIPTION\n# Founding Engineer",
		"- 3-5 years experience in software development",
		"- Skills in: full-stack development, system architecture, devops",
		"help create a hiring plan?",
	} {
		if !strings.Contains(jd.Text, want) {
			t.Errorf("jd reply missing %q:\n%s", want, jd.Text)
		}
	}

	plan := f.agent.Handle(ctx, sess, "now the hiring plan")
	if plan.Command != GenerateHiringPlan || plan.Err != nil {
		t.Fatalf("plan reply = %+v", plan)
	}
	if !strings.Contains(plan.Text, "## FOUNDING ENGINEER HIRING PLAN\n```json\n{") ||
		!strings.Contains(plan.Text, "Code review or system design challenge") ||
		!strings.Contains(plan.Text, `"Decision & Onboarding"`) {
		t.Errorf("plan reply = %s", plan.Text)
	}

	if len(f.provider.calls) != 1 {
		t.Errorf("provider calls = %d, want 1 (artifact commands bypass the model)", len(f.provider.calls))
	}

	reopened, err := f.sessions.Open(ctx, "e2e")
	if err != nil {
		t.Fatal(err)
	}
	if len(reopened.History) != 6 {
		t.Fatalf("history = %d turns, want 6", len(reopened.History))
	}
	for i, turn := range reopened.History {
		want := models.RoleUser
		if i%2 == 1 {
			want = models.RoleAssistant
		}
		if turn.Role != want {
			t.Errorf("turn %d role = %s, want %s", i, turn.Role, want)
		}
	}
	if _, ok := reopened.JobDescriptions["founding engineer"]; !ok {
		t.Error("job description not persisted")
	}
	if _, ok := reopened.HiringChecklists["founding engineer"]; !ok {
		t.Error("checklist not persisted")
	}
	if _, ok := reopened.HiringNeeds.HiringPlan["founding engineer"]; !ok {
		t.Error("hiring plan not persisted in requirements")
	}
	if err := reopened.Validate(); err != nil {
		t.Errorf("persisted session invalid: %v", err)
	}

	agg, err := f.analytics.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	rec := agg.Session("e2e")
	if rec == nil || rec.MessagesCount != 6 {
		t.Fatalf("analytics record = %+v", rec)
	}
	if agg.ToolUsage.Get(ToolDraftJobDescription) != 1 || agg.ToolUsage.Get(ToolCreateHiringChecklist) != 1 {
		t.Errorf("tool usage = %+v", agg.ToolUsage.Entries())
	}
	if agg.RoleRequests.Get("founding engineer") != 1 {
		t.Errorf("role requests = %+v", agg.RoleRequests.Entries())
	}
}

func TestHandle_UpstreamFailure(t *testing.T) {
	provider := &fakeProvider{err: &errs.UpstreamError{Kind: errs.UpstreamUnavailable, Provider: "fake"}}
	f := newFixture(t, provider)
	sess := f.start(t, "down")

	reply := f.agent.Handle(context.Background(), sess, "we need a genai intern")
	if reply.Text != UpstreamFailureReply || !reply.Degraded {
		t.Errorf("reply = %+v, want degraded apology", reply)
	}
	if reply.Err != nil {
		t.Errorf("upstream failure should not surface as a storage error: %v", reply.Err)
	}
	if !sess.HiringNeeds.HasRole("genai intern") {
		t.Error("extraction should still run over the user text")
	}
	if len(sess.History) != 2 || sess.History[1].Content != UpstreamFailureReply {
		t.Errorf("history = %+v", sess.History)
	}
}

func TestHandle_EmptyReply(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{name: "blank text", provider: &fakeProvider{replies: []string{"   "}}},
		{name: "empty kind", provider: &fakeProvider{err: &errs.UpstreamError{Kind: errs.UpstreamEmpty}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.provider)
			sess := f.start(t, "empty")
			reply := f.agent.Handle(context.Background(), sess, "hello")
			if reply.Text != EmptyReply || !reply.Degraded {
				t.Errorf("reply = %+v", reply)
			}
		})
	}
}

func TestHandle_ArtifactsNeedRoles(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	ctx := context.Background()
	sess := f.start(t, "no-roles")

	if got := f.agent.Handle(ctx, sess, "create job description").Text; got != NeedRolesForJobDescriptions {
		t.Errorf("jd reply = %q", got)
	}
	if got := f.agent.Handle(ctx, sess, "make a checklist").Text; got != NeedRolesForHiringPlans {
		t.Errorf("plan reply = %q", got)
	}
	if len(sess.History) != 4 {
		t.Errorf("history = %d turns, want user and assistant turns for both", len(sess.History))
	}
	if len(sess.JobDescriptions) != 0 || len(sess.HiringChecklists) != 0 {
		t.Error("no artifacts expected without roles")
	}
}

func TestHandle_JobDescriptionDefaults(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	sess := f.start(t, "defaults")

	reply := f.agent.Handle(context.Background(), sess, "create job description for an intern")
	if !strings.Contains(reply.Text, "## GENAI INTERN JOB DESCRIPTION") ||
		!strings.Contains(reply.Text, "- appropriate in AI/ML") ||
		!strings.Contains(reply.Text, "- Skills in: relevant technical skills") {
		t.Errorf("reply = %s", reply.Text)
	}
}

func TestHandle_CompressedPlan(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	ctx := context.Background()
	sess := f.start(t, "fast")

	req := models.NewRequirements()
	req.AddRole("founding engineer")
	weeks := 4
	req.Timeline = &weeks
	if err := f.sessions.SetHiringNeeds(ctx, sess, req); err != nil {
		t.Fatal(err)
	}

	f.agent.Handle(ctx, sess, "send the checklist")
	plan := sess.HiringChecklists["founding engineer"]
	if got := plan.Tasks("Decision & Onboarding")[0].Timeframe; got != "Week 3" {
		t.Errorf("Make offer timeframe = %q, want Week 3", got)
	}
}

func TestHandle_HistoryPassedToProvider(t *testing.T) {
	provider := &fakeProvider{replies: []string{"first", "second"}}
	f := newFixture(t, provider)
	ctx := context.Background()
	sess := f.start(t, "history")

	f.agent.Handle(ctx, sess, "hi")
	f.agent.Handle(ctx, sess, "again")

	last := provider.calls[1]
	if last.Input != "again" || len(last.History) != 2 {
		t.Fatalf("request = %+v", last)
	}
	if last.History[0].Content != "hi" || last.History[1].Content != "first" {
		t.Errorf("history = %+v", last.History)
	}
	if !strings.HasPrefix(last.System, llm.SystemPrompt) {
		t.Error("system prompt missing")
	}
}

func TestHandle_TracksMentionedTools(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"I used search_job_market and draft_job_description."}})
	ctx := context.Background()
	sess := f.start(t, "tools")

	f.agent.Handle(ctx, sess, "what's the market like?")

	agg, err := f.analytics.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if agg.ToolUsage.Get(ToolSearchJobMarket) != 1 || agg.ToolUsage.Get(ToolDraftJobDescription) != 1 {
		t.Errorf("tool usage = %+v", agg.ToolUsage.Entries())
	}
	if agg.ToolUsage.Get(ToolCreateHiringChecklist) != 0 {
		t.Error("unmentioned tool counted")
	}
	if tools := agg.Session("tools").ToolsUsed; len(tools) != 2 {
		t.Errorf("ToolsUsed = %v", tools)
	}
}

func TestHandle_StorageFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"still here"}})
	sess := f.start(t, "broken")

	f.docs.failSaves.Store(true)
	reply := f.agent.Handle(context.Background(), sess, "hello")
	if reply.Text != "still here" {
		t.Errorf("reply text = %q", reply.Text)
	}
	if !errs.IsStorage(reply.Err) {
		t.Errorf("reply.Err = %v, want StorageError", reply.Err)
	}
}

func TestHandle_UnstartedSessionIsRegistered(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	ctx := context.Background()
	sess, err := f.sessions.Open(ctx, "late")
	if err != nil {
		t.Fatal(err)
	}

	if reply := f.agent.Handle(ctx, sess, "hello"); reply.Err != nil {
		t.Fatalf("reply.Err = %v", reply.Err)
	}
	agg, err := f.analytics.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rec := agg.Session("late"); rec == nil || rec.MessagesCount != 2 {
		t.Errorf("record = %+v", rec)
	}
}

func TestGreeting(t *testing.T) {
	a := New(nil, nil, llm.NewStaticProvider(""))
	if !strings.Contains(a.Greeting(), "What roles are you looking to hire for?") {
		t.Errorf("Greeting() = %q", a.Greeting())
	}
}
