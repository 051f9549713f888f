// Package agent runs one conversation turn: analytics, intent routing,
// artifact generation or a completion call, and persistence.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/extract"
	"github.com/neilberkman/hireplan/internal/core/llm"
	"github.com/neilberkman/hireplan/internal/core/metrics"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/neilberkman/hireplan/internal/core/session"
)

// Reply is the outcome of one turn.
type Reply struct {
	Text    string
	Command Command

	// Degraded is set when Text is a fallback because the completion
	// service failed or returned nothing.
	Degraded bool

	// Err collects storage and analytics failures absorbed during the turn.
	// Text is valid even when Err is set.
	Err error
}

// Agent handles conversation turns for any number of sessions, one turn per
// session at a time.
type Agent struct {
	sessions     *session.Store
	analytics    *analytics.Store
	provider     llm.Provider
	extractor    *extract.Extractor
	generator    *artifacts.Generator
	systemPrompt string
	timeline     int
	metrics      metrics.Recorder
	logger       *slog.Logger
	now          func() time.Time
}

// Option customizes an Agent.
type Option func(*Agent)

func WithExtractor(e *extract.Extractor) Option { return func(a *Agent) { a.extractor = e } }

func WithGenerator(g *artifacts.Generator) Option { return func(a *Agent) { a.generator = g } }

func WithSystemPrompt(p string) Option { return func(a *Agent) { a.systemPrompt = p } }

func WithMetrics(m metrics.Recorder) Option { return func(a *Agent) { a.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(a *Agent) { a.logger = l } }

// WithClock overrides the time source for imported turns (tests).
func WithClock(now func() time.Time) Option { return func(a *Agent) { a.now = now } }

// WithDefaultTimeline sets the plan timeline in weeks used when none was
// extracted.
func WithDefaultTimeline(weeks int) Option {
	return func(a *Agent) {
		if weeks > 0 {
			a.timeline = weeks
		}
	}
}

// New creates an Agent.
func New(sessions *session.Store, stats *analytics.Store, provider llm.Provider, opts ...Option) *Agent {
	a := &Agent{
		sessions:     sessions,
		analytics:    stats,
		provider:     provider,
		systemPrompt: llm.SystemPrompt,
		timeline:     DefaultTimelineWeeks,
		metrics:      metrics.Nop{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if a.extractor == nil {
		a.extractor = extract.New(extract.DefaultRules())
	}
	if a.generator == nil {
		a.generator = artifacts.NewGenerator(artifacts.DefaultTemplates(), a.logger)
	}
	return a
}

// Greeting returns the first assistant message of a new conversation.
func (a *Agent) Greeting() string { return Greeting }

// Start opens (or creates) the session and registers it in analytics.
// Analytics failures are logged, not returned.
func (a *Agent) Start(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := a.sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := a.analytics.RecordSessionStart(ctx, sess.ID); err != nil {
		a.logger.Warn("failed to record session start", "session", sess.ID, "error", err)
		a.metrics.RecordStorageError("record_session_start")
	}
	return sess, nil
}

// turn accumulates absorbed failures.
type turn struct {
	a    *Agent
	sess *models.Session
	errs []error
}

func (t *turn) check(op string, err error) {
	if err == nil {
		return
	}
	t.a.logger.Warn("storage failure during turn", "session", t.sess.ID, "op", op, "error", err)
	t.a.metrics.RecordStorageError(op)
	t.errs = append(t.errs, err)
}

// Handle processes one user utterance and returns the assistant reply. The
// user turn and the assistant turn are both appended to the session. Storage
// failures never abort the turn; they are reported on Reply.Err.
func (a *Agent) Handle(ctx context.Context, sess *models.Session, text string) Reply {
	t := &turn{a: a, sess: sess}
	cmd := Classify(text)
	history := slices.Clone(sess.History)

	t.check("record_message", a.recordMessage(ctx, sess.ID))
	for _, role := range requestedRoles(text) {
		t.check("record_role_request", a.analytics.RecordRoleRequest(ctx, role))
	}
	t.check("append_user_turn", a.sessions.AppendTurn(ctx, sess, models.RoleUser, text))

	reply := Reply{Command: cmd}
	switch cmd {
	case GenerateJobDescription:
		reply.Text = a.jobDescriptions(ctx, t, text)
	case GenerateHiringPlan:
		reply.Text = a.hiringPlans(ctx, t, text)
	default:
		reply.Text, reply.Degraded = a.chat(ctx, t, history, text)
	}

	t.check("append_assistant_turn", a.sessions.AppendTurn(ctx, sess, models.RoleAssistant, reply.Text))
	t.check("record_message", a.recordMessage(ctx, sess.ID))

	a.metrics.RecordTurn(cmd.String(), reply.Degraded)
	reply.Err = errors.Join(t.errs...)
	return reply
}

// recordMessage counts a message, registering the session first when
// analytics has never seen it.
func (a *Agent) recordMessage(ctx context.Context, sessionID string) error {
	err := a.analytics.RecordMessage(ctx, sessionID)
	if !errs.IsNotFound(err) {
		return err
	}
	if err := a.analytics.RecordSessionStart(ctx, sessionID); err != nil {
		return err
	}
	return a.analytics.RecordMessage(ctx, sessionID)
}

func (a *Agent) jobDescriptions(ctx context.Context, t *turn, text string) string {
	req := a.extractor.Extract(t.sess.HiringNeeds, text, "")
	if len(req.Roles) == 0 {
		return NeedRolesForJobDescriptions
	}

	descs := make(map[string]string, len(req.Roles))
	for _, role := range req.Roles {
		skills := req.Skills[role]
		if len(skills) == 0 {
			skills = DefaultSkills
		}
		experience := req.Experience[role]
		if experience == "" {
			experience = DefaultExperience
		}
		descs[role] = a.generator.RenderJobDescription(role, skills, experience)
		t.sess.JobDescriptions[role] = descs[role]
	}
	req.JobDescriptions = descs

	t.check("save_job_descriptions", a.sessions.SetHiringNeeds(ctx, t.sess, req))
	t.check("record_tool_usage", a.analytics.RecordToolUsage(ctx, t.sess.ID, ToolDraftJobDescription))
	a.metrics.RecordArtifact("job_description", len(descs))
	return jobDescriptionsReply(req.Roles, descs)
}

func (a *Agent) hiringPlans(ctx context.Context, t *turn, text string) string {
	req := a.extractor.Extract(t.sess.HiringNeeds, text, "")
	if len(req.Roles) == 0 {
		return NeedRolesForHiringPlans
	}

	weeks := req.TimelineWeeks(a.timeline)
	plans := make(map[string]models.Checklist, len(req.Roles))
	for _, role := range req.Roles {
		plans[role] = artifacts.BuildChecklist(role, weeks)
		t.sess.HiringChecklists[role] = plans[role]
	}
	req.HiringPlan = plans

	t.check("save_hiring_plans", a.sessions.SetHiringNeeds(ctx, t.sess, req))
	t.check("record_tool_usage", a.analytics.RecordToolUsage(ctx, t.sess.ID, ToolCreateHiringChecklist))
	a.metrics.RecordArtifact("hiring_checklist", len(plans))
	return hiringPlansReply(req.Roles, plans)
}

func (a *Agent) chat(ctx context.Context, t *turn, history []models.Turn, text string) (string, bool) {
	req := llm.Request{
		System:  llm.BuildContextPrompt(a.systemPrompt, t.sess.HiringNeeds),
		History: history,
		Input:   text,
	}

	start := time.Now()
	out, err := a.provider.Complete(ctx, req)
	a.metrics.RecordCompletion(a.provider.Name(), time.Since(start), err)

	reply, assistantText, degraded := out, out, false
	var ue *errs.UpstreamError
	switch {
	case errors.As(err, &ue) && ue.Kind == errs.UpstreamEmpty, err == nil && strings.TrimSpace(out) == "":
		reply, assistantText, degraded = EmptyReply, "", true
	case err != nil:
		a.logger.Error("completion failed", "session", t.sess.ID, "provider", a.provider.Name(), "error", err)
		reply, assistantText, degraded = UpstreamFailureReply, "", true
	}

	extracted := a.extractor.Extract(t.sess.HiringNeeds, text, assistantText)
	t.check("save_hiring_needs", a.sessions.SetHiringNeeds(ctx, t.sess, extracted))
	if !degraded {
		for _, tool := range mentionedTools(reply) {
			t.check("record_tool_usage", a.analytics.RecordToolUsage(ctx, t.sess.ID, tool))
		}
	}
	return reply, degraded
}
