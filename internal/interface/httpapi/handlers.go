package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/export"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/neilberkman/hireplan/internal/core/session"
)

type handler struct {
	agent     *agent.Agent
	sessions  *session.Store
	analytics *analytics.Store
	generator *artifacts.Generator
	logger    *slog.Logger

	// locks serializes turns per session id.
	locks sync.Map
}

func newHandler(deps Deps) *handler {
	h := &handler{
		agent:     deps.Agent,
		sessions:  deps.Sessions,
		analytics: deps.Analytics,
		generator: deps.Generator,
		logger:    deps.Logger,
	}
	if h.logger == nil {
		h.logger = slog.New(slog.DiscardHandler)
	}
	if h.generator == nil {
		h.generator = artifacts.NewGenerator(artifacts.DefaultTemplates(), h.logger)
	}
	return h
}

func (h *handler) lock(id string) func() {
	v, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type sessionSummary struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Roles        []string  `json:"roles"`
}

type createSessionRequest struct {
	SessionID string `json:"session_id"`
}

type createSessionResponse struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Greeting  string    `json:"greeting"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Reply    string   `json:"reply"`
	Command  string   `json:"command"`
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

type countResponse struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type dayResponse struct {
	Day      string `json:"day"`
	Sessions int    `json:"sessions"`
}

type statsResponse struct {
	TotalSessions             int             `json:"total_sessions"`
	TotalMessages             int             `json:"total_messages"`
	AvgSessionDurationSeconds float64         `json:"avg_session_duration_seconds"`
	MostRequestedRole         *string         `json:"most_requested_role"`
	TopTools                  []countResponse `json:"top_tools"`
	RoleDistribution          []countResponse `json:"role_distribution"`
	SessionsByDay             []dayResponse   `json:"sessions_by_day"`
}

type jobDescriptionRequest struct {
	Role       string   `json:"role"`
	Skills     []string `json:"skills"`
	Experience string   `json:"experience"`
}

type checklistRequest struct {
	Role  string `json:"role"`
	Weeks int    `json:"weeks"`
}

// GET /api/sessions
func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.sessions.List(r.Context())
	if err != nil {
		h.serverError(w, "list sessions", err)
		return
	}
	out := make([]sessionSummary, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, sessionSummary{
			ID:           s.ID,
			CreatedAt:    s.CreatedAt,
			UpdatedAt:    s.UpdatedAt,
			MessageCount: s.MessageCount,
			Roles:        s.Roles,
		})
	}
	JSON(w, http.StatusOK, out)
}

// POST /api/sessions
func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	sess, err := h.agent.Start(r.Context(), req.SessionID)
	if err != nil {
		if errs.IsStorage(err) && req.SessionID != "" {
			Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.serverError(w, "start session", err)
		return
	}
	JSON(w, http.StatusCreated, createSessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt.Time,
		Greeting:  h.agent.Greeting(),
	})
}

// GET /api/sessions/{id}
func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, sess)
}

// GET /api/sessions/{id}/export
func (h *handler) exportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, export.Markdown(sess))
}

// POST /api/sessions/{id}/messages
func (h *handler) postMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	unlock := h.lock(chi.URLParam(r, "id"))
	defer unlock()

	sess, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	// The turn must finish and persist even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	reply := h.agent.Handle(ctx, sess, text)

	resp := messageResponse{
		Reply:    reply.Text,
		Command:  reply.Command.String(),
		Degraded: reply.Degraded,
	}
	if reply.Err != nil {
		resp.Warnings = strings.Split(reply.Err.Error(), "\n")
	}
	JSON(w, http.StatusOK, resp)
}

// GET /api/stats?since=2024-05-01T00:00:00Z
func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if s := r.URL.Query().Get("since"); s != "" {
		t, err := models.ParseTimestamp(s)
		if err != nil {
			Error(w, http.StatusBadRequest, "since must be an RFC 3339 timestamp")
			return
		}
		since = t
	}

	stats, err := h.analytics.UsageStatsSince(r.Context(), since)
	if err != nil {
		h.serverError(w, "load analytics", err)
		return
	}
	JSON(w, http.StatusOK, toStatsResponse(stats))
}

// GET /api/market?q=founding+engineer
func (h *handler) market(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		Error(w, http.StatusBadRequest, "q is required")
		return
	}
	data, ok := artifacts.SearchJobMarket(q)
	if !ok {
		Error(w, http.StatusNotFound, artifacts.NoMarketData)
		return
	}
	JSON(w, http.StatusOK, map[string]artifacts.MarketData{data.Role: data})
}

// POST /api/job-descriptions
func (h *handler) jobDescription(w http.ResponseWriter, r *http.Request) {
	var req jobDescriptionRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		Error(w, http.StatusBadRequest, "role is required")
		return
	}
	if len(req.Skills) == 0 {
		req.Skills = agent.DefaultSkills
	}
	if req.Experience == "" {
		req.Experience = agent.DefaultExperience
	}
	JSON(w, http.StatusOK, map[string]string{
		"role":            req.Role,
		"job_description": h.generator.RenderJobDescription(req.Role, req.Skills, req.Experience),
	})
}

// POST /api/checklists
func (h *handler) checklist(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		Error(w, http.StatusBadRequest, "role is required")
		return
	}
	if req.Weeks == 0 {
		req.Weeks = agent.DefaultTimelineWeeks
	}
	if req.Weeks < 0 {
		Error(w, http.StatusBadRequest, "weeks must be positive, got "+strconv.Itoa(req.Weeks))
		return
	}
	JSON(w, http.StatusOK, artifacts.BuildChecklist(req.Role, req.Weeks))
}

// loadSession writes a 404 for unknown ids and never creates a session.
func (h *handler) loadSession(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	id := chi.URLParam(r, "id")
	exists, err := h.sessions.Exists(r.Context(), id)
	if err != nil {
		h.serverError(w, "load session", err)
		return nil, false
	}
	if !exists {
		Error(w, http.StatusNotFound, (&errs.NotFoundError{Kind: "session", ID: id}).Error())
		return nil, false
	}
	sess, err := h.sessions.Open(r.Context(), id)
	if err != nil {
		h.serverError(w, "load session", err)
		return nil, false
	}
	return sess, true
}

func (h *handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("request failed", "op", op, "error", err)
	Error(w, http.StatusInternalServerError, "failed to "+op)
}

func toStatsResponse(s analytics.Stats) statsResponse {
	resp := statsResponse{
		TotalSessions:             s.TotalSessions,
		TotalMessages:             s.TotalMessages,
		AvgSessionDurationSeconds: s.AvgSessionDurationSeconds,
		TopTools:                  toCounts(s.TopTools),
		RoleDistribution:          toCounts(s.RoleDistribution),
		SessionsByDay:             make([]dayResponse, 0, len(s.SessionsByDay)),
	}
	if s.HasMostRequestedRole() {
		role := s.MostRequestedRole
		resp.MostRequestedRole = &role
	}
	for _, d := range s.SessionsByDay {
		resp.SessionsByDay = append(resp.SessionsByDay, dayResponse{Day: d.Day, Sessions: d.Sessions})
	}
	return resp
}

func toCounts(in []models.Count) []countResponse {
	out := make([]countResponse, 0, len(in))
	for _, c := range in {
		out = append(out, countResponse{Name: c.Name, Count: c.Count})
	}
	return out
}
