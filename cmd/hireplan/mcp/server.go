package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/neilberkman/hireplan/internal/core/session"
)

// Tool names beyond the three assistant tools.
const (
	ToolGetSessionDetail = "get_session_detail"
	ToolGetUsageStats    = "get_usage_stats"
)

// Deps groups what the tool handlers need.
type Deps struct {
	Sessions  *session.Store
	Analytics *analytics.Store
	Generator *artifacts.Generator
	Logger    *slog.Logger
	Version   string
}

// SearchJobMarketArgs defines arguments for the search_job_market tool
type SearchJobMarketArgs struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// DraftJobDescriptionArgs defines arguments for the draft_job_description tool
type DraftJobDescriptionArgs struct {
	Role       string `json:"role"`
	Skills     string `json:"skills,omitempty"` // comma-separated
	Experience string `json:"experience,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// CreateHiringChecklistArgs defines arguments for the create_hiring_checklist tool
type CreateHiringChecklistArgs struct {
	Role          string `json:"role"`
	TimelineWeeks int    `json:"timeline_weeks,omitempty"`
	SessionID     string `json:"session_id,omitempty"`
}

// GetSessionDetailArgs defines arguments for the get_session_detail tool
type GetSessionDetailArgs struct {
	SessionID string `json:"session_id"`
}

// SessionDetail is a session's hiring needs and artifacts without the full
// conversation.
type SessionDetail struct {
	SessionID       string                      `json:"session_id"`
	CreatedAt       string                      `json:"created_at"`
	UpdatedAt       string                      `json:"updated_at"`
	MessageCount    int                         `json:"message_count"`
	HiringNeeds     models.Requirements         `json:"hiring_needs"`
	JobDescriptions map[string]string           `json:"job_descriptions"`
	Checklists      map[string]models.Checklist `json:"hiring_checklists"`
	LastMessage     *MessageDetail              `json:"last_message,omitempty"`
}

// MessageDetail represents a single turn
type MessageDetail struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NamedCount is one entry of an ordered count list
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// UsageStats is the get_usage_stats result. Count lists are ordered by
// descending count, ties in first-seen order.
type UsageStats struct {
	TotalSessions             int          `json:"total_sessions"`
	TotalMessages             int          `json:"total_messages"`
	AvgSessionDurationSeconds float64      `json:"avg_session_duration_seconds"`
	MostRequestedRole         string       `json:"most_requested_role,omitempty"`
	TopTools                  []NamedCount `json:"top_tools"`
	RoleDistribution          []NamedCount `json:"role_distribution"`
}

// NewServer registers the hiring tools on a new MCP server.
func NewServer(deps Deps) *server.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Generator == nil {
		deps.Generator = artifacts.NewGenerator(artifacts.DefaultTemplates(), deps.Logger)
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	h := &handlers{deps: deps}

	s := server.NewMCPServer(
		"HirePlan",
		deps.Version,
	)

	marketTool := mcp.NewTool(agent.ToolSearchJobMarket,
		mcp.WithDescription("Look up average salary, demand and in-demand skills for a startup role. Knows founding engineers and GenAI interns."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Role or search phrase, e.g. 'founding engineer'")),
		mcp.WithString("session_id",
			mcp.Description("Optional session to attribute the tool use to in analytics")),
	)
	s.AddTool(marketTool, h.searchJobMarket)

	jdTool := mcp.NewTool(agent.ToolDraftJobDescription,
		mcp.WithDescription("Draft a markdown job description for a role from the engineering or intern template"),
		mcp.WithString("role",
			mcp.Required(),
			mcp.Description("Role title, e.g. 'founding engineer' or 'genai intern'")),
		mcp.WithString("skills",
			mcp.Description("Comma-separated required skills (default: relevant technical skills)")),
		mcp.WithString("experience",
			mcp.Description("Experience level, e.g. '3-5 years' (default: appropriate)")),
		mcp.WithString("session_id",
			mcp.Description("Optional session to attribute the tool use to in analytics")),
	)
	s.AddTool(jdTool, h.draftJobDescription)

	checklistTool := mcp.NewTool(agent.ToolCreateHiringChecklist,
		mcp.WithDescription("Create a staged hiring checklist as JSON. Timelines under 6 weeks halve every timeframe."),
		mcp.WithString("role",
			mcp.Required(),
			mcp.Description("Role title; engineer and intern roles get extra tasks")),
		mcp.WithNumber("timeline_weeks",
			mcp.Description("Hiring timeline in weeks (default: 8)")),
		mcp.WithString("session_id",
			mcp.Description("Optional session to attribute the tool use to in analytics")),
	)
	s.AddTool(checklistTool, h.createHiringChecklist)

	detailTool := mcp.NewTool(ToolGetSessionDetail,
		mcp.WithDescription("Retrieve a hiring session's captured requirements, generated artifacts and last message"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id to retrieve")),
	)
	s.AddTool(detailTool, h.getSessionDetail)

	statsTool := mcp.NewTool(ToolGetUsageStats,
		mcp.WithDescription("Get usage analytics: sessions, messages, average duration, top tools and role distribution"),
	)
	s.AddTool(statsTool, h.getUsageStats)

	return s
}

// StartServer serves the tools over stdio until the client disconnects.
func StartServer(deps Deps) error {
	return server.ServeStdio(NewServer(deps))
}

type handlers struct {
	deps Deps
}

func decodeArgs(request mcp.CallToolRequest, dst any) error {
	argsBytes, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return err
	}
	return json.Unmarshal(argsBytes, dst)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// recordTool attributes a tool call to a session when one was named.
// Failures are logged; the tool result is still returned.
func (h *handlers) recordTool(ctx context.Context, sessionID, tool string) {
	if sessionID == "" {
		return
	}
	if err := h.deps.Analytics.RecordToolUsage(ctx, sessionID, tool); err != nil {
		h.deps.Logger.Warn("failed to record tool usage", "session", sessionID, "tool", tool, "error", err)
	}
}

func (h *handlers) searchJobMarket(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SearchJobMarketArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	h.recordTool(ctx, args.SessionID, agent.ToolSearchJobMarket)
	return mcp.NewToolResultText(artifacts.MarketReport(args.Query)), nil
}

func (h *handlers) draftJobDescription(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args DraftJobDescriptionArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Role) == "" {
		return mcp.NewToolResultError("role is required"), nil
	}

	skills := splitSkills(args.Skills)
	if len(skills) == 0 {
		skills = agent.DefaultSkills
	}
	experience := args.Experience
	if experience == "" {
		experience = agent.DefaultExperience
	}

	h.recordTool(ctx, args.SessionID, agent.ToolDraftJobDescription)
	return mcp.NewToolResultText(h.deps.Generator.RenderJobDescription(args.Role, skills, experience)), nil
}

func (h *handlers) createHiringChecklist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args CreateHiringChecklistArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Role) == "" {
		return mcp.NewToolResultError("role is required"), nil
	}
	weeks := args.TimelineWeeks
	if weeks == 0 {
		weeks = agent.DefaultTimelineWeeks
	}
	if weeks < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("timeline_weeks must be positive, got %d", weeks)), nil
	}

	h.recordTool(ctx, args.SessionID, agent.ToolCreateHiringChecklist)
	return mcp.NewToolResultText(artifacts.BuildChecklist(args.Role, weeks).String()), nil
}

func (h *handlers) getSessionDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args GetSessionDetailArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	exists, err := h.deps.Sessions.Exists(ctx, args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load session: %v", err)), nil
	}
	if !exists {
		return mcp.NewToolResultError(fmt.Sprintf("session %q not found", args.SessionID)), nil
	}
	sess, err := h.deps.Sessions.Open(ctx, args.SessionID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load session: %v", err)), nil
	}

	detail := SessionDetail{
		SessionID:       sess.ID,
		CreatedAt:       sess.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       sess.LastActivity().Format(time.RFC3339),
		MessageCount:    len(sess.History),
		HiringNeeds:     sess.HiringNeeds,
		JobDescriptions: sess.JobDescriptions,
		Checklists:      sess.HiringChecklists,
	}
	if n := len(sess.History); n > 0 {
		last := sess.History[n-1]
		detail.LastMessage = &MessageDetail{
			Role:      string(last.Role),
			Content:   last.Content,
			Timestamp: last.Timestamp.Format(time.RFC3339),
		}
	}
	return jsonResult(detail)
}

func (h *handlers) getUsageStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.deps.Analytics.UsageStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load analytics: %v", err)), nil
	}

	out := UsageStats{
		TotalSessions:             stats.TotalSessions,
		TotalMessages:             stats.TotalMessages,
		AvgSessionDurationSeconds: stats.AvgSessionDurationSeconds,
		MostRequestedRole:         stats.MostRequestedRole,
		TopTools:                  namedCounts(stats.TopTools),
		RoleDistribution:          namedCounts(stats.RoleDistribution),
	}
	return jsonResult(out)
}

func namedCounts(in []models.Count) []NamedCount {
	out := make([]NamedCount, 0, len(in))
	for _, c := range in {
		out = append(out, NamedCount{Name: c.Name, Count: c.Count})
	}
	return out
}

func splitSkills(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
