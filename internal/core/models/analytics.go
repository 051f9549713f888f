package models

import "slices"

// SessionRecord is the usage record of one session.
type SessionRecord struct {
	SessionID       string    `json:"session_id"`
	StartTime       Timestamp `json:"start_time"`
	LastActive      Timestamp `json:"last_active"`
	DurationSeconds float64   `json:"duration_seconds"`
	MessagesCount   int       `json:"messages_count"`
	ToolsUsed       []string  `json:"tools_used"`
}

// UseTool adds tool to the record's tool set.
func (r *SessionRecord) UseTool(tool string) {
	if !slices.Contains(r.ToolsUsed, tool) {
		r.ToolsUsed = append(r.ToolsUsed, tool)
	}
}

// Aggregate is the process-wide usage document shared by all sessions.
type Aggregate struct {
	Sessions     []SessionRecord `json:"sessions"`
	ToolUsage    Counts          `json:"tool_usage"`
	RoleRequests Counts          `json:"role_requests"`
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{Sessions: []SessionRecord{}}
}

// Session returns the record for id, or nil.
func (a *Aggregate) Session(id string) *SessionRecord {
	for i := range a.Sessions {
		if a.Sessions[i].SessionID == id {
			return &a.Sessions[i]
		}
	}
	return nil
}

// Normalize initializes nil collections after decoding.
func (a *Aggregate) Normalize() {
	if a.Sessions == nil {
		a.Sessions = []SessionRecord{}
	}
	for i := range a.Sessions {
		if a.Sessions[i].ToolsUsed == nil {
			a.Sessions[i].ToolsUsed = []string{}
		}
	}
}
