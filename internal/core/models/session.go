package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts "user"/"assistant" and the legacy "human"/"ai" names.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser, nil
	case "assistant", "ai":
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Turn is one entry of the conversation history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp Timestamp `json:"timestamp"`
}

// Top-level session document fields.
const (
	FieldSessionID        = "session_id"
	FieldCreatedAt        = "created_at"
	FieldHiringNeeds      = "hiring_needs"
	FieldHistory          = "conversation_history"
	FieldJobDescriptions  = "job_descriptions"
	FieldHiringChecklists = "hiring_checklists"
	FieldUserInfo         = "user_info"
)

// ErrImmutableField is returned when a caller tries to change the session id.
var ErrImmutableField = errors.New("field is immutable")

// Session is the persisted state of one hiring-planning conversation.
type Session struct {
	ID               string
	CreatedAt        Timestamp
	HiringNeeds      Requirements
	History          []Turn
	JobDescriptions  map[string]string
	HiringChecklists map[string]Checklist
	UserInfo         map[string]any

	// Extra holds top-level fields without a typed counterpart.
	Extra map[string]json.RawMessage
}

// NewSession returns an empty session.
func NewSession(id string, createdAt Timestamp) *Session {
	s := &Session{ID: id, CreatedAt: createdAt}
	s.normalize()
	return s
}

// Validate checks the required fields and that every per-role entry, in the
// requirements or the artifact maps, names a listed role.
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session_id is required")
	}
	if s.CreatedAt.IsZero() {
		return errors.New("created_at is required")
	}
	if err := s.HiringNeeds.Validate(); err != nil {
		return fmt.Errorf("hiring_needs.%w", err)
	}
	if role, ok := unlistedRole(s.HiringNeeds, s.JobDescriptions); ok {
		return unknownRole(FieldJobDescriptions, role)
	}
	if role, ok := unlistedRole(s.HiringNeeds, s.HiringChecklists); ok {
		return unknownRole(FieldHiringChecklists, role)
	}
	return nil
}

func (s *Session) normalize() {
	s.HiringNeeds.Normalize()
	if s.History == nil {
		s.History = []Turn{}
	}
	if s.JobDescriptions == nil {
		s.JobDescriptions = map[string]string{}
	}
	if s.HiringChecklists == nil {
		s.HiringChecklists = map[string]Checklist{}
	}
	if s.UserInfo == nil {
		s.UserInfo = map[string]any{}
	}
}

// LastActivity returns the timestamp of the newest turn, or CreatedAt.
func (s *Session) LastActivity() Timestamp {
	if n := len(s.History); n > 0 {
		return s.History[n-1].Timestamp
	}
	return s.CreatedAt
}

func (s *Session) typedFields() map[string]any {
	return map[string]any{
		FieldSessionID:        s.ID,
		FieldCreatedAt:        s.CreatedAt,
		FieldHiringNeeds:      s.HiringNeeds,
		FieldHistory:          s.History,
		FieldJobDescriptions:  s.JobDescriptions,
		FieldHiringChecklists: s.HiringChecklists,
		FieldUserInfo:         s.UserInfo,
	}
}

// Field returns the encoded value of a top-level field.
func (s *Session) Field(key string) (json.RawMessage, bool) {
	if v, ok := s.typedFields()[key]; ok {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return data, true
	}
	v, ok := s.Extra[key]
	return v, ok
}

// SetField replaces a top-level field with an encoded value. The session id
// cannot be changed.
func (s *Session) SetField(key string, value json.RawMessage) error {
	switch key {
	case FieldSessionID:
		var id string
		if err := json.Unmarshal(value, &id); err != nil || id != s.ID {
			return fmt.Errorf("%s: %w", key, ErrImmutableField)
		}
		return nil
	case FieldCreatedAt:
		return decodeField(key, value, &s.CreatedAt)
	case FieldHiringNeeds:
		var r Requirements
		if err := decodeField(key, value, &r); err != nil {
			return err
		}
		r.Normalize()
		s.HiringNeeds = r
		return nil
	case FieldHistory:
		var h []Turn
		if err := decodeField(key, value, &h); err != nil {
			return err
		}
		s.History = h
	case FieldJobDescriptions:
		var m map[string]string
		if err := decodeField(key, value, &m); err != nil {
			return err
		}
		s.JobDescriptions = m
	case FieldHiringChecklists:
		var m map[string]Checklist
		if err := decodeField(key, value, &m); err != nil {
			return err
		}
		s.HiringChecklists = m
	case FieldUserInfo:
		var m map[string]any
		if err := decodeField(key, value, &m); err != nil {
			return err
		}
		s.UserInfo = m
	default:
		// Compacted so the value reads the same before and after an
		// indented save.
		var buf bytes.Buffer
		if err := json.Compact(&buf, value); err != nil {
			return fmt.Errorf("%s: invalid JSON value", key)
		}
		if s.Extra == nil {
			s.Extra = map[string]json.RawMessage{}
		}
		s.Extra[key] = json.RawMessage(buf.Bytes())
		return nil
	}
	s.normalize()
	return nil
}

func decodeField(key string, value json.RawMessage, dst any) error {
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Session) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(s.Extra)+7)
	for k, v := range s.Extra {
		doc[k] = v
	}
	for k, v := range s.typedFields() {
		doc[k] = v
	}
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Session) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = Session{}
	if raw, ok := doc[FieldSessionID]; ok {
		if err := decodeField(FieldSessionID, raw, &s.ID); err != nil {
			return err
		}
		delete(doc, FieldSessionID)
	}
	for key, raw := range doc {
		if isNull(raw) && key != FieldSessionID {
			if _, typed := s.typedFields()[key]; typed {
				continue
			}
		}
		if err := s.SetField(key, raw); err != nil {
			return err
		}
	}
	s.normalize()
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
