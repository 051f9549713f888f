// Package session persists hiring-planning sessions as one JSON document per
// session id.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neilberkman/hireplan/internal/core/docstore"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/models"
)

// DocumentPrefix is the document namespace holding sessions.
const DocumentPrefix = "session_data"

// Store loads and saves sessions. Every mutator rewrites the whole document
// before returning.
type Store struct {
	docs docstore.Store
	now  func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a session store over docs.
func NewStore(docs docstore.Store, opts ...Option) *Store {
	s := &Store{docs: docs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

func documentName(id string) string {
	return DocumentPrefix + "/" + id
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\") && docstore.ValidName(documentName(id))
}

// Open loads the session for id, creating and persisting an empty one when
// none exists. An empty id opens a new session with a generated id.
func (s *Store) Open(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		id = NewID()
	}
	name := documentName(id)
	if !validID(id) {
		return nil, errs.Storage("load", name, fmt.Errorf("invalid session id %q", id))
	}

	data, err := s.docs.Load(ctx, name)
	if errors.Is(err, docstore.ErrNotExist) {
		sess := models.NewSession(id, models.At(s.now()))
		if err := s.save(ctx, sess); err != nil {
			return nil, err
		}
		return sess, nil
	}
	if err != nil {
		return nil, errs.Storage("load", name, err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errs.Storage("decode", name, err)
	}
	if sess.ID != id {
		return nil, errs.Storage("decode", name, fmt.Errorf("document holds session %q", sess.ID))
	}
	return &sess, nil
}

// Exists reports whether a document is stored for id.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	_, err := s.docs.Load(ctx, documentName(id))
	if errors.Is(err, docstore.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errs.Storage("load", documentName(id), err)
	}
	return true, nil
}

// Get returns the encoded value of a top-level session field.
func (s *Store) Get(sess *models.Session, key string) (json.RawMessage, bool) {
	return sess.Field(key)
}

// SetField upserts a top-level field and persists the session.
func (s *Store) SetField(ctx context.Context, sess *models.Session, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errs.Storage("encode", documentName(sess.ID), err)
	}
	next := *sess
	if err := next.SetField(key, raw); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*sess = next
	return s.save(ctx, sess)
}

// AppendTurn appends a timestamped turn and persists the session.
func (s *Store) AppendTurn(ctx context.Context, sess *models.Session, role models.Role, text string) error {
	sess.History = append(sess.History, models.Turn{
		Role:      role,
		Content:   text,
		Timestamp: models.At(s.now()),
	})
	return s.save(ctx, sess)
}

// SetHiringNeeds replaces the requirements record and persists the session.
// A record that drops a role still referenced by an artifact is rejected and
// the session is left unchanged.
func (s *Store) SetHiringNeeds(ctx context.Context, sess *models.Session, req models.Requirements) error {
	req.Normalize()
	next := *sess
	next.HiringNeeds = req
	if err := next.Validate(); err != nil {
		return err
	}
	*sess = next
	return s.save(ctx, sess)
}

// AddJobDescription stores the job description for role, which must already
// be listed in the hiring needs.
func (s *Store) AddJobDescription(ctx context.Context, sess *models.Session, role, text string) error {
	if !sess.HiringNeeds.HasRole(role) {
		return &errs.NotFoundError{Kind: "role", ID: role}
	}
	sess.JobDescriptions[role] = text
	return s.save(ctx, sess)
}

// AddChecklist stores the hiring checklist for role, which must already be
// listed in the hiring needs.
func (s *Store) AddChecklist(ctx context.Context, sess *models.Session, role string, checklist models.Checklist) error {
	if !sess.HiringNeeds.HasRole(role) {
		return &errs.NotFoundError{Kind: "role", ID: role}
	}
	sess.HiringChecklists[role] = checklist
	return s.save(ctx, sess)
}

// SetUserInfo sets one user_info entry.
func (s *Store) SetUserInfo(ctx context.Context, sess *models.Session, key string, value any) error {
	sess.UserInfo[key] = value
	return s.save(ctx, sess)
}

func (s *Store) save(ctx context.Context, sess *models.Session) error {
	name := documentName(sess.ID)
	if err := sess.Validate(); err != nil {
		return fmt.Errorf("invalid session %q: %w", sess.ID, err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errs.Storage("encode", name, err)
	}
	if err := s.docs.Save(ctx, name, data); err != nil {
		return errs.Storage("save", name, err)
	}
	return nil
}

// Summary describes a stored session for listings.
type Summary struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	Roles        []string
}

// List returns every stored session, most recently active first. Documents
// that fail to decode are reported as a StorageError.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	names, err := s.docs.List(ctx, DocumentPrefix)
	if err != nil {
		return nil, errs.Storage("list", DocumentPrefix, err)
	}

	summaries := make([]Summary, 0, len(names))
	for _, name := range names {
		id := strings.TrimPrefix(name, DocumentPrefix+"/")
		data, err := s.docs.Load(ctx, name)
		if err != nil {
			return nil, errs.Storage("load", name, err)
		}
		var sess models.Session
		if err := json.Unmarshal(data, &sess); err != nil {
			return nil, errs.Storage("decode", name, err)
		}
		if sess.ID == "" {
			sess.ID = id
		}
		summaries = append(summaries, Summary{
			ID:           sess.ID,
			CreatedAt:    sess.CreatedAt.Time,
			UpdatedAt:    sess.LastActivity().Time,
			MessageCount: len(sess.History),
			Roles:        sess.HiringNeeds.Roles,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}
