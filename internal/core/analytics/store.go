// Package analytics keeps aggregate usage statistics shared by all sessions.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/neilberkman/hireplan/internal/core/docstore"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/models"
)

// DocumentName is the single shared analytics document.
const DocumentName = "analytics/usage_stats"

// Store records usage into the shared aggregate document. Each operation is a
// full read-modify-write; mu serializes them within the process, writers in
// other processes still race with last-writer-wins.
type Store struct {
	docs docstore.Store
	now  func() time.Time
	mu   sync.Mutex
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an analytics store over docs.
func NewStore(docs docstore.Store, opts ...Option) *Store {
	s := &Store{docs: docs, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current aggregate. A missing document is an empty
// aggregate; a corrupt one is a StorageError.
func (s *Store) Load(ctx context.Context) (*models.Aggregate, error) {
	data, err := s.docs.Load(ctx, DocumentName)
	if errors.Is(err, docstore.ErrNotExist) {
		return models.NewAggregate(), nil
	}
	if err != nil {
		return nil, errs.Storage("load", DocumentName, err)
	}
	agg := models.NewAggregate()
	if err := json.Unmarshal(data, agg); err != nil {
		return nil, errs.Storage("decode", DocumentName, err)
	}
	agg.Normalize()
	return agg, nil
}

func (s *Store) save(ctx context.Context, agg *models.Aggregate) error {
	data, err := json.MarshalIndent(agg, "", "  ")
	if err != nil {
		return errs.Storage("encode", DocumentName, err)
	}
	if err := s.docs.Save(ctx, DocumentName, data); err != nil {
		return errs.Storage("save", DocumentName, err)
	}
	return nil
}

// update runs fn against the freshly loaded aggregate and persists the result
// unless fn fails.
func (s *Store) update(ctx context.Context, fn func(agg *models.Aggregate, now time.Time) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(agg, s.now()); err != nil {
		return err
	}
	return s.save(ctx, agg)
}

// RecordSessionStart registers a session, or refreshes last_active when the
// session is already known.
func (s *Store) RecordSessionStart(ctx context.Context, sessionID string) error {
	return s.update(ctx, func(agg *models.Aggregate, now time.Time) error {
		if rec := agg.Session(sessionID); rec != nil {
			rec.LastActive = models.At(now)
			return nil
		}
		agg.Sessions = append(agg.Sessions, models.SessionRecord{
			SessionID:  sessionID,
			StartTime:  models.At(now),
			LastActive: models.At(now),
			ToolsUsed:  []string{},
		})
		return nil
	})
}

// RecordMessage counts one message for the session and recomputes its
// duration. It fails with NotFoundError when the session was never started.
func (s *Store) RecordMessage(ctx context.Context, sessionID string) error {
	return s.update(ctx, func(agg *models.Aggregate, now time.Time) error {
		rec := agg.Session(sessionID)
		if rec == nil {
			return &errs.NotFoundError{Kind: "session", ID: sessionID}
		}
		rec.MessagesCount++
		rec.LastActive = models.At(now)
		rec.DurationSeconds = now.Sub(rec.StartTime.Time).Seconds()
		return nil
	})
}

// RecordToolUsage counts one invocation of tool and adds it to the session's
// tool set. An empty or unknown session id only updates the global counter.
func (s *Store) RecordToolUsage(ctx context.Context, sessionID, tool string) error {
	return s.update(ctx, func(agg *models.Aggregate, now time.Time) error {
		agg.ToolUsage.Inc(tool)
		if rec := agg.Session(sessionID); rec != nil {
			rec.UseTool(tool)
		}
		return nil
	})
}

// RecordRoleRequest counts one request for role.
func (s *Store) RecordRoleRequest(ctx context.Context, role string) error {
	return s.update(ctx, func(agg *models.Aggregate, now time.Time) error {
		agg.RoleRequests.Inc(role)
		return nil
	})
}
