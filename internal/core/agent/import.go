package agent

import (
	"context"
	"errors"
	"slices"

	"github.com/neilberkman/hireplan/internal/core/models"
)

// ImportResult summarizes a replayed transcript.
type ImportResult struct {
	Turns int
	Roles []string // known roles after the import

	// Err collects absorbed analytics failures, as Reply.Err does.
	Err error
}

// Import appends recorded turns to sess without calling the completion
// service. Analytics sees every turn as a message, role requests are counted
// on user turns, and the extractor runs over each user turn together with
// the assistant turn that follows it. Turns with a zero timestamp are
// stamped with the current time. Only the session save can fail the import.
func (a *Agent) Import(ctx context.Context, sess *models.Session, turns []models.Turn) (ImportResult, error) {
	t := &turn{a: a, sess: sess}
	now := models.At(a.now())

	history := slices.Clone(sess.History)
	req := sess.HiringNeeds
	for i, tn := range turns {
		if tn.Timestamp.IsZero() {
			tn.Timestamp = now
		}
		history = append(history, tn)
		t.check("record_message", a.recordMessage(ctx, sess.ID))

		if tn.Role != models.RoleUser {
			continue
		}
		for _, role := range requestedRoles(tn.Content) {
			t.check("record_role_request", a.analytics.RecordRoleRequest(ctx, role))
		}
		var assistantText string
		if i+1 < len(turns) && turns[i+1].Role == models.RoleAssistant {
			assistantText = turns[i+1].Content
		}
		req = a.extractor.Extract(req, tn.Content, assistantText)
	}

	sess.History = history
	if err := a.sessions.SetHiringNeeds(ctx, sess, req); err != nil {
		return ImportResult{}, err
	}

	a.logger.Info("imported transcript", "session", sess.ID, "turns", len(turns), "roles", len(req.Roles))
	return ImportResult{
		Turns: len(turns),
		Roles: slices.Clone(sess.HiringNeeds.Roles),
		Err:   errors.Join(t.errs...),
	}, nil
}
