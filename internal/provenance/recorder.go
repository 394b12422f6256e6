// Package provenance records who changed what: audit entries written in
// the same transaction as the mutation they describe, status and stage
// transition history, and automation outcome logs.
//
// Audit recording is fail-closed: a failed insert aborts the surrounding
// transaction, so a mutation can never commit without its audit entry.
// Automation logging degrades gracefully instead; a lost automation entry
// must not break the action that triggered it.
package provenance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/looplj/crmhub/internal/authz"
	"github.com/looplj/crmhub/internal/contexts"
	"github.com/looplj/crmhub/internal/log"
	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

// ErrRecordingFailed is matched by errors.Is for every audit write
// failure.
var ErrRecordingFailed = errors.New("provenance: recording failed")

// RecordingFailure wraps the underlying audit insert error. It is fatal
// to the enclosing transaction.
type RecordingFailure struct {
	Err error
}

func (e *RecordingFailure) Error() string {
	return fmt.Sprintf("provenance: recording failed: %v", e.Err)
}

func (e *RecordingFailure) Unwrap() error { return ErrRecordingFailed }

// Recorder writes provenance rows through the store's append paths.
type Recorder struct {
	store *store.Store
}

func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// RecordAudit appends one audit entry inside the ambient transaction.
// Actor and request metadata come from the context; old and new are
// snapshotted as JSON. Returns the entry id, or a RecordingFailure that
// must abort the caller's transaction.
func (r *Recorder) RecordAudit(ctx context.Context, action, entity string, entityID *int, oldValues, newValues any) (int, error) {
	oldJSON, err := snapshot(oldValues)
	if err != nil {
		return 0, &RecordingFailure{Err: err}
	}

	newJSON, err := snapshot(newValues)
	if err != nil {
		return 0, &RecordingFailure{Err: err}
	}

	entry := &objects.AuditLog{
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		OldValues: oldJSON,
		NewValues: newJSON,
	}

	if userID, ok := authz.CurrentUserID(ctx); ok {
		entry.ActorUserID = &userID
	}

	if requestID, ok := contexts.GetRequestID(ctx); ok {
		entry.RequestID = requestID
	}

	entry.IPAddress, entry.UserAgent = contexts.GetRequestMeta(ctx)

	id, err := r.store.AppendAuditLog(ctx, entry)
	if err != nil {
		return 0, &RecordingFailure{Err: err}
	}

	return id, nil
}

// RecordAutomation appends one automation outcome entry. Failures are
// logged and swallowed so the triggering action is never rolled back over
// a lost log line.
func (r *Recorder) RecordAutomation(ctx context.Context, entry *objects.AutomationLog) (int, error) {
	id, err := r.store.AppendAutomationLog(ctx, entry)
	if err != nil {
		log.Error(ctx, "automation log entry lost",
			log.String("kind", entry.Kind),
			log.String("trigger_event", entry.TriggerEvent),
			log.Cause(err),
		)

		return 0, nil
	}

	return id, nil
}

func snapshot(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("snapshot values: %w", err)
	}

	return data, nil
}

func actorPtr(ctx context.Context) *int {
	if userID, ok := authz.CurrentUserID(ctx); ok {
		return &userID
	}

	return nil
}
