package provenance

import (
	"context"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/policies"
	"github.com/looplj/crmhub/internal/store"
)

// AuditObserver records every committed mutation as an audit entry inside
// the mutating transaction. A failed write rolls the mutation back.
func AuditObserver(r *Recorder) store.ObserverFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		var (
			entityID  *int
			oldValues any
			newValues any
		)

		if m.Old != nil {
			id := m.Old.RowID()
			entityID = &id
			oldValues = m.Old
		}

		if m.New != nil {
			id := m.New.RowID()
			entityID = &id
			newValues = m.New
		}

		_, err := r.RecordAudit(ctx, string(m.Op), m.Entity, entityID, oldValues, newValues)

		return err
	}
}

// LeadStatusObserver appends a history entry for every committed lead
// status transition. Creation records the initial status with a null
// predecessor; updates that leave the status untouched record nothing.
func LeadStatusObserver(r *Recorder) store.ObserverFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		if m.Entity != objects.EntityLead {
			return nil
		}

		switch m.Op {
		case policies.OpInsert:
			lead, ok := m.New.(*objects.Lead)
			if !ok {
				return nil
			}

			entry := &objects.LeadStatusHistory{
				LeadID:      lead.ID,
				NewStatus:   &lead.Status,
				ActorUserID: actorPtr(ctx),
			}

			if _, err := r.store.AppendLeadStatusHistory(ctx, entry); err != nil {
				return &RecordingFailure{Err: err}
			}

			return nil
		case policies.OpUpdate:
			old, ok := m.Old.(*objects.Lead)
			if !ok {
				return nil
			}

			next, ok := m.New.(*objects.Lead)
			if !ok {
				return nil
			}

			if !transitionChanged(&old.Status, &next.Status) {
				return nil
			}

			entry := &objects.LeadStatusHistory{
				LeadID:      next.ID,
				OldStatus:   &old.Status,
				NewStatus:   &next.Status,
				ActorUserID: actorPtr(ctx),
			}

			if _, err := r.store.AppendLeadStatusHistory(ctx, entry); err != nil {
				return &RecordingFailure{Err: err}
			}

			return nil
		default:
			return nil
		}
	}
}

// DealStageObserver appends a history entry for every committed deal
// stage transition, mirroring LeadStatusObserver.
func DealStageObserver(r *Recorder) store.ObserverFunc {
	return func(ctx context.Context, m *store.Mutation) error {
		if m.Entity != objects.EntityDeal {
			return nil
		}

		switch m.Op {
		case policies.OpInsert:
			deal, ok := m.New.(*objects.Deal)
			if !ok {
				return nil
			}

			entry := &objects.DealStageHistory{
				DealID:      deal.ID,
				NewStage:    &deal.Stage,
				ActorUserID: actorPtr(ctx),
			}

			if _, err := r.store.AppendDealStageHistory(ctx, entry); err != nil {
				return &RecordingFailure{Err: err}
			}

			return nil
		case policies.OpUpdate:
			old, ok := m.Old.(*objects.Deal)
			if !ok {
				return nil
			}

			next, ok := m.New.(*objects.Deal)
			if !ok {
				return nil
			}

			if !transitionChanged(&old.Stage, &next.Stage) {
				return nil
			}

			entry := &objects.DealStageHistory{
				DealID:      next.ID,
				OldStage:    &old.Stage,
				NewStage:    &next.Stage,
				ActorUserID: actorPtr(ctx),
			}

			if _, err := r.store.AppendDealStageHistory(ctx, entry); err != nil {
				return &RecordingFailure{Err: err}
			}

			return nil
		default:
			return nil
		}
	}
}

// transitionChanged reports whether the tracked value actually moved.
// Two nils are the same value, not a transition.
func transitionChanged(old, next *string) bool {
	if old == nil && next == nil {
		return false
	}

	if old == nil || next == nil {
		return true
	}

	return *old != *next
}
