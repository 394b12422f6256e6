package biz

import (
	"context"

	"go.uber.org/fx"

	"github.com/looplj/crmhub/internal/objects"
	"github.com/looplj/crmhub/internal/store"
)

type ProvenanceServiceParams struct {
	fx.In

	Store *store.Store
}

func NewProvenanceService(params ProvenanceServiceParams) *ProvenanceService {
	return &ProvenanceService{
		AbstractService: &AbstractService{store: params.Store},
	}
}

// ProvenanceService exposes the read side of the audit trail. Writing
// happens inside the mutation pipeline only.
type ProvenanceService struct {
	*AbstractService
}

// ListAuditLogs returns audit entries, optionally scoped to one record.
// The audit log select policy limits them to managers and admins.
func (s *ProvenanceService) ListAuditLogs(ctx context.Context, entity string, entityID int) ([]*objects.AuditLog, error) {
	return s.store.ListAuditLogs(ctx, entity, entityID)
}

// ListAutomationLogs returns automation outcomes; admin only via policy.
func (s *ProvenanceService) ListAutomationLogs(ctx context.Context, entity string, entityID int) ([]*objects.AutomationLog, error) {
	return s.store.ListAutomationLogs(ctx, entity, entityID)
}
