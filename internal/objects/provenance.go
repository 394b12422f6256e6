package objects

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only record of a principal-initiated change.
// Normal principals have no write or update path to it; entries are only
// produced by the provenance recorder inside the mutating transaction.
type AuditLog struct {
	ID          int             `json:"id"`
	ActorUserID *int            `json:"actor_user_id,omitempty"`
	Action      string          `json:"action"`
	Entity      string          `json:"entity_type"`
	EntityID    *int            `json:"entity_id,omitempty"`
	OldValues   json.RawMessage `json:"old_values,omitempty"`
	NewValues   json.RawMessage `json:"new_values,omitempty"`
	RequestID   string          `json:"request_id,omitempty"`
	IPAddress   string          `json:"ip_address,omitempty"`
	UserAgent   string          `json:"user_agent,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (a *AuditLog) EntityType() string { return EntityAuditLog }
func (a *AuditLog) RowID() int         { return a.ID }

// LeadStatusHistory captures one committed lead status transition.
type LeadStatusHistory struct {
	ID          int       `json:"id"`
	LeadID      int       `json:"lead_id"`
	OldStatus   *string   `json:"old_status,omitempty"`
	NewStatus   *string   `json:"new_status,omitempty"`
	ActorUserID *int      `json:"actor_user_id,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DealStageHistory captures one committed deal stage transition.
type DealStageHistory struct {
	ID          int       `json:"id"`
	DealID      int       `json:"deal_id"`
	OldStage    *string   `json:"old_stage,omitempty"`
	NewStage    *string   `json:"new_stage,omitempty"`
	ActorUserID *int      `json:"actor_user_id,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AutomationLog records the outcome of a system-triggered action. It is
// produced only by the automation write path, never by a principal.
type AutomationLog struct {
	ID           int       `json:"id"`
	Kind         string    `json:"kind"`
	Entity       string    `json:"entity_type"`
	EntityID     *int      `json:"entity_id,omitempty"`
	TriggerEvent string    `json:"trigger_event"`
	ActionTaken  string    `json:"action_taken"`
	Status       string    `json:"status"`
	ErrorDetail  string    `json:"error_detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *AutomationLog) EntityType() string { return EntityAutomationLog }
func (a *AutomationLog) RowID() int         { return a.ID }

const (
	AutomationStatusSuccess = "success"
	AutomationStatusFailed  = "failed"
)
