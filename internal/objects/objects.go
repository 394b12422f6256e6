// Package objects defines the domain records the access-control and
// provenance layers operate on. Every protected record implements Row;
// records with an owner implement Owned so ownership rules can stay
// generic across entity types.
package objects

// Entity type identifiers used across policies, guards and provenance.
const (
	EntityUser          = "users"
	EntityRoleAssign    = "role_assignments"
	EntityTeam          = "teams"
	EntityTeamMember    = "team_members"
	EntityLead          = "leads"
	EntityContact       = "contacts"
	EntityDeal          = "deals"
	EntityTask          = "tasks"
	EntityCommunication = "communications"
	EntityNote          = "notes"
	EntityDocument      = "documents"
	EntityAuditLog      = "audit_logs"
	EntityAutomationLog = "automation_logs"
)

// Row is a protected record passing through the policy pipeline.
type Row interface {
	EntityType() string
	RowID() int
}

// Owned is a row whose primary controller is a single principal.
type Owned interface {
	Row
	OwnerID() (int, bool)
}

// Created is a row that tracks the principal who created it.
type Created interface {
	Row
	CreatorID() (int, bool)
}

// ParentRef points a dependent row (note, document, communication) at the
// primary record it is attached to.
type ParentRef struct {
	Entity string
	ID     int
}

// Attached is a dependent row deriving visibility from a primary record.
type Attached interface {
	Row
	ParentRefs() []ParentRef
}
