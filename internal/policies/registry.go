package policies

import "github.com/looplj/crmhub/internal/objects"

// DefaultPolicies wires every protected entity to its rule set.
func DefaultPolicies(res Resolvers) map[string]EntityPolicy {
	return map[string]EntityPolicy{
		objects.EntityUser:          UserPolicy(res),
		objects.EntityRoleAssign:    RoleAssignmentPolicy(res),
		objects.EntityTeam:          TeamPolicy(res),
		objects.EntityTeamMember:    TeamMemberPolicy(res),
		objects.EntityLead:          LeadPolicy(res),
		objects.EntityContact:       ContactPolicy(res),
		objects.EntityDeal:          DealPolicy(res),
		objects.EntityTask:          TaskPolicy(res),
		objects.EntityCommunication: CommunicationPolicy(res),
		objects.EntityNote:          NotePolicy(res),
		objects.EntityDocument:      DocumentPolicy(res),
		objects.EntityAuditLog:      AuditLogPolicy(res),
		objects.EntityAutomationLog: AutomationLogPolicy(res),
	}
}

// NewDefaultEvaluator builds the evaluator over the default rule set.
func NewDefaultEvaluator(res Resolvers) *Evaluator {
	return NewEvaluator(DefaultPolicies(res))
}
