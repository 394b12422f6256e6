package policies

// AuditLogPolicy authorizes access to audit log rows. Reading requires
// manager-or-above; there is no insert, update or delete chain — entries
// only enter through the provenance recorder's internal write path, which
// runs with a system principal and bypasses the standard check.
func AuditLogPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			ManagerOrAboveRule(res.Roles),
		},
	}
}

// AutomationLogPolicy authorizes access to automation log rows. Visible
// only to administrators; append-only through the automation logger.
func AutomationLogPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
		},
	}
}
