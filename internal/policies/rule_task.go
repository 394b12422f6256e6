package policies

// TaskPolicy authorizes access to task rows.
//
// Managers may view all tasks and create tasks, but updating or deleting an
// arbitrary task is not manager-granted: only the assignee or creator may
// touch it. The asymmetry with leads/contacts/deals is intentional and must
// not be generalized away.
func TaskPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			AssigneeOrCreatorRule(),
		},
		Insert: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			AssigneeOrCreatorRule(),
		},
		Update: Chain{
			AdminRule(res.Roles),
			AssigneeOrCreatorRule(),
		},
		Delete: Chain{
			AdminRule(res.Roles),
			AssigneeOrCreatorRule(),
		},
	}
}
