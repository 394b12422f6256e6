package policies

// Primary entities (leads, contacts, deals) share one rule shape:
//
//   - admins: full access, all operations
//   - managers and above: read all rows, insert/update all rows
//   - owners: full CRUD on their own rows
//
// Managers are deliberately not granted delete over arbitrary rows; only
// the admin and owner rules reach the delete chain.
func primaryEntityPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			OwnerRule(),
		},
		Insert: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			OwnerRule(),
		},
		Update: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			OwnerRule(),
		},
		Delete: Chain{
			AdminRule(res.Roles),
			OwnerRule(),
		},
	}
}

// LeadPolicy authorizes access to lead rows.
func LeadPolicy(res Resolvers) EntityPolicy { return primaryEntityPolicy(res) }

// ContactPolicy authorizes access to contact rows.
func ContactPolicy(res Resolvers) EntityPolicy { return primaryEntityPolicy(res) }

// DealPolicy authorizes access to deal rows.
func DealPolicy(res Resolvers) EntityPolicy { return primaryEntityPolicy(res) }
