package policies

// Dependent entities (notes, documents, communications) derive visibility
// from the primary record they reference: the owner of the referenced
// lead/contact/deal may read, and the entry's own creator/uploader may
// always read and delete their own entry.
func dependentEntityPolicy(res Resolvers) EntityPolicy {
	return EntityPolicy{
		Select: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			CreatorRule(),
			ParentOwnerRule(res.Owners),
		},
		Insert: Chain{
			AdminRule(res.Roles),
			ManagerOrAboveRule(res.Roles),
			CreatorRule(),
			ParentOwnerRule(res.Owners),
		},
		Update: Chain{
			AdminRule(res.Roles),
			CreatorRule(),
		},
		Delete: Chain{
			AdminRule(res.Roles),
			CreatorRule(),
		},
	}
}

// NotePolicy authorizes access to note rows.
func NotePolicy(res Resolvers) EntityPolicy { return dependentEntityPolicy(res) }

// DocumentPolicy authorizes access to document rows. The at-most-one
// attachment constraint is a data-integrity guard, not a policy rule; see
// the guards package.
func DocumentPolicy(res Resolvers) EntityPolicy { return dependentEntityPolicy(res) }

// CommunicationPolicy authorizes access to communication rows.
func CommunicationPolicy(res Resolvers) EntityPolicy { return dependentEntityPolicy(res) }
