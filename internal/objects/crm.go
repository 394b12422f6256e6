package objects

import "time"

// Lead statuses are an unordered enumeration; any value may move to any
// other value. Only the conversion marker is one-way.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusLost      = "lost"
	LeadStatusConverted = "converted"
)

// Deal stages, equally unordered.
const (
	DealStageProspecting = "prospecting"
	DealStageProposal    = "proposal"
	DealStageNegotiation = "negotiation"
	DealStageClosedWon   = "closed_won"
	DealStageClosedLost  = "closed_lost"
)

const TaskStatusCompleted = "completed"

type Lead struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	Company            string    `json:"company"`
	Status             string    `json:"status"`
	Source             string    `json:"source"`
	OwnerUserID        int       `json:"owner_user_id"`
	ConvertedContactID *int      `json:"converted_contact_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (l *Lead) EntityType() string   { return EntityLead }
func (l *Lead) RowID() int           { return l.ID }
func (l *Lead) OwnerID() (int, bool) { return l.OwnerUserID, l.OwnerUserID != 0 }

type Contact struct {
	ID          int       `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Company     string    `json:"company"`
	OwnerUserID int       `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Contact) EntityType() string   { return EntityContact }
func (c *Contact) RowID() int           { return c.ID }
func (c *Contact) OwnerID() (int, bool) { return c.OwnerUserID, c.OwnerUserID != 0 }

type Deal struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Stage       string    `json:"stage"`
	ContactID   *int      `json:"contact_id,omitempty"`
	OwnerUserID int       `json:"owner_user_id"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d *Deal) EntityType() string   { return EntityDeal }
func (d *Deal) RowID() int           { return d.ID }
func (d *Deal) OwnerID() (int, bool) { return d.OwnerUserID, d.OwnerUserID != 0 }

// Task authorization keys off assignee or creator rather than a single
// owner attribute.
type Task struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	DueAt          *time.Time `json:"due_at,omitempty"`
	AssigneeUserID *int       `json:"assignee_user_id,omitempty"`
	CreatorUserID  int        `json:"creator_user_id"`
	LeadID         *int       `json:"lead_id,omitempty"`
	DealID         *int       `json:"deal_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Task) EntityType() string { return EntityTask }
func (t *Task) RowID() int         { return t.ID }

func (t *Task) CreatorID() (int, bool) { return t.CreatorUserID, t.CreatorUserID != 0 }

// AssigneeID returns the assignee, false when the task is unassigned.
func (t *Task) AssigneeID() (int, bool) {
	if t.AssigneeUserID == nil {
		return 0, false
	}

	return *t.AssigneeUserID, true
}

type Communication struct {
	ID            int       `json:"id"`
	Kind          string    `json:"kind"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	LeadID        *int      `json:"lead_id,omitempty"`
	ContactID     *int      `json:"contact_id,omitempty"`
	DealID        *int      `json:"deal_id,omitempty"`
	CreatorUserID int       `json:"creator_user_id"`
	OccurredAt    time.Time `json:"occurred_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (c *Communication) EntityType() string     { return EntityCommunication }
func (c *Communication) RowID() int             { return c.ID }
func (c *Communication) CreatorID() (int, bool) { return c.CreatorUserID, c.CreatorUserID != 0 }

func (c *Communication) ParentRefs() []ParentRef {
	return parentRefs(c.LeadID, c.ContactID, c.DealID)
}

type Note struct {
	ID            int       `json:"id"`
	Body          string    `json:"body"`
	LeadID        *int      `json:"lead_id,omitempty"`
	ContactID     *int      `json:"contact_id,omitempty"`
	DealID        *int      `json:"deal_id,omitempty"`
	CreatorUserID int       `json:"creator_user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (n *Note) EntityType() string     { return EntityNote }
func (n *Note) RowID() int             { return n.ID }
func (n *Note) CreatorID() (int, bool) { return n.CreatorUserID, n.CreatorUserID != 0 }

func (n *Note) ParentRefs() []ParentRef {
	return parentRefs(n.LeadID, n.ContactID, n.DealID)
}

type Document struct {
	ID             int       `json:"id"`
	FileName       string    `json:"file_name"`
	StorageKey     string    `json:"storage_key"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	LeadID         *int      `json:"lead_id,omitempty"`
	ContactID      *int      `json:"contact_id,omitempty"`
	DealID         *int      `json:"deal_id,omitempty"`
	UploaderUserID int       `json:"uploader_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func (d *Document) EntityType() string     { return EntityDocument }
func (d *Document) RowID() int             { return d.ID }
func (d *Document) CreatorID() (int, bool) { return d.UploaderUserID, d.UploaderUserID != 0 }

func (d *Document) ParentRefs() []ParentRef {
	return parentRefs(d.LeadID, d.ContactID, d.DealID)
}

// AttachmentCount reports how many primary records the document points at.
// At most one is allowed at creation time.
func (d *Document) AttachmentCount() int {
	return len(d.ParentRefs())
}

func parentRefs(leadID, contactID, dealID *int) []ParentRef {
	refs := make([]ParentRef, 0, 1)
	if leadID != nil {
		refs = append(refs, ParentRef{Entity: EntityLead, ID: *leadID})
	}

	if contactID != nil {
		refs = append(refs, ParentRef{Entity: EntityContact, ID: *contactID})
	}

	if dealID != nil {
		refs = append(refs, ParentRef{Entity: EntityDeal, ID: *dealID})
	}

	return refs
}
