package objects

import "time"

// User is a login identity. Role assignments live in RoleAssignment rows;
// a user with no assignment acts with the default "user" role.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) EntityType() string { return EntityUser }
func (u *User) RowID() int         { return u.ID }

// RoleAssignment binds a user to a role value. Unique per (user, role).
type RoleAssignment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *RoleAssignment) EntityType() string { return EntityRoleAssign }
func (r *RoleAssignment) RowID() int         { return r.ID }

// Team groups users under a single owner.
type Team struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerUserID int       `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Team) EntityType() string { return EntityTeam }
func (t *Team) RowID() int         { return t.ID }

func (t *Team) OwnerID() (int, bool) { return t.OwnerUserID, true }

// TeamMember is a (team, user, team role) triple. Unique per (team, user).
type TeamMember struct {
	ID        int       `json:"id"`
	TeamID    int       `json:"team_id"`
	UserID    int       `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (m *TeamMember) EntityType() string { return EntityTeamMember }
func (m *TeamMember) RowID() int         { return m.ID }
