package models

import "time"

// UserRole is the access level of an account.
type UserRole string

const (
	// RoleAdmin manages users, teams, equipment and reports.
	RoleAdmin UserRole = "ADMIN"
	// RoleTechnician works requests assigned to their team.
	RoleTechnician UserRole = "TECHNICIAN"
	// RoleUser can raise requests and track their own.
	RoleUser UserRole = "USER"
)

// User is a row in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	TeamID       *string    `db:"team_id" json:"team_id,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// InTeam reports whether the user belongs to the given team.
func (u *User) InTeam(teamID string) bool {
	return u != nil && u.TeamID != nil && *u.TeamID == teamID
}

// UserFilter narrows and pages the admin user listing.
type UserFilter struct {
	Role      *UserRole
	TeamID    *string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination is the paging block of list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
