package model

import "time"

// Role is the persisted access level of a registered account.
// Super admins are resolved from configuration and never stored.
type Role string

const (
	RoleUser          Role = "user"
	RoleOrgAdmin      Role = "org_admin"
	RoleHospitalAdmin Role = "hospital_admin"
)

// User represents a registered account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	ScopeID      string
	CreatedAt    time.Time
}

// Principal derives the request principal for this account.
func (u *User) Principal() Principal {
	return Principal{Kind: PrincipalKind(u.Role), UserID: u.ID, ScopeID: u.ScopeID}
}
