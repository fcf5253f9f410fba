package model

import (
	"strings"
	"time"
)

// Role is the closed set of community roles carried in access tokens.
type Role string

const (
	RoleResident      Role = "RESIDENT"
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleSuperAdmin    Role = "SUPERADMIN"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleResident, RoleAdministrator, RoleSuperAdmin:
		return r, true
	}
	return "", false
}

// UserStatus mirrors users.status.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. Handlers build their own response types so that the
// password hash never leaves the repository layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	FirstName    – given name.
//	LastName     – family name.
//	Phone        – optional contact number.
//	Role         – community role (RESIDENT, ADMINISTRATOR, SUPERADMIN).
//	Status       – ACTIVE or INACTIVE; inactive users cannot log in.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	PasswordHash string     // users.password_hash
	FirstName    string     // users.first_name
	LastName     string     // users.last_name
	Phone        *string    // users.phone (nullable)
	Role         Role       // users.role
	Status       UserStatus // users.status
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}

// Actor returns the identity used for authorization decisions.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   uint64
	Role Role
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
