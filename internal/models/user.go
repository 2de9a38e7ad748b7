package models

import (
	"time"
)

type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleModerator, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}

// CanModerateContent reports whether the role may edit or delete reviews
// and comments authored by other users.
func (r UserRole) CanModerateContent() bool {
	return r == UserRoleModerator || r == UserRoleAdmin
}

type User struct {
	ID int64 `db:"id" json:"-"`

	Username  string   `db:"username" json:"username"`
	Email     string   `db:"email" json:"email"`
	FirstName string   `db:"first_name" json:"first_name"`
	LastName  string   `db:"last_name" json:"last_name"`
	Bio       string   `db:"bio" json:"bio"`
	Role      UserRole `db:"role" json:"role"`

	// Bcrypt hash of the last issued confirmation code; empty until the
	// user has gone through signup at least once.
	ConfirmationCodeHash string `db:"confirmation_code_hash" json:"-"`

	IsSuperuser bool `db:"is_superuser" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Privileged reports whether the user bypasses ownership checks entirely.
func (u *User) Privileged() bool {
	return u.IsSuperuser || u.Role.IsAdmin()
}
