package domain

import "time"

// Roles assignable to an account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account record. PasswordHash and RefreshToken never
// appear in JSON output.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
