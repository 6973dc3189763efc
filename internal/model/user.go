package model

import "time"

// Role is the access level of a registered user.
type Role string

const (
    RoleAdmin Role = "admin"
    RoleUser  Role = "user"
)

// User represents a registered account as persisted under the `users`
// key.  Email is stored lower-cased so lookups can be case-insensitive.
// Only a bcrypt hash of the password is kept; the plain password never
// leaves the Identity Directory.
//
// Fields:
//  ID           – stable identifier (e.g. user-admin-001).
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  Name         – display name.
//  Role         – admin or user.
//  Phone        – optional phone number.
//  CreatedAt    – registration time (UTC).
type User struct {
    ID           string    `json:"id"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"passwordHash"`
    Name         string    `json:"name"`
    Role         Role      `json:"role"`
    Phone        string    `json:"phone,omitempty"`
    CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
