package models

import "time"

// AnonymousEmailDomain is the domain of synthesized anonymous emails.
const AnonymousEmailDomain = "motorbike-parking.app"

// User is an account. Anonymous users have no password hash and a
// synthesized email.
type User struct {
	CreatedAt    time.Time `json:"createdAt"`
	PasswordHash *string   `json:"-"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	IsAnonymous  bool      `json:"isAnonymous"`
	IsAdmin      bool      `json:"isAdmin"`
	IsActive     bool      `json:"isActive"`
}

// NewUser is the data needed to create a user.
type NewUser struct {
	PasswordHash *string
	Email        string
	IsAnonymous  bool
	IsAdmin      bool
}
