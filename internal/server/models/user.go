// Package models defines the server-side data models persisted by the
// repositories and passed between services.
package models

import "time"

// User is an account record. PasswordHash is a bcrypt hash and is never
// serialized.
type User struct {
	ID           string
	FirstName    *string
	LastName     *string
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Back references, filled on demand by the users repository.
	Events []string
	Tasks  []string
}

// UserView is the redacted projection returned to clients.
type UserView struct {
	ID         string    `json:"id"`
	FirstName  *string   `json:"firstName,omitempty"`
	LastName   *string   `json:"lastName,omitempty"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	Events     []string  `json:"events"`
	Tasks      []string  `json:"tasks"`
	CreatedAt  time.Time `json:"createdAt"`
}

// View returns the client-facing projection of u.
func (u *User) View() UserView {
	v := UserView{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		Events:     u.Events,
		Tasks:      u.Tasks,
		CreatedAt:  u.CreatedAt,
	}
	if v.Events == nil {
		v.Events = []string{}
	}
	if v.Tasks == nil {
		v.Tasks = []string{}
	}
	return v
}

// Identity is the authenticated requester as decoded from an access token.
type Identity struct {
	Subject string
	Role    Role
}
