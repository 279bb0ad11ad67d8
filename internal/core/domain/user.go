package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the persisted account record. The JSON layout is the one stored
// under the users key of the session store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the view of a User that is safe to hand to callers.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Claims returns the identity claims embedded into a token issued for u.
func (u *User) Claims() Claims {
	return Claims{
		ClaimUserID: u.ID,
		ClaimEmail:  u.Email,
		ClaimName:   u.Name,
		ClaimRole:   u.Role,
	}
}
