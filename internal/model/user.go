package model

import "time"

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserRef is the minimal user projection joined into sound and comment
// responses (id + display name only).
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Ref returns the projection of the user used in response shaping.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username}
}
