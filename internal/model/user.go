// Package model defines the data structures used throughout the application.
package model

import "time"

// User is an account that can log in and collect favorites.
//
// PasswordHash carries `json:"-"` so a User can be written straight to a
// response without leaking the credential. Never remove that tag.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser builds a User ready for insertion. The hash must already be
// computed by auth.PasswordService.
func NewUser(username, passwordHash string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
	}
}
