package models

import "time"

// User is an API account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
