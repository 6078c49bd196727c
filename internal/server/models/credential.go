// Package models holds the rows of the control database.
package models

import "time"

// Credential is a row of login_credentials. PasswordHash is a bcrypt hash.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
