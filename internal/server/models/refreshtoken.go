package models

import "time"

type RefreshToken struct {
	ID        int64
	Username  string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
