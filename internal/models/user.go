package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk" json:"id"`
	Username     string    `bun:"username,unique,notnull" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	IsAdmin      bool      `bun:"is_admin,notnull" json:"is_admin"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Actor is the authenticated identity a request acts as.
type Actor struct {
	UserID  string
	IsAdmin bool
}
