package model

import "time"

// RolePerformer is the only persisted account role.  Admins are performers
// whose email appears on the configured allow-list; audience members never
// get a users row (their identity is a device uid held client-side).
const RolePerformer = "performer"

// User represents a performer account as stored in the `users` table.
// The credential (password hash) and the profile live in the same row, so
// signup is a single atomic insert.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
