// Package admin gates administrative actions: password authentication with
// sessions and brute-force throttling, privileged-tier grants, and shop
// catalog removal.
package admin

import "time"

// Session is one authenticated admin session.
type Session struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

const (
	// maxLoginAttempts failed logins within attemptWindow locks the user out.
	maxLoginAttempts = 3
	attemptWindow    = time.Hour
)
