// Package admin — repository.go works the admin_sessions and
// admin_login_attempts tables.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository owns the admin tables.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the admin repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateSession stores a fresh authenticated session.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_sessions (user_id, session_token, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)
	`, s.UserID, s.SessionToken, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// ActiveSession returns the user's newest unexpired session, if any.
func (r *Repository) ActiveSession(ctx context.Context, userID int64) (*Session, error) {
	var s Session
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, session_token, authenticated_at, expires_at, last_activity, is_active
		FROM admin_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > NOW()
		ORDER BY authenticated_at DESC
		LIMIT 1
	`, userID).Scan(&s.ID, &s.UserID, &s.SessionToken, &s.AuthenticatedAt,
		&s.ExpiresAt, &s.LastActivity, &s.IsActive)
	if err != nil {
		return nil, fmt.Errorf("active session not found: %w", err)
	}
	return &s, nil
}

// DeactivateSessions logs the user out everywhere.
func (r *Repository) DeactivateSessions(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admin_sessions SET is_active = FALSE WHERE user_id = $1`, userID)
	return err
}

// TouchActivity updates the last-activity stamp of live sessions.
func (r *Repository) TouchActivity(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE admin_sessions SET last_activity = NOW() WHERE user_id = $1 AND is_active = TRUE`,
		userID)
	return err
}

// CleanupExpired deactivates sessions past their expiry. Run hourly.
func (r *Repository) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE admin_sessions SET is_active = FALSE WHERE is_active = TRUE AND expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LogAttempt records a login attempt.
func (r *Repository) LogAttempt(ctx context.Context, userID int64, success bool) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_login_attempts (user_id, success) VALUES ($1, $2)`,
		userID, success)
	return err
}

// RecentFailures counts failed attempts inside the window.
func (r *Repository) RecentFailures(ctx context.Context, userID int64, window time.Duration) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND success = FALSE AND attempt_time >= $2
	`, userID, time.Now().Add(-window)).Scan(&count)
	return count, err
}
