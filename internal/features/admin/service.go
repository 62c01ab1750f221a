// Package admin — service.go holds authentication and the session-gated
// administrative actions.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/config"
)

// Store is the persistence surface; *Repository implements it.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	ActiveSession(ctx context.Context, userID int64) (*Session, error)
	DeactivateSessions(ctx context.Context, userID int64) error
	TouchActivity(ctx context.Context, userID int64) error
	CleanupExpired(ctx context.Context) (int64, error)
	LogAttempt(ctx context.Context, userID int64, success bool) error
	RecentFailures(ctx context.Context, userID int64, window time.Duration) (int, error)
}

// Accounts flips the privileged tier; *economy.Service implements it.
type Accounts interface {
	SetPrivileged(ctx context.Context, userID, guildID int64, privileged bool) error
}

// Catalog removes shop wares; *shop.Service implements it.
type Catalog interface {
	RemoveItem(ctx context.Context, guildID int64, name string) error
}

// Service gates administrative actions behind password sessions.
type Service struct {
	store    Store
	accounts Accounts
	catalog  Catalog
	cfg      *config.Config
}

// NewService creates the admin service.
func NewService(store Store, accounts Accounts, catalog Catalog, cfg *config.Config) *Service {
	return &Service{store: store, accounts: accounts, catalog: catalog, cfg: cfg}
}

// Login verifies the admin password and opens a session. Three failed
// attempts inside an hour lock the user out for the remainder of the window.
func (s *Service) Login(ctx context.Context, userID int64, password string) (*Session, error) {
	failures, err := s.store.RecentFailures(ctx, userID, attemptWindow)
	if err != nil {
		return nil, err
	}
	if failures >= maxLoginAttempts {
		return nil, common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)
	if err := s.store.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Warn("failed to log login attempt")
	}
	if !match {
		return nil, common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    time.Now().Add(s.cfg.AdminSessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	log.WithField("user", userID).Info("admin session opened")
	return session, nil
}

// Logout deactivates the user's sessions.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.store.DeactivateSessions(ctx, userID)
}

// HasActiveSession reports whether the user is currently authenticated.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.store.ActiveSession(ctx, userID)
	return err == nil && session != nil
}

// requireSession refreshes activity and rejects unauthenticated callers.
func (s *Service) requireSession(ctx context.Context, userID int64) error {
	if !s.HasActiveSession(ctx, userID) {
		return common.ErrSessionExpired
	}
	if err := s.store.TouchActivity(ctx, userID); err != nil {
		log.WithError(err).Debug("failed to touch session activity")
	}
	return nil
}

// SetPrivileged grants or revokes the privileged tier for an account.
func (s *Service) SetPrivileged(ctx context.Context, adminID, userID, guildID int64, privileged bool) error {
	if err := s.requireSession(ctx, adminID); err != nil {
		return err
	}
	if err := s.accounts.SetPrivileged(ctx, userID, guildID, privileged); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"admin":      adminID,
		"user":       userID,
		"guild":      guildID,
		"privileged": privileged,
	}).Info("privileged tier changed")
	return nil
}

// RemoveShopItem deletes a ware from the guild catalog.
func (s *Service) RemoveShopItem(ctx context.Context, adminID, guildID int64, name string) error {
	if err := s.requireSession(ctx, adminID); err != nil {
		return err
	}
	if err := s.catalog.RemoveItem(ctx, guildID, name); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"admin": adminID,
		"guild": guildID,
		"item":  name,
	}).Info("shop item removed")
	return nil
}

// CleanupExpiredSessions deactivates stale sessions. Wired to the hourly job.
func (s *Service) CleanupExpiredSessions(ctx context.Context) error {
	n, err := s.store.CleanupExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.WithField("count", n).Info("expired admin sessions cleaned")
	}
	return nil
}

// verifyArgon2id checks a password against an Argon2id hash.
// Hash format: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("malformed Argon2id hash")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("failed to parse Argon2id parameters")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("failed to decode salt")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("failed to decode hash")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Constant-time compare guards against timing attacks.
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken produces a cryptographically secure session token.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
