package admin

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/config"
)

// makeHash builds an Argon2id hash the way the generator script does, with
// small parameters to keep the test fast.
func makeHash(password string) string {
	salt := []byte("0123456789abcdef")
	var (
		memory      uint32 = 1024
		iterations  uint32 = 1
		parallelism uint8  = 1
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

// fakeStore keeps sessions and attempts in memory.
type fakeStore struct {
	sessions []*Session
	failures map[int64]int
	touched  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{failures: make(map[int64]int)}
}

func (f *fakeStore) CreateSession(_ context.Context, s *Session) error {
	s.IsActive = true
	f.sessions = append(f.sessions, s)
	return nil
}

func (f *fakeStore) ActiveSession(_ context.Context, userID int64) (*Session, error) {
	for i := len(f.sessions) - 1; i >= 0; i-- {
		s := f.sessions[i]
		if s.UserID == userID && s.IsActive && s.ExpiresAt.After(time.Now()) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no active session")
}

func (f *fakeStore) DeactivateSessions(_ context.Context, userID int64) error {
	for _, s := range f.sessions {
		if s.UserID == userID {
			s.IsActive = false
		}
	}
	return nil
}

func (f *fakeStore) TouchActivity(_ context.Context, _ int64) error {
	f.touched++
	return nil
}

func (f *fakeStore) CleanupExpired(_ context.Context) (int64, error) {
	var n int64
	for _, s := range f.sessions {
		if s.IsActive && !s.ExpiresAt.After(time.Now()) {
			s.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LogAttempt(_ context.Context, userID int64, success bool) error {
	if !success {
		f.failures[userID]++
	}
	return nil
}

func (f *fakeStore) RecentFailures(_ context.Context, userID int64, _ time.Duration) (int, error) {
	return f.failures[userID], nil
}

type fakeAccounts struct {
	privileged map[[2]int64]bool
}

func (f *fakeAccounts) SetPrivileged(_ context.Context, userID, guildID int64, privileged bool) error {
	if f.privileged == nil {
		f.privileged = make(map[[2]int64]bool)
	}
	f.privileged[[2]int64{userID, guildID}] = privileged
	return nil
}

type fakeCatalog struct {
	removed []string
}

func (f *fakeCatalog) RemoveItem(_ context.Context, _ int64, name string) error {
	f.removed = append(f.removed, name)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AdminPasswordHash: makeHash("crownjewels"),
		AdminSessionTTL:   24 * time.Hour,
	}
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAccounts{}, &fakeCatalog{}, testConfig())

	_, err := svc.Login(context.Background(), 1, "guess")
	require.ErrorIs(t, err, common.ErrWrongPassword)
	require.False(t, svc.HasActiveSession(context.Background(), 1))
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAccounts{}, &fakeCatalog{}, testConfig())

	session, err := svc.Login(context.Background(), 1, "crownjewels")
	require.NoError(t, err)
	require.NotEmpty(t, session.SessionToken)
	require.True(t, svc.HasActiveSession(context.Background(), 1))
}

func TestLoginThrottling(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAccounts{}, &fakeCatalog{}, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, 1, "guess")
		require.ErrorIs(t, err, common.ErrWrongPassword)
	}

	// Fourth attempt refused even with the right password.
	_, err := svc.Login(ctx, 1, "crownjewels")
	require.ErrorIs(t, err, common.ErrTooManyAttempts)

	// Another user is unaffected.
	_, err = svc.Login(ctx, 2, "crownjewels")
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAccounts{}, &fakeCatalog{}, testConfig())
	ctx := context.Background()

	_, err := svc.Login(ctx, 1, "crownjewels")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, 1))
	require.False(t, svc.HasActiveSession(ctx, 1))
}

func TestActionsRequireSession(t *testing.T) {
	store := newFakeStore()
	accounts := &fakeAccounts{}
	catalog := &fakeCatalog{}
	svc := NewService(store, accounts, catalog, testConfig())
	ctx := context.Background()

	err := svc.SetPrivileged(ctx, 1, 2, 10, true)
	require.ErrorIs(t, err, common.ErrSessionExpired)

	err = svc.RemoveShopItem(ctx, 1, 10, "Sword")
	require.ErrorIs(t, err, common.ErrSessionExpired)
	require.Empty(t, catalog.removed)

	_, err = svc.Login(ctx, 1, "crownjewels")
	require.NoError(t, err)

	require.NoError(t, svc.SetPrivileged(ctx, 1, 2, 10, true))
	require.True(t, accounts.privileged[[2]int64{2, 10}])

	require.NoError(t, svc.RemoveShopItem(ctx, 1, 10, "Sword"))
	require.Equal(t, []string{"Sword"}, catalog.removed)
	require.Equal(t, 2, store.touched)
}

func TestCleanupExpiredSessions(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeAccounts{}, &fakeCatalog{}, testConfig())
	ctx := context.Background()

	store.sessions = append(store.sessions, &Session{
		UserID:       1,
		SessionToken: "stale",
		ExpiresAt:    time.Now().Add(-time.Hour),
		IsActive:     true,
	})

	require.NoError(t, svc.CleanupExpiredSessions(ctx))
	require.False(t, svc.HasActiveSession(ctx, 1))
}

func TestVerifyArgon2id(t *testing.T) {
	hash := makeHash("secret")

	require.True(t, verifyArgon2id("secret", hash))
	require.False(t, verifyArgon2id("Secret", hash))
	require.False(t, verifyArgon2id("", hash))
	require.False(t, verifyArgon2id("secret", "not-a-hash"))
	require.False(t, verifyArgon2id("secret", "$argon2id$v=19$bad$salt$hash"))
}
