package perms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"royalmint.dev/discord-bot/internal/common"
)

// fakeStore counts List calls so the cache behavior is observable.
type fakeStore struct {
	roles     map[int64][]int64
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{roles: make(map[int64][]int64)}
}

func (f *fakeStore) Add(_ context.Context, guildID, roleID, _ int64) error {
	for _, r := range f.roles[guildID] {
		if r == roleID {
			return nil
		}
	}
	f.roles[guildID] = append(f.roles[guildID], roleID)
	return nil
}

func (f *fakeStore) Remove(_ context.Context, guildID, roleID int64) error {
	for i, r := range f.roles[guildID] {
		if r == roleID {
			f.roles[guildID] = append(f.roles[guildID][:i], f.roles[guildID][i+1:]...)
			return nil
		}
	}
	return common.ErrItemNotFound
}

func (f *fakeStore) List(_ context.Context, guildID int64) ([]int64, error) {
	f.listCalls++
	return f.roles[guildID], nil
}

func TestCanHost(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	// Nobody may host while no roles are configured.
	ok, err := svc.CanHost(ctx, 10, []int64{1, 2, 3})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.AddHostRole(ctx, 10, 2, 99))

	ok, err = svc.CanHost(ctx, 10, []int64{1, 2, 3})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CanHost(ctx, 10, []int64{4, 5})
	require.NoError(t, err)
	require.False(t, ok)

	// Another guild's configuration does not leak.
	ok, err = svc.CanHost(ctx, 11, []int64{2})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheReadThrough(t *testing.T) {
	store := newFakeStore()
	store.roles[10] = []int64{7}
	svc := NewService(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := svc.CanHost(ctx, 10, []int64{7})
		require.NoError(t, err)
		require.True(t, ok)
	}
	// One miss fills the cache; the rest hit it.
	require.Equal(t, 1, store.listCalls)
}

func TestWritesInvalidateCache(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	ok, err := svc.CanHost(ctx, 10, []int64{7})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.AddHostRole(ctx, 10, 7, 99))
	ok, err = svc.CanHost(ctx, 10, []int64{7})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.RemoveHostRole(ctx, 10, 7))
	ok, err = svc.CanHost(ctx, 10, []int64{7})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHostRoles(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddHostRole(ctx, 10, 1, 99))
	require.NoError(t, svc.AddHostRole(ctx, 10, 2, 99))

	roles, err := svc.HostRoles(ctx, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, roles)
}
