package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKindCooldown(t *testing.T) {
	require.Equal(t, 24*time.Hour, KindDaily.Cooldown())
	require.Equal(t, time.Hour, KindLabour.Cooldown())
	require.Equal(t, 30*24*time.Hour, KindAdminBonus.Cooldown())
}

func TestCanClaimAt(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("never claimed", func(t *testing.T) {
		ok, remaining := CanClaimAt(nil, now, 24*time.Hour)
		require.True(t, ok)
		require.Zero(t, remaining)
	})

	t.Run("cooldown elapsed exactly", func(t *testing.T) {
		last := now.Add(-24 * time.Hour)
		ok, remaining := CanClaimAt(&last, now, 24*time.Hour)
		require.True(t, ok)
		require.Zero(t, remaining)
	})

	t.Run("one second short", func(t *testing.T) {
		last := now.Add(-24*time.Hour + time.Second)
		ok, remaining := CanClaimAt(&last, now, 24*time.Hour)
		require.False(t, ok)
		require.Equal(t, time.Second, remaining)
	})

	t.Run("just claimed", func(t *testing.T) {
		last := now
		ok, remaining := CanClaimAt(&last, now, time.Hour)
		require.False(t, ok)
		require.Equal(t, time.Hour, remaining)
	})
}
