package wagering

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKnown(t *testing.T) {
	require.True(t, Known(VariantDice))
	require.True(t, Known(VariantCoin))
	require.True(t, Known(VariantSlots))
	require.False(t, Known(Variant("roulette")))
	require.False(t, Known(Variant("")))
}

func TestRollBands(t *testing.T) {
	t.Run("dice", func(t *testing.T) {
		won, mult := roll(VariantDice, 0.0)
		require.True(t, won)
		require.Equal(t, int64(2), mult)

		won, mult = roll(VariantDice, 0.499)
		require.True(t, won)
		require.Equal(t, int64(2), mult)

		won, _ = roll(VariantDice, 0.50)
		require.False(t, won)

		won, _ = roll(VariantDice, 0.999)
		require.False(t, won)
	})

	t.Run("coin house edge", func(t *testing.T) {
		won, _ := roll(VariantCoin, 0.479)
		require.True(t, won)
		won, _ = roll(VariantCoin, 0.48)
		require.False(t, won)
	})

	t.Run("slots tiers", func(t *testing.T) {
		won, mult := roll(VariantSlots, 0.049)
		require.True(t, won)
		require.Equal(t, int64(10), mult)

		won, mult = roll(VariantSlots, 0.05)
		require.True(t, won)
		require.Equal(t, int64(3), mult)

		won, mult = roll(VariantSlots, 0.149)
		require.True(t, won)
		require.Equal(t, int64(3), mult)

		won, mult = roll(VariantSlots, 0.15)
		require.True(t, won)
		require.Equal(t, int64(2), mult)

		won, mult = roll(VariantSlots, 0.449)
		require.True(t, won)
		require.Equal(t, int64(2), mult)

		won, _ = roll(VariantSlots, 0.45)
		require.False(t, won)
	})
}

func TestRollDistribution(t *testing.T) {
	// Seeded sampling sanity check on the dice win rate.
	rng := rand.New(rand.NewSource(42))
	wins := 0
	const trials = 10000
	for i := 0; i < trials; i++ {
		if won, _ := roll(VariantDice, rng.Float64()); won {
			wins++
		}
	}
	rate := float64(wins) / trials
	require.InDelta(t, 0.50, rate, 0.02)
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"monday midnight is its own start",
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday noon",
			time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC),
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday maps back six days",
			time.Date(2025, 3, 16, 23, 59, 59, 0, time.UTC),
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			"wednesday",
			time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			"non-UTC input normalized",
			time.Date(2025, 3, 11, 1, 0, 0, 0, time.FixedZone("CET", 3600)),
			time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, WeekStart(tc.in))
		})
	}
}
