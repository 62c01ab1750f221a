package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatGold(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{950, "950"},
		{999, "999"},
		{1000, "1.0 thousand"},
		{1500, "1.5 thousand"},
		{999_999, "1000.0 thousand"},
		{1_000_000, "1.0 million"},
		{2_300_000, "2.3 million"},
		{1_000_000_000, "1.0 billion"},
		{50_000_000_000, "50.0 billion"},
		{100_000_000_000, "100.0 billion"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatGold(tc.in), "amount %d", tc.in)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "ready"},
		{-time.Minute, "ready"},
		{30 * time.Second, "1 minute"}, // sub-minute rounds up
		{time.Minute, "1 minute"},
		{5 * time.Minute, "5 minutes"},
		{time.Hour, "1 hour and 0 minutes"},
		{90 * time.Minute, "1 hour and 30 minutes"},
		{23*time.Hour + 59*time.Minute, "23 hours and 59 minutes"},
		{25 * time.Hour, "25 hours and 0 minutes"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatRemaining(tc.in), "duration %s", tc.in)
	}
}
