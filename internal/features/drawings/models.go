// Package drawings implements the time-boxed prize drawings ("tournaments"):
// create with escrowed prize pool, collect entries, end once, pay winners.
package drawings

import "time"

// Status of a drawing. ended is terminal; the flip happens exactly once.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Drawing is one hosted prize event. The only mutation after creation is the
// status transition to ended.
type Drawing struct {
	ID          int64     `db:"id"`
	GuildID     int64     `db:"guild_id"`
	ChannelID   int64     `db:"channel_id"`
	MessageID   int64     `db:"message_id"` // Announcement message, owned by the platform layer
	HostID      int64     `db:"host_id"`
	PrizeName   string    `db:"prize_name"`
	PrizeAmount int64     `db:"prize_amount"` // Per winner
	EndTime     time.Time `db:"end_time"`
	WinnerCount int       `db:"winner_count"`
	Status      Status    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

// Entry registers one entrant, unique per (drawing, account).
type Entry struct {
	ID        int64     `db:"id"`
	DrawingID int64     `db:"drawing_id"`
	UserID    int64     `db:"user_id"`
	EnteredAt time.Time `db:"entered_at"`
}

// CreateParams carries everything a host action supplies.
type CreateParams struct {
	GuildID     int64
	ChannelID   int64
	MessageID   int64
	HostID      int64
	HostRoleIDs []int64 // The host's guild roles, read by the platform layer
	PrizeName   string
	PrizeAmount int64
	WinnerCount int
	Duration    time.Duration
}

// EndOutcome reports a concluded drawing: the terminal row and the winners
// credited (empty when nobody entered).
type EndOutcome struct {
	Drawing *Drawing
	Winners []int64
}

// pickWinners selects n distinct entrants uniformly at random without
// replacement. With fewer entrants than n, everyone wins.
func pickWinners(entries []int64, n int, shuffle func(n int, swap func(i, j int))) []int64 {
	if n > len(entries) {
		n = len(entries)
	}
	pool := make([]int64, len(entries))
	copy(pool, entries)
	shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool[:n]
}
