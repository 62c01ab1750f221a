// Package wagering implements the gambling games: a closed set of variants,
// a table-driven payout rule and a weekly attempt quota. models.go holds the
// variants, the payout tables and the week-window arithmetic.
package wagering

import "time"

// Variant is one of the realm's games. The set is closed: anything outside
// the payout tables is refused, never dispatched by string.
type Variant string

const (
	VariantDice  Variant = "dice"
	VariantCoin  Variant = "coin"
	VariantSlots Variant = "slots"
)

// tier is one win band of a payout table: probability mass and the wager
// multiplier it pays.
type tier struct {
	p          float64
	multiplier int64
}

// payoutTables drives every game. Bands are cumulative from the top; any
// remaining probability mass is a loss.
//
//	dice : 0.50 → 2x
//	coin : 0.48 → 2x (house edge)
//	slots: 0.05 → 10x, next 0.10 → 3x, next 0.30 → 2x, remaining 0.55 → loss
var payoutTables = map[Variant][]tier{
	VariantDice:  {{0.50, 2}},
	VariantCoin:  {{0.48, 2}},
	VariantSlots: {{0.05, 10}, {0.10, 3}, {0.30, 2}},
}

// Known reports whether the variant has a payout table.
func Known(v Variant) bool {
	_, ok := payoutTables[v]
	return ok
}

// roll resolves one game from a uniform sample in [0, 1).
func roll(v Variant, sample float64) (won bool, multiplier int64) {
	var cum float64
	for _, t := range payoutTables[v] {
		cum += t.p
		if sample < cum {
			return true, t.multiplier
		}
	}
	return false, 0
}

// WeekStart returns the most recent Monday 00:00 UTC at or before t.
// The weekly quota counts records in [WeekStart(now), now) — a calendar
// window, not a rolling seven days.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -daysSinceMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// Record is one resolved wager, append-only. Its only read path is the
// weekly quota count.
type Record struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	GuildID   int64     `db:"guild_id"`
	Game      Variant   `db:"game"`
	BetAmount int64     `db:"bet_amount"`
	WinAmount int64     `db:"win_amount"`
	Outcome   string    `db:"outcome"` // "win" | "loss"
	CreatedAt time.Time `db:"created_at"`
}

// Result reports a resolved play back to the caller.
type Result struct {
	Variant        Variant
	Wager          int64
	Won            bool
	Payout         int64 // Gold actually credited; clamped when the ceiling cut a win
	Net            int64 // Payout minus wager, as requested of the ledger
	NewBalance     int64
	Capped         bool
	RemainingTries int // Weekly tries left after this play
}
