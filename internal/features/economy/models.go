// Package economy owns the gold ledger: per-(user, guild) accounts and the
// append-only transaction log. models.go describes the entities.
package economy

import "time"

// Account is the economic record of one user in one guild.
// Created lazily on first read with the configured starting balance;
// never deleted. All balance mutation goes through the repository's
// adjust path so the ceiling and audit invariants hold.
type Account struct {
	UserID          int64      `db:"user_id"`       // Discord user ID
	GuildID         int64      `db:"guild_id"`      // Discord guild ID
	Gold            int64      `db:"gold"`          // Current balance, 0 <= gold <= ceiling
	GambleWins      int        `db:"gamble_wins"`   // Lifetime wager wins
	GambleLosses    int        `db:"gamble_losses"` // Lifetime wager losses
	TotalEarned     int64      `db:"total_earned"`  // Lifetime credited flow (monotonic)
	TotalSpent      int64      `db:"total_spent"`   // Lifetime debited flow (monotonic)
	Privileged      bool       `db:"privileged"`    // Raises the ceiling, unlocks the admin bounty
	DailyClaimedAt  *time.Time `db:"daily_claimed_at"`
	LabourClaimedAt *time.Time `db:"labour_claimed_at"`
	BonusClaimedAt  *time.Time `db:"bonus_claimed_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// Ceiling returns the account's balance cap for the given tier limits.
func (a *Account) Ceiling(normal, privileged int64) int64 {
	if a.Privileged {
		return privileged
	}
	return normal
}

// Transaction is one audit entry of the ledger. Immutable once written and
// never read back to reconstruct a balance — the Account row is the source
// of truth, the log exists for history and export.
type Transaction struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	GuildID      int64     `db:"guild_id"`
	Amount       int64     `db:"amount"`        // Signed delta as requested
	Reason       string    `db:"reason"`        // Free text, rendered verbatim
	BalanceAfter int64     `db:"balance_after"` // Balance once the delta was applied
	CreatedAt    time.Time `db:"created_at"`
}

// applyDelta clamps a requested delta to [0, ceiling] and reports whether the
// credit was reduced by the ceiling. A floor clamp (spending past zero) is not
// flagged; callers validate funds before requesting negative deltas.
func applyDelta(balance, delta, ceiling int64) (newBalance int64, capped bool) {
	raw := balance + delta
	if raw < 0 {
		raw = 0
	}
	if raw > ceiling {
		raw = ceiling
	}
	return raw, raw-balance < delta
}
