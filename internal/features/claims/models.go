// Package claims implements the timed claims: daily stipend, hourly labour
// and the 30-day administrator bounty. models.go holds the claim kinds and
// the pure cooldown arithmetic.
package claims

import "time"

// Kind identifies one of the three independent cooldown tracks.
type Kind string

const (
	KindDaily      Kind = "daily"
	KindLabour     Kind = "labour"
	KindAdminBonus Kind = "admin_bonus"
)

// Cooldown durations per kind. The bounty period is a fixed 30 days,
// not calendar-month-aware.
const (
	dailyCooldown  = 24 * time.Hour
	labourCooldown = 1 * time.Hour
	bonusCooldown  = 30 * 24 * time.Hour
)

// Cooldown returns the kind's cooldown duration.
func (k Kind) Cooldown() time.Duration {
	switch k {
	case KindLabour:
		return labourCooldown
	case KindAdminBonus:
		return bonusCooldown
	default:
		return dailyCooldown
	}
}

// CanClaimAt reports whether a claim with the given last-claim stamp is
// allowed at now, and how long remains otherwise. A nil stamp means the
// claim was never made and is always allowed.
func CanClaimAt(last *time.Time, now time.Time, cooldown time.Duration) (bool, time.Duration) {
	if last == nil {
		return true, 0
	}
	elapsed := now.Sub(*last)
	if elapsed >= cooldown {
		return true, 0
	}
	return false, cooldown - elapsed
}

// Result reports a successful claim back to the caller.
type Result struct {
	Amount     int64 // Gold credited (before any ceiling clamp)
	NewBalance int64
	Capped     bool // Whether the ceiling reduced the credit
}
