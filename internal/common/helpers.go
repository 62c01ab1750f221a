// Package common holds small helpers shared across features:
// gold-amount formatting and remaining-time strings.
package common

import (
	"fmt"
	"time"
)

// FormatGold renders large gold amounts in the realm's abbreviated style.
//
// Examples:
//
//	FormatGold(950)          → "950"
//	FormatGold(1500)         → "1.5 thousand"
//	FormatGold(2300000)      → "2.3 million"
//	FormatGold(50000000000)  → "50.0 billion"
func FormatGold(amount int64) string {
	switch {
	case amount >= 1_000_000_000:
		return fmt.Sprintf("%.1f billion", float64(amount)/1_000_000_000)
	case amount >= 1_000_000:
		return fmt.Sprintf("%.1f million", float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("%.1f thousand", float64(amount)/1_000)
	default:
		return fmt.Sprintf("%d", amount)
	}
}

// FormatRemaining renders a cooldown remainder as "N hour(s) and M minute(s)".
// Sub-minute remainders round up to one minute so users never see "0 minutes"
// on an active cooldown.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "ready"
	}
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	if hours == 0 && minutes == 0 {
		minutes = 1
	}
	if hours > 0 {
		return fmt.Sprintf("%d %s and %d %s",
			hours, plural(hours, "hour"), minutes, plural(minutes, "minute"))
	}
	return fmt.Sprintf("%d %s", minutes, plural(minutes, "minute"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
