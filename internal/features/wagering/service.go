// Package wagering — service.go runs a play from precondition checks to
// payout.
package wagering

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/config"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// Store is the persistence surface of the engine; *Repository implements it.
type Store interface {
	CountSince(ctx context.Context, userID, guildID int64, since time.Time) (int, error)
	RecordPlay(ctx context.Context, userID, guildID int64, variant Variant, wager, payout int64, won bool, reason string, since time.Time, limit int) (int64, int64, bool, error)
}

// Accounts is the ledger read surface; *economy.Service implements it.
type Accounts interface {
	Account(ctx context.Context, userID, guildID int64) (*economy.Account, error)
}

// Service is the Wagering Engine.
type Service struct {
	store    Store
	accounts Accounts
	cfg      *config.Config

	now    func() time.Time
	sample func() float64 // Uniform in [0, 1)
}

// NewService creates the Wagering Engine.
func NewService(store Store, accounts Accounts, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		cfg:      cfg,
		now:      time.Now,
		sample:   rand.Float64,
	}
}

// RemainingTries returns how many wagers the account has left this week.
func (s *Service) RemainingTries(ctx context.Context, userID, guildID int64) (int, error) {
	used, err := s.store.CountSince(ctx, userID, guildID, WeekStart(s.now()))
	if err != nil {
		return 0, err
	}
	remaining := s.cfg.WeeklyWagerTries - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Play resolves one wager. Refusal order: weekly quota, non-positive wager,
// insufficient funds, account already at its ceiling (a win could not be
// credited, so entry is refused rather than silently capped), unknown game.
// On any refusal no state is mutated.
func (s *Service) Play(ctx context.Context, userID, guildID, wager int64, variant Variant) (*Result, error) {
	since := WeekStart(s.now())
	used, err := s.store.CountSince(ctx, userID, guildID, since)
	if err != nil {
		return nil, err
	}
	if used >= s.cfg.WeeklyWagerTries {
		return nil, common.ErrQuotaExhausted
	}

	if wager <= 0 {
		return nil, common.ErrInvalidAmount
	}

	acct, err := s.accounts.Account(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}
	if wager > acct.Gold {
		return nil, common.ErrInsufficientBalance
	}
	if acct.Gold >= acct.Ceiling(s.cfg.GoldCapNormal, s.cfg.GoldCapPrivileged) {
		return nil, common.ErrAtCeiling
	}

	if !Known(variant) {
		return nil, common.ErrUnknownGame
	}

	won, multiplier := roll(variant, s.sample())
	payout := int64(0)
	if won {
		payout = wager * multiplier
	}

	outcome := "Lost"
	if won {
		outcome = "Won"
	}
	reason := fmt.Sprintf("Gamed %d on %s - %s", wager, variant, outcome)

	// The quota check above is advisory; RecordPlay recounts under the account
	// row lock and refuses the play that would exceed the limit, so concurrent
	// plays cannot oversubscribe the week. It also reports the credited amount
	// from the balance it read under that lock, which a win clamped at the
	// ceiling makes smaller than the nominal payout.
	newGold, credited, capped, err := s.store.RecordPlay(ctx, userID, guildID, variant, wager, payout, won, reason, since, s.cfg.WeeklyWagerTries)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Variant:        variant,
		Wager:          wager,
		Won:            won,
		Payout:         credited,
		Net:            payout - wager,
		NewBalance:     newGold,
		Capped:         capped,
		RemainingTries: s.cfg.WeeklyWagerTries - used - 1,
	}

	log.WithFields(log.Fields{
		"user":      userID,
		"guild":     guildID,
		"game":      variant,
		"wager":     wager,
		"won":       won,
		"payout":    credited,
		"capped":    capped,
		"triesLeft": res.RemainingTries,
	}).Info("wager resolved")

	return res, nil
}
