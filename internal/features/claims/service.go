// Package claims — service.go holds the claim business rules: amounts,
// privilege gating and the cooldown preview used by the presentation layer.
package claims

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/config"
	"royalmint.dev/discord-bot/internal/features/economy"
)

// Store is the persistence surface of the claims feature; *Repository
// implements it.
type Store interface {
	Claim(ctx context.Context, userID, guildID int64, kind Kind, amount int64, reason string, now time.Time, requirePrivileged bool) (*Result, error)
}

// Accounts is the read surface for cooldown previews; *economy.Service
// implements it.
type Accounts interface {
	Account(ctx context.Context, userID, guildID int64) (*economy.Account, error)
}

// Service schedules and executes timed claims.
type Service struct {
	store    Store
	accounts Accounts
	cfg      *config.Config

	now     func() time.Time
	randInt func(min, max int64) int64 // Uniform in [min, max]
}

// NewService creates the Claim Scheduler.
func NewService(store Store, accounts Accounts, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		accounts: accounts,
		cfg:      cfg,
		now:      time.Now,
		randInt: func(min, max int64) int64 {
			return min + rand.Int63n(max-min+1)
		},
	}
}

// CanClaim previews whether a claim kind is currently allowed and how long
// remains otherwise. This is advisory: the authoritative check happens under
// the row lock inside the claim transaction.
func (s *Service) CanClaim(ctx context.Context, userID, guildID int64, kind Kind) (bool, time.Duration, error) {
	acct, err := s.accounts.Account(ctx, userID, guildID)
	if err != nil {
		return false, 0, err
	}
	var last *time.Time
	switch kind {
	case KindLabour:
		last = acct.LabourClaimedAt
	case KindAdminBonus:
		last = acct.BonusClaimedAt
	default:
		last = acct.DailyClaimedAt
	}
	allowed, remaining := CanClaimAt(last, s.now(), kind.Cooldown())
	return allowed, remaining, nil
}

// ClaimDaily credits the daily stipend, a uniformly random amount.
func (s *Service) ClaimDaily(ctx context.Context, userID, guildID int64) (*Result, error) {
	amount := s.randInt(s.cfg.DailyStipendMin, s.cfg.DailyStipendMax)
	res, err := s.store.Claim(ctx, userID, guildID, KindDaily, amount,
		"Royal daily stipend", s.now(), false)
	if err != nil {
		return nil, err
	}
	s.logClaim(userID, guildID, KindDaily, res)
	return res, nil
}

// ClaimLabour credits an hourly wage, a uniformly random amount.
func (s *Service) ClaimLabour(ctx context.Context, userID, guildID int64) (*Result, error) {
	amount := s.randInt(s.cfg.LabourWageMin, s.cfg.LabourWageMax)
	res, err := s.store.Claim(ctx, userID, guildID, KindLabour, amount,
		"Honest labour in the royal demesne", s.now(), false)
	if err != nil {
		return nil, err
	}
	s.logClaim(userID, guildID, KindLabour, res)
	return res, nil
}

// ClaimAdminBonus credits the fixed monthly administrator bounty. The
// privileged-tier flag is enforced inside the claim transaction; callers may
// additionally verify platform-side administrator permission as defense in
// depth.
func (s *Service) ClaimAdminBonus(ctx context.Context, userID, guildID int64) (*Result, error) {
	res, err := s.store.Claim(ctx, userID, guildID, KindAdminBonus, s.cfg.AdminBonusAmount,
		"Royal administrator monthly bounty", s.now(), true)
	if err != nil {
		return nil, err
	}
	s.logClaim(userID, guildID, KindAdminBonus, res)
	return res, nil
}

func (s *Service) logClaim(userID, guildID int64, kind Kind, res *Result) {
	log.WithFields(log.Fields{
		"user":   userID,
		"guild":  guildID,
		"kind":   kind,
		"amount": res.Amount,
		"capped": res.Capped,
	}).Info("claim credited")
}
