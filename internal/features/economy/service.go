// Package economy — service.go is the Balance Engine's public surface:
// validation and orchestration over the repository.
package economy

import (
	"context"

	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/common"
)

// Store is the persistence surface the service needs. *Repository implements
// it; tests substitute an in-memory ledger.
type Store interface {
	GetOrCreate(ctx context.Context, userID, guildID int64) (*Account, error)
	Adjust(ctx context.Context, userID, guildID, delta int64, reason string) (int64, bool, error)
	Transfer(ctx context.Context, fromID, toID, guildID, amount int64) error
	Leaderboard(ctx context.Context, guildID int64, limit int) ([]*Account, error)
	History(ctx context.Context, userID, guildID int64, limit int) ([]*Transaction, error)
	SetPrivileged(ctx context.Context, userID, guildID int64, privileged bool) error
}

// Service owns all balance mutation rules.
type Service struct {
	store Store
}

// NewService creates the Balance Engine.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Account returns the account, creating it lazily on first read.
func (s *Service) Account(ctx context.Context, userID, guildID int64) (*Account, error) {
	return s.store.GetOrCreate(ctx, userID, guildID)
}

// Adjust applies a signed delta: clamp to [0, ceiling], audit entry, lifetime
// counters. Returns the new balance and whether the ceiling reduced the
// credit. Adjust cannot tell "insufficient funds" from a successful spend, so
// callers requesting delta < 0 must verify |delta| <= balance first.
func (s *Service) Adjust(ctx context.Context, userID, guildID, delta int64, reason string) (int64, bool, error) {
	newGold, capped, err := s.store.Adjust(ctx, userID, guildID, delta, reason)
	if err != nil {
		return 0, false, err
	}
	if capped {
		log.WithFields(log.Fields{
			"user":  userID,
			"guild": guildID,
			"delta": delta,
		}).Info("credit clamped at ceiling")
	}
	return newGold, capped, nil
}

// Pay transfers gold from one subject to another.
// Refusal order: self-payment, non-positive amount, sender funds and recipient
// ceiling (both checked under lock in the store).
func (s *Service) Pay(ctx context.Context, fromID, toID, guildID, amount int64) error {
	if fromID == toID {
		return common.ErrSelfPayment
	}
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	// Both parties get accounts lazily, like any other first contact.
	if _, err := s.store.GetOrCreate(ctx, fromID, guildID); err != nil {
		return err
	}
	if _, err := s.store.GetOrCreate(ctx, toID, guildID); err != nil {
		return err
	}
	if err := s.store.Transfer(ctx, fromID, toID, guildID, amount); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"from":   fromID,
		"to":     toID,
		"guild":  guildID,
		"amount": amount,
	}).Info("payment completed")
	return nil
}

// Leaderboard returns the guild's wealthiest accounts.
func (s *Service) Leaderboard(ctx context.Context, guildID int64, limit int) ([]*Account, error) {
	return s.store.Leaderboard(ctx, guildID, limit)
}

// History returns recent audit entries for display or export.
func (s *Service) History(ctx context.Context, userID, guildID int64, limit int) ([]*Transaction, error) {
	return s.store.History(ctx, userID, guildID, limit)
}

// SetPrivileged flips the account's privileged tier (admin operation).
func (s *Service) SetPrivileged(ctx context.Context, userID, guildID int64, privileged bool) error {
	return s.store.SetPrivileged(ctx, userID, guildID, privileged)
}
