// Package drawings — service.go runs the lifecycle: validated creation with
// escrow, entry registration, and the idempotent end with winner payout.
package drawings

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/common"
	"royalmint.dev/discord-bot/internal/config"
)

// Store is the persistence surface; *Repository implements it.
type Store interface {
	Create(ctx context.Context, d *Drawing, escrow int64) error
	Enter(ctx context.Context, drawingID, userID int64) error
	MarkEnded(ctx context.Context, drawingID int64) (*Drawing, error)
	Entries(ctx context.Context, drawingID int64) ([]int64, error)
	Active(ctx context.Context, guildID int64) ([]*Drawing, error)
	DueIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// Ledger credits prize payouts; *economy.Service implements it.
type Ledger interface {
	Adjust(ctx context.Context, userID, guildID, delta int64, reason string) (int64, bool, error)
}

// HostGate decides whether a member may host; *perms.Service implements it.
type HostGate interface {
	CanHost(ctx context.Context, guildID int64, memberRoleIDs []int64) (bool, error)
}

// Announcer tells the platform about concluded drawings. Its failures never
// unwind the payout.
type Announcer interface {
	AnnounceWinners(ctx context.Context, d *Drawing, winners []int64) error
}

// Service owns the drawing lifecycle.
type Service struct {
	store     Store
	ledger    Ledger
	hosts     HostGate
	announcer Announcer
	cfg       *config.Config

	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// NewService creates the drawing lifecycle service.
func NewService(store Store, ledger Ledger, hosts HostGate, announcer Announcer, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		ledger:    ledger,
		hosts:     hosts,
		announcer: announcer,
		cfg:       cfg,
		now:       time.Now,
		shuffle:   rand.Shuffle,
	}
}

// Create validates the host action, escrows prize_amount × winner_count from
// the host and persists the drawing. There is no in-process timer: the end
// trigger is re-derived from the persisted end_time by the sweep, so it
// survives restarts.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Drawing, error) {
	if p.Duration < s.cfg.DrawingMinDuration || p.Duration > s.cfg.DrawingMaxDuration {
		return nil, common.ErrDrawingBounds
	}
	if p.WinnerCount < 1 || p.WinnerCount > s.cfg.DrawingMaxWinners {
		return nil, common.ErrDrawingBounds
	}
	// The prize is bounded by the highest balance ceiling: no account could
	// hold more, and the bound keeps the escrow product below overflow.
	if p.PrizeAmount < 1 || p.PrizeAmount > s.cfg.GoldCapPrivileged {
		return nil, common.ErrDrawingBounds
	}

	allowed, err := s.hosts.CanHost(ctx, p.GuildID, p.HostRoleIDs)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, common.ErrNotHostEligible
	}

	d := &Drawing{
		GuildID:     p.GuildID,
		ChannelID:   p.ChannelID,
		MessageID:   p.MessageID,
		HostID:      p.HostID,
		PrizeName:   p.PrizeName,
		PrizeAmount: p.PrizeAmount,
		EndTime:     s.now().Add(p.Duration),
		WinnerCount: p.WinnerCount,
	}
	escrow := p.PrizeAmount * int64(p.WinnerCount)
	if err := s.store.Create(ctx, d, escrow); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"drawing": d.ID,
		"guild":   d.GuildID,
		"host":    d.HostID,
		"escrow":  escrow,
		"ends":    d.EndTime,
	}).Info("drawing created")
	return d, nil
}

// Enter registers an entrant; a repeat entry is a refusal, not an error of
// state.
func (s *Service) Enter(ctx context.Context, drawingID, userID int64) error {
	return s.store.Enter(ctx, drawingID, userID)
}

// Active lists a guild's running drawings.
func (s *Service) Active(ctx context.Context, guildID int64) ([]*Drawing, error) {
	return s.store.Active(ctx, guildID)
}

// End concludes a drawing: flip the status exactly once, pick winners
// uniformly without replacement, credit each prize through the ledger and
// hand the result to the announcer. A duplicate trigger gets
// common.ErrDrawingNotFound and must treat it as "already ended".
func (s *Service) End(ctx context.Context, drawingID int64) (*EndOutcome, error) {
	d, err := s.store.MarkEnded(ctx, drawingID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.Entries(ctx, drawingID)
	if err != nil {
		return nil, err
	}

	outcome := &EndOutcome{Drawing: d}
	if len(entries) == 0 {
		// The escrow stays out of circulation.
		log.WithFields(log.Fields{
			"drawing": d.ID,
			"escrow":  d.PrizeAmount * int64(d.WinnerCount),
		}).Warn("drawing ended with no entrants, escrow not refunded")
	} else {
		outcome.Winners = pickWinners(entries, d.WinnerCount, s.shuffle)
		for _, winner := range outcome.Winners {
			if _, _, err := s.ledger.Adjust(ctx, winner, d.GuildID, d.PrizeAmount,
				"Won tournament: "+d.PrizeName); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"drawing": d.ID,
					"winner":  winner,
				}).Error("prize payout failed")
			}
		}
	}

	if s.announcer != nil {
		if err := s.announcer.AnnounceWinners(ctx, d, outcome.Winners); err != nil {
			log.WithError(err).WithField("drawing", d.ID).Warn("announcement failed")
		}
	}

	log.WithFields(log.Fields{
		"drawing": d.ID,
		"entries": len(entries),
		"winners": len(outcome.Winners),
	}).Info("drawing ended")
	return outcome, nil
}

// EndDue ends every active drawing whose deadline has passed. Called by the
// cron sweep; also the recovery path after a restart.
func (s *Service) EndDue(ctx context.Context) error {
	ids, err := s.store.DueIDs(ctx, s.now())
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := s.End(ctx, id); err != nil && err != common.ErrDrawingNotFound {
			log.WithError(err).WithField("drawing", id).Error("sweep failed to end drawing")
		}
	}
	return nil
}
