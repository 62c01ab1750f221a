// Package jobs runs background tasks on cron schedules: the drawing end
// sweep and the hourly admin session cleanup. The sweep reads persisted
// deadlines, so a restart picks up where the last process left off.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"royalmint.dev/discord-bot/internal/config"
	"royalmint.dev/discord-bot/internal/features/admin"
	"royalmint.dev/discord-bot/internal/features/drawings"
)

// Scheduler manages the background tasks.
type Scheduler struct {
	cron     *cron.Cron
	drawings *drawings.Service
	admin    *admin.Service
	cfg      *config.Config
}

// NewScheduler creates the task scheduler. All schedules run in UTC because
// the wagering week and claim windows are defined in UTC.
func NewScheduler(drawingSvc *drawings.Service, adminSvc *admin.Service, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		drawings: drawingSvc,
		admin:    adminSvc,
		cfg:      cfg,
	}
}

// Start registers and launches all background tasks.
func (s *Scheduler) Start(ctx context.Context) error {
	// Drawing end sweep, every minute by default
	if _, err := s.cron.AddFunc(s.cfg.DrawingSweepSpec, func() {
		if err := s.drawings.EndDue(ctx); err != nil {
			log.WithError(err).Error("[CRON] drawing sweep failed")
		}
	}); err != nil {
		return err
	}

	// Hourly admin session cleanup
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.admin.CleanupExpiredSessions(ctx); err != nil {
			log.WithError(err).Error("[CRON] session cleanup failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Info("task scheduler started (UTC)")
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("task scheduler stopped")
}
