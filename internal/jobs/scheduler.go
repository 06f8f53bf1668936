// Package jobs runs the background tasks (cron): the daily streak reminder
// and the connection pool sampler.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/config"
	"serotonyl.ru/game-backend/internal/metrics"
)

// Reminders sends the streak reminders.
type Reminders interface {
	SendReminders(ctx context.Context, sendFunc func(telegramID int64, text string) error) (int, error)
}

// Observer receives job results. May be nil.
type Observer interface {
	ObserveReminders(n int)
	ObservePool(s metrics.PoolStats)
}

// Scheduler owns the cron instance.
type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	reminders Reminders                          // nil disables the reminder job
	sendFunc  func(telegramID int64, text string) error // Telegram delivery
	poolStats func() metrics.PoolStats            // nil disables the pool sampler
	observer  Observer
}

// NewScheduler creates the scheduler in the configured time zone.
func NewScheduler(cfg *config.Config, reminders Reminders, sendFunc func(telegramID int64, text string) error, poolStats func() metrics.PoolStats, observer Observer) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(common.LoadLocation(cfg.AppTimezone))),
		cfg:       cfg,
		reminders: reminders,
		sendFunc:  sendFunc,
		poolStats: poolStats,
		observer:  observer,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.reminders != nil && s.sendFunc != nil && s.cfg.FeatureRemindersEnabled {
		if _, err := s.cron.AddFunc(s.cfg.BonusReminderCron, func() { s.runReminders(ctx) }); err != nil {
			return fmt.Errorf("invalid BONUS_REMINDER_CRON %q: %w", s.cfg.BonusReminderCron, err)
		}
		log.WithField("schedule", s.cfg.BonusReminderCron).Info("Streak reminders scheduled")
	}

	if s.poolStats != nil {
		if _, err := s.cron.AddFunc("* * * * *", s.samplePool); err != nil {
			return err
		}
	}

	s.cron.Start()
	log.WithField("jobs", len(s.cron.Entries())).Info("Scheduler started")
	return nil
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Scheduler stopped")
}

func (s *Scheduler) runReminders(ctx context.Context) {
	log.Debug("[CRON] Streak reminders")
	sent, err := s.reminders.SendReminders(ctx, s.sendFunc)
	if err != nil {
		log.WithError(err).Error("[CRON] Streak reminders failed")
		return
	}
	if s.observer != nil {
		s.observer.ObserveReminders(sent)
	}
}

func (s *Scheduler) samplePool() {
	if s.observer != nil {
		s.observer.ObservePool(s.poolStats())
	}
}
