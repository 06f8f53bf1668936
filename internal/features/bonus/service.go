// Package bonus: service.go holds the claim engine.
package bonus

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/game-backend/internal/common"
	"serotonyl.ru/game-backend/internal/config"
	"serotonyl.ru/game-backend/internal/features/resources"
)

// Observer receives the outcome of every claim attempt. The metrics
// package implements it.
type Observer interface {
	ObserveClaim(outcome string, grant resources.Bundle)
}

// Service runs daily bonus claims.
type Service struct {
	store             Store
	loc               *time.Location   // zone that decides the calendar day
	now               func() time.Time // replaced in tests
	observer          Observer         // may be nil
	minReminderStreak int
}

// NewService creates the daily bonus service. observer may be nil.
func NewService(store Store, cfg *config.Config, observer Observer) *Service {
	return &Service{
		store:             store,
		loc:               common.LoadLocation(cfg.AppTimezone),
		now:               time.Now,
		observer:          observer,
		minReminderStreak: cfg.BonusReminderMinStreak,
	}
}

// Today returns the current calendar day in the configured zone.
func (s *Service) Today() common.Date {
	return common.DateOf(s.now().In(s.loc))
}

// ClaimToday claims the bonus for the current day.
func (s *Service) ClaimToday(ctx context.Context, userID string) (*ClaimResult, error) {
	return s.ClaimDailyBonus(ctx, userID, s.Today())
}

// ClaimDailyBonus claims the bonus of day today for userID.
//
// Algorithm (one transaction):
//  1. Lock the user's ledger row; a missing row is common.ErrUserNotFound
//  2. Read the login record and classify the claim
//  3. Same day → common.ErrAlreadyClaimed; day before the record → common.ErrInvalidClaimDate
//  4. Compute the new streak and its grant
//  5. Upsert the record and credit the ledger
//
// Rejections leave the store untouched. Any other store error rolls back
// both writes and is returned wrapping common.ErrPersistence.
func (s *Service) ClaimDailyBonus(ctx context.Context, userID string, today common.Date) (*ClaimResult, error) {
	if userID == "" {
		return nil, common.ErrUserNotFound
	}

	var (
		result     *ClaimResult
		transition Transition
	)
	err := s.store.InTx(ctx, func(records LoginRecordStore, ledger ResourceLedger) error {
		// The ledger lock also covers the first claim, when no login row exists to lock.
		if _, err := ledger.Lock(ctx, userID); err != nil {
			return err
		}

		rec, err := records.Get(ctx, userID)
		if err != nil {
			return err
		}

		var streak int
		transition, streak = NextStreak(rec, today)
		switch transition {
		case ClaimedToday:
			return common.ErrAlreadyClaimed
		case ClockRegression:
			return fmt.Errorf("last claim %s, claim day %s: %w", rec.LastLoginDate, today, common.ErrInvalidClaimDate)
		}

		grant := BonusTable(streak)
		if err := records.Upsert(ctx, &LoginRecord{
			UserID:        userID,
			LastLoginDate: today,
			Streak:        streak,
		}); err != nil {
			return err
		}
		if err := ledger.Credit(ctx, userID, grant); err != nil {
			return err
		}

		message := MessageClaimed
		if transition == NoRecord {
			message = MessageFirstBonus
		}
		result = &ClaimResult{Message: message, Bonus: grant, Streak: streak}
		return nil
	})

	if err != nil {
		err = classify(err)
		s.observe(outcomeOf(err), resources.Bundle{})
		fields := log.Fields{"user_id": userID, "day": today.String()}
		if errors.Is(err, common.ErrPersistence) {
			log.WithError(err).WithFields(fields).Error("Daily bonus claim failed")
		} else {
			log.WithError(err).WithFields(fields).Debug("Daily bonus claim rejected")
		}
		return nil, err
	}

	s.observe(transition.String(), result.Bonus)
	log.WithFields(log.Fields{
		"user_id":    userID,
		"day":        today.String(),
		"transition": transition.String(),
		"streak":     result.Streak,
		"bonus":      result.Bonus,
	}).Info("Daily bonus claimed")

	return result, nil
}

// classify keeps domain errors as they are and marks the rest as persistence failures.
func classify(err error) error {
	switch {
	case errors.Is(err, common.ErrAlreadyClaimed),
		errors.Is(err, common.ErrInvalidClaimDate),
		errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrInvalidAmount):
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrPersistence, err)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, common.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, common.ErrInvalidClaimDate):
		return "invalid_date"
	case errors.Is(err, common.ErrUserNotFound):
		return "user_not_found"
	}
	return "error"
}

func (s *Service) observe(outcome string, grant resources.Bundle) {
	if s.observer != nil {
		s.observer.ObserveClaim(outcome, grant)
	}
}

// GetStatus returns the user's streak as of today.
func (s *Service) GetStatus(ctx context.Context, userID string) (*Status, error) {
	return s.StatusOn(ctx, userID, s.Today())
}

// StatusOn returns the user's streak as seen on day today. A streak that a
// claim today could no longer extend is reported as 0.
func (s *Service) StatusOn(ctx context.Context, userID string, today common.Date) (*Status, error) {
	if userID == "" {
		return nil, common.ErrUserNotFound
	}

	var status *Status
	err := s.store.InTx(ctx, func(records LoginRecordStore, ledger ResourceLedger) error {
		l, err := ledger.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		rec, err := records.Get(ctx, userID)
		if err != nil {
			return err
		}

		status = &Status{UserID: userID, Resources: l.Bundle, NextBonus: BonusTable(1)}
		if rec == nil {
			return nil
		}
		last := rec.LastLoginDate
		status.LastLoginDate = &last

		switch Classify(rec, today) {
		case ClaimedToday, ClockRegression:
			status.ClaimedToday = true
			status.Streak = rec.Streak
			status.NextBonus = BonusTable(rec.Streak + 1)
		case ConsecutiveDay:
			status.Streak = rec.Streak
			status.NextBonus = BonusTable(rec.Streak + 1)
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return status, nil
}

// SendReminders notifies linked users whose streak ends unless they claim today.
// Users with a streak below the configured threshold are skipped. It returns
// the number of reminders sendFunc delivered without error.
func (s *Service) SendReminders(ctx context.Context, sendFunc func(telegramID int64, text string) error) (int, error) {
	yesterday := s.Today().AddDays(-1)

	atRisk, err := s.store.ListAtRisk(ctx, yesterday, s.minReminderStreak)
	if err != nil {
		return 0, classify(err)
	}

	var sent, failed int
	for _, a := range atRisk {
		next := BonusTable(a.Streak + 1)
		msg := fmt.Sprintf(
			"Your daily bonus streak is %s! Claim today with /bonus to keep it: %s.",
			common.FormatDays(a.Streak), formatBundle(next),
		)
		if err := sendFunc(a.TelegramID, msg); err != nil {
			failed++
			continue
		}
		sent++
	}

	log.WithFields(log.Fields{
		"day":    yesterday.String(),
		"sent":   sent,
		"failed": failed,
	}).Info("Streak reminders sent")

	return sent, nil
}
