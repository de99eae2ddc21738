package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/dailyayah/dailyayah/core/corpus"
	"github.com/dailyayah/dailyayah/internal/logging"
)

// VerseSource supplies the verse of the day for a date string (2006-01-02).
type VerseSource interface {
	Daily(date string) (corpus.Record, bool)
}

// DeliveryStats reports the outcome of one batch send.
type DeliveryStats struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// Scheduler sends verse emails on the configured daily and weekly schedule.
type Scheduler struct {
	registry *Registry
	sender   *Sender
	verses   VerseSource

	hour, minute int
	weeklyDay    time.Weekday
	now          func() time.Time
}

// NewScheduler wires the registry, sender and verse source to a schedule.
// Daily mail goes out at hour:minute every day; weekly mail at the same
// time on weeklyDay.
func NewScheduler(reg *Registry, sender *Sender, verses VerseSource, hour, minute int, weeklyDay time.Weekday) *Scheduler {
	return &Scheduler{
		registry:  reg,
		sender:    sender,
		verses:    verses,
		hour:      hour,
		minute:    minute,
		weeklyDay: weeklyDay,
		now:       time.Now,
	}
}

// Run blocks, firing deliveries on schedule until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	logging.Info("mail scheduler started",
		"daily_at", fmt.Sprintf("%02d:%02d", s.hour, s.minute),
		"weekly_day", s.weeklyDay.String())

	daily := time.NewTimer(time.Until(s.nextDaily(s.now())))
	weekly := time.NewTimer(time.Until(s.nextWeekly(s.now())))
	defer daily.Stop()
	defer weekly.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("mail scheduler stopped")
			return
		case <-daily.C:
			if stats, err := s.Deliver(FrequencyDaily); err != nil {
				logging.Error("daily delivery failed", "error", err)
			} else {
				logging.Info("daily delivery complete", "sent", stats.Sent, "failed", stats.Failed)
			}
			daily.Reset(time.Until(s.nextDaily(s.now())))
		case <-weekly.C:
			if stats, err := s.Deliver(FrequencyWeekly); err != nil {
				logging.Error("weekly delivery failed", "error", err)
			} else {
				logging.Info("weekly delivery complete", "sent", stats.Sent, "failed", stats.Failed)
			}
			weekly.Reset(time.Until(s.nextWeekly(s.now())))
		}
	}
}

// Deliver sends today's verse to every active subscriber of the given
// frequency. Individual send failures are counted, not fatal.
func (s *Scheduler) Deliver(frequency string) (DeliveryStats, error) {
	var stats DeliveryStats

	now := s.now()
	rec, ok := s.verses.Daily(now.Format("2006-01-02"))
	if !ok {
		return stats, fmt.Errorf("no verse data loaded")
	}

	subs, err := s.registry.Active(frequency)
	if err != nil {
		return stats, err
	}
	if len(subs) == 0 {
		logging.Info("no subscribers", "frequency", frequency)
		return stats, nil
	}

	heading := "Daily Ayah"
	if frequency == FrequencyWeekly {
		heading = "Weekly Ayah"
	}
	logging.Info("sending verse email", "frequency", frequency, "subscribers", len(subs), "verse", rec.VerseKey)

	today := now.UTC().Format("2006-01-02")
	for _, sub := range subs {
		// A restart between the send time and midnight must not repeat
		// the batch, so anyone already served today is skipped.
		if !sub.LastEmailSent.IsZero() && sub.LastEmailSent.UTC().Format("2006-01-02") == today {
			logging.Debug("already sent today", "to", sub.Email)
			continue
		}
		if err := s.sender.SendVerse(sub, rec, heading); err != nil {
			logging.Error("send failed", "to", sub.Email, "error", err)
			stats.Failed++
			continue
		}
		if err := s.registry.RecordSend(sub.Email); err != nil {
			logging.Warn("failed to record send", "to", sub.Email, "error", err)
		}
		stats.Sent++
	}
	return stats, nil
}

// nextDaily is the next hour:minute strictly after now.
func (s *Scheduler) nextDaily(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// nextWeekly is the next occurrence of weeklyDay at hour:minute strictly
// after now.
func (s *Scheduler) nextWeekly(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, now.Location())
	for !next.After(now) || next.Weekday() != s.weeklyDay {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
