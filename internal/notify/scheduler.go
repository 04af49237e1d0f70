package notify

import (
	"context"
	"time"

	"nutritrack/internal/service"
	"nutritrack/pkg/logger"
)

type ReminderSource interface {
	DueReminders(ctx context.Context, now time.Time) ([]service.Reminder, error)
}

type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Scheduler checks once a minute for users whose reminder time has come.
type Scheduler struct {
	source   ReminderSource
	notifier Notifier
	logger   *logger.Logger
	interval time.Duration
	now      func() time.Time
}

func NewScheduler(source ReminderSource, notifier Notifier, log *logger.Logger) *Scheduler {
	return &Scheduler{
		source:   source,
		notifier: notifier,
		logger:   log.Named("reminders"),
		interval: time.Minute,
		now:      time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Infow("Reminder scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick sends the reminders due at the current minute and returns how many
// were delivered.
func (s *Scheduler) Tick(ctx context.Context) int {
	now := s.now().Truncate(time.Minute)
	reminders, err := s.source.DueReminders(ctx, now)
	if err != nil {
		s.logger.Errorw("Failed to load due reminders", "error", err)
		return 0
	}

	sent := 0
	for _, r := range reminders {
		if err := s.notifier.Notify(ctx, r.ChatID, r.Text); err != nil {
			s.logger.Warnw("Failed to send reminder", "user_id", r.UserID, "error", err)
			continue
		}
		sent++
	}
	if len(reminders) > 0 {
		s.logger.Infow("Reminders sent", "due", len(reminders), "sent", sent)
	}
	return sent
}
