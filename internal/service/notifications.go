package service

import (
	"context"
	"fmt"
	"time"

	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
)

type ReminderInput struct {
	Hour           int    `json:"hour"`
	Minute         int    `json:"minute"`
	Enabled        *bool  `json:"enabled"`
	TelegramChatID *int64 `json:"telegram_chat_id"`
}

// Reminder is a message due to be sent to a linked Telegram chat.
type Reminder struct {
	UserID int64
	ChatID int64
	Text   string
}

// ScheduleDaily stores the daily reminder time (in the service timezone)
// and the Telegram chat it goes to.
func (s *Service) ScheduleDaily(ctx context.Context, userID int64, in ReminderInput) (*models.User, error) {
	if in.Hour < 0 || in.Hour > 23 {
		return nil, invalid("hour", "must be between 0 and 23")
	}
	if in.Minute < 0 || in.Minute > 59 {
		return nil, invalid("minute", "must be between 0 and 59")
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.TelegramChatID != nil {
		user.TelegramChatID = *in.TelegramChatID
	}
	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}
	if enabled && user.TelegramChatID == 0 {
		return nil, invalid("telegram_chat_id", "link a Telegram chat before enabling reminders")
	}
	user.ReminderHour, user.ReminderMinute, user.RemindersEnabled = in.Hour, in.Minute, enabled

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DueReminders builds the reminders scheduled for the local minute of now.
func (s *Service) DueReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	local := now.In(s.loc)
	users, err := s.store.ListReminderUsers(ctx, local.Hour(), local.Minute())
	if err != nil {
		return nil, err
	}

	day := nutrition.Today(now, s.loc)
	out := make([]Reminder, 0, len(users))
	for i := range users {
		u := &users[i]
		meals, err := s.store.ListMealsByDay(ctx, u.ID, day)
		if err != nil {
			s.logger.Warnw("Skipping reminder", "user_id", u.ID, "error", err)
			continue
		}
		sum := summarize(day, u.GoalNutrients(), meals)
		out = append(out, Reminder{UserID: u.ID, ChatID: u.TelegramChatID, Text: reminderText(u, sum)})
	}
	return out, nil
}

func reminderText(u *models.User, sum *DailySummary) string {
	greeting := "Hi"
	if u.Name != "" {
		greeting += " " + u.Name
	}
	if sum.MealCount == 0 {
		return fmt.Sprintf("%s! You have not logged any meals today. Your goal is %.0f kcal.",
			greeting, sum.Goals.Calories)
	}
	if sum.Remaining.Calories < 0 {
		return fmt.Sprintf("%s! You are %.0f kcal over today's goal after %d meals.",
			greeting, -sum.Remaining.Calories, sum.MealCount)
	}
	return fmt.Sprintf("%s! %.0f kcal left today (%.0f g protein, %.0f g carbs, %.0f g fat).",
		greeting, sum.Remaining.Calories, sum.Remaining.Protein, sum.Remaining.Carbs, sum.Remaining.Fat)
}
