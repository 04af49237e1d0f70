// internal/models/user.go
package models

import (
	"time"
)

const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

type User struct {
	ID                  int64     `json:"id" db:"id"`
	Email               string    `json:"email" db:"email"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	Name                string    `json:"name" db:"name"`
	Age                 int       `json:"age" db:"age"`
	Sex                 string    `json:"sex" db:"sex"`
	WeightKg            float64   `json:"weight_kg" db:"weight_kg"`
	HeightCm            float64   `json:"height_cm" db:"height_cm"`
	ActivityLevel       string    `json:"activity_level" db:"activity_level"`
	Goal                string    `json:"goal" db:"goal"`
	DailyCalories       int       `json:"daily_calories" db:"daily_calories"`
	DailyProtein        int       `json:"daily_protein" db:"daily_protein"`
	DailyCarbs          int       `json:"daily_carbs" db:"daily_carbs"`
	DailyFat            int       `json:"daily_fat" db:"daily_fat"`
	OnboardingCompleted bool      `json:"onboarding_completed" db:"onboarding_completed"`
	TelegramChatID      int64     `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	ReminderHour        int       `json:"reminder_hour" db:"reminder_hour"`
	ReminderMinute      int       `json:"reminder_minute" db:"reminder_minute"`
	RemindersEnabled    bool      `json:"reminders_enabled" db:"reminders_enabled"`
	IsPremium           bool      `json:"is_premium" db:"is_premium"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// GoalNutrients returns the stored daily targets in the shared nutrient shape.
func (u *User) GoalNutrients() Nutrients {
	return Nutrients{
		Calories: float64(u.DailyCalories),
		Protein:  float64(u.DailyProtein),
		Carbs:    float64(u.DailyCarbs),
		Fat:      float64(u.DailyFat),
	}
}

type Payment struct {
	ID              int64     `json:"id" db:"id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	Amount          int64     `json:"amount" db:"amount"`
	Currency        string    `json:"currency" db:"currency"`
	StripeSessionID string    `json:"stripe_session_id" db:"stripe_session_id"`
	Status          string    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)
