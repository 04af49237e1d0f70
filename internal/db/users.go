package db

import (
	"context"
	"strings"

	"nutritrack/internal/models"
)

const userColumns = `id, email, password_hash, name, age, sex, weight_kg, height_cm,
	activity_level, goal, daily_calories, daily_protein, daily_carbs, daily_fat,
	onboarding_completed, telegram_chat_id, reminder_hour, reminder_minute,
	reminders_enabled, is_premium, created_at, updated_at`

func (db *PostgresDB) CreateUser(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (email, password_hash, name, age, sex, weight_kg, height_cm,
            activity_level, goal, daily_calories, daily_protein, daily_carbs, daily_fat)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id, created_at, updated_at
    `

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := db.db.QueryRowxContext(ctx, query,
		user.Email, user.PasswordHash, user.Name, user.Age, user.Sex, user.WeightKg, user.HeightCm,
		user.ActivityLevel, user.Goal, user.DailyCalories, user.DailyProtein, user.DailyCarbs, user.DailyFat,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return wrapErr(err, "failed to create user")
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, wrapErr(err, "failed to get user")
	}
	return &user, nil
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := db.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, wrapErr(err, "failed to get user by email")
	}
	return &user, nil
}

// UpdateUser writes every mutable profile, goal and reminder field.
func (db *PostgresDB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
        UPDATE users SET
            name = $2, age = $3, sex = $4, weight_kg = $5, height_cm = $6,
            activity_level = $7, goal = $8, daily_calories = $9, daily_protein = $10,
            daily_carbs = $11, daily_fat = $12, onboarding_completed = $13,
            telegram_chat_id = $14, reminder_hour = $15, reminder_minute = $16,
            reminders_enabled = $17, updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at
    `

	err := db.db.QueryRowxContext(ctx, query,
		user.ID, user.Name, user.Age, user.Sex, user.WeightKg, user.HeightCm,
		user.ActivityLevel, user.Goal, user.DailyCalories, user.DailyProtein,
		user.DailyCarbs, user.DailyFat, user.OnboardingCompleted,
		user.TelegramChatID, user.ReminderHour, user.ReminderMinute,
		user.RemindersEnabled,
	).Scan(&user.UpdatedAt)

	return wrapErr(err, "failed to update user")
}

func (db *PostgresDB) SetPremium(ctx context.Context, userID int64, premium bool) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE users SET is_premium = $2, updated_at = NOW() WHERE id = $1`, userID, premium)
	if err != nil {
		return wrapErr(err, "failed to update premium status")
	}
	return expectAffected(res, "failed to update premium status")
}

// ListReminderUsers returns users with reminders enabled at hour:minute
// and a linked Telegram chat.
func (db *PostgresDB) ListReminderUsers(ctx context.Context, hour, minute int) ([]models.User, error) {
	users := []models.User{}
	err := db.db.SelectContext(ctx, &users, `
        SELECT `+userColumns+` FROM users
        WHERE reminders_enabled AND telegram_chat_id <> 0
          AND reminder_hour = $1 AND reminder_minute = $2
        ORDER BY id`, hour, minute)
	if err != nil {
		return nil, wrapErr(err, "failed to list reminder users")
	}
	return users, nil
}
