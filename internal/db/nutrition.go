package db

import (
	"context"

	"nutritrack/internal/models"
)

const dailyNutritionColumns = `user_id, date::text AS date, meal_count, calories, protein, carbs, fat,
	fiber, sugar, sodium, goal_calories, goal_protein, goal_carbs, goal_fat, updated_at`

// UpsertDailyNutrition replaces the rollup for (user, date).
func (db *PostgresDB) UpsertDailyNutrition(ctx context.Context, dn *models.DailyNutrition) error {
	query := `
        INSERT INTO daily_nutrition (user_id, date, meal_count, calories, protein, carbs, fat,
            fiber, sugar, sodium, goal_calories, goal_protein, goal_carbs, goal_fat)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (user_id, date) DO UPDATE
        SET meal_count = EXCLUDED.meal_count, calories = EXCLUDED.calories,
            protein = EXCLUDED.protein, carbs = EXCLUDED.carbs, fat = EXCLUDED.fat,
            fiber = EXCLUDED.fiber, sugar = EXCLUDED.sugar, sodium = EXCLUDED.sodium,
            goal_calories = EXCLUDED.goal_calories, goal_protein = EXCLUDED.goal_protein,
            goal_carbs = EXCLUDED.goal_carbs, goal_fat = EXCLUDED.goal_fat,
            updated_at = NOW()
        RETURNING updated_at
    `

	err := db.db.QueryRowxContext(ctx, query,
		dn.UserID, dn.Date, dn.MealCount, dn.Calories, dn.Protein, dn.Carbs, dn.Fat,
		dn.Fiber, dn.Sugar, dn.Sodium, dn.GoalCalories, dn.GoalProtein, dn.GoalCarbs, dn.GoalFat,
	).Scan(&dn.UpdatedAt)

	return wrapErr(err, "failed to save daily nutrition")
}

func (db *PostgresDB) GetDailyNutrition(ctx context.Context, userID int64, day string) (*models.DailyNutrition, error) {
	var dn models.DailyNutrition
	err := db.db.GetContext(ctx, &dn,
		`SELECT `+dailyNutritionColumns+` FROM daily_nutrition WHERE user_id = $1 AND date = $2`,
		userID, day)
	if err != nil {
		return nil, wrapErr(err, "failed to get daily nutrition")
	}
	return &dn, nil
}

// ListDailyNutrition returns stored rollups between from and to inclusive.
// Days without meals have no row.
func (db *PostgresDB) ListDailyNutrition(ctx context.Context, userID int64, from, to string) ([]models.DailyNutrition, error) {
	rows := []models.DailyNutrition{}
	err := db.db.SelectContext(ctx, &rows, `
        SELECT `+dailyNutritionColumns+` FROM daily_nutrition
        WHERE user_id = $1 AND date BETWEEN $2 AND $3
        ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, wrapErr(err, "failed to list daily nutrition")
	}
	return rows, nil
}
