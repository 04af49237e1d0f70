package models

import "time"

// DailyNutrition is the per-nutritional-day rollup of a user's meals plus
// the goals that applied when it was last computed.
type DailyNutrition struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Date         string    `json:"date" db:"date"`
	MealCount    int       `json:"meal_count" db:"meal_count"`
	GoalCalories float64   `json:"goal_calories" db:"goal_calories"`
	GoalProtein  float64   `json:"goal_protein" db:"goal_protein"`
	GoalCarbs    float64   `json:"goal_carbs" db:"goal_carbs"`
	GoalFat      float64   `json:"goal_fat" db:"goal_fat"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	Nutrients
}
