package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	RecipeSourceUser = "user"
	RecipeSourceAI   = "ai"
)

type Recipe struct {
	ID           int64              `json:"id" db:"id"`
	UserID       int64              `json:"user_id" db:"user_id"`
	Name         string             `json:"name" db:"name"`
	Description  string             `json:"description" db:"description"`
	Instructions string             `json:"instructions" db:"instructions"`
	Servings     int                `json:"servings" db:"servings"`
	PrepMinutes  int                `json:"prep_minutes" db:"prep_minutes"`
	Tags         pq.StringArray     `json:"tags" db:"tags"`
	Source       string             `json:"source" db:"source"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	Ingredients  []RecipeIngredient `json:"ingredients" db:"-"`
	Nutrients
}

type RecipeIngredient struct {
	ID       int64   `json:"id" db:"id"`
	RecipeID int64   `json:"recipe_id" db:"recipe_id"`
	FoodID   *int64  `json:"food_id,omitempty" db:"food_id"`
	Name     string  `json:"name" db:"name"`
	Quantity float64 `json:"quantity" db:"quantity"`
	Unit     string  `json:"unit" db:"unit"`
	Grams    float64 `json:"grams" db:"grams"`
	Nutrients
}
