package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	FoodSourceCustom = "custom"
	FoodSourceUSDA   = "usda"
)

// Nutrients is the macro/micro set tracked everywhere: per 100g on foods,
// absolute amounts on meal foods, recipe ingredients and daily rollups.
type Nutrients struct {
	Calories float64 `json:"calories" db:"calories"`
	Protein  float64 `json:"protein" db:"protein"`
	Carbs    float64 `json:"carbs" db:"carbs"`
	Fat      float64 `json:"fat" db:"fat"`
	Fiber    float64 `json:"fiber" db:"fiber"`
	Sugar    float64 `json:"sugar" db:"sugar"`
	Sodium   float64 `json:"sodium" db:"sodium"` // mg
}

// Food stores nutrition per 100g. UserID is nil for shared foods
// (USDA imports and seeded data).
type Food struct {
	ID           int64          `json:"id" db:"id"`
	UserID       *int64         `json:"user_id,omitempty" db:"user_id"`
	Name         string         `json:"name" db:"name"`
	Brand        string         `json:"brand,omitempty" db:"brand"`
	Source       string         `json:"source" db:"source"`
	FDCID        *int64         `json:"fdc_id,omitempty" db:"fdc_id"`
	ServingSizeG float64        `json:"serving_size_g" db:"serving_size_g"`
	ServingUnit  string         `json:"serving_unit" db:"serving_unit"`
	Aliases      pq.StringArray `json:"aliases,omitempty" db:"aliases"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	Nutrients
}
