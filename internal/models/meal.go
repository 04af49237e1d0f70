package models

import "time"

type MealType struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

// Meal is a container scoped to one nutritional day.
type Meal struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	MealTypeID     int64      `json:"meal_type_id" db:"meal_type_id"`
	Name           string     `json:"name" db:"name"`
	NutritionalDay string     `json:"nutritional_day" db:"nutritional_day"`
	LoggedAt       time.Time  `json:"logged_at" db:"logged_at"`
	Notes          string     `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	Foods          []MealFood `json:"foods" db:"-"`
}

// MealFood snapshots the nutrient values at insertion time; they are not
// recomputed when the underlying food changes.
type MealFood struct {
	ID        int64     `json:"id" db:"id"`
	MealID    int64     `json:"meal_id" db:"meal_id"`
	FoodID    *int64    `json:"food_id,omitempty" db:"food_id"`
	FoodName  string    `json:"food_name" db:"food_name"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	Unit      string    `json:"unit" db:"unit"`
	Grams     float64   `json:"grams" db:"grams"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Nutrients
}

// Totals sums the meal's snapshots.
func (m *Meal) Totals() Nutrients {
	var t Nutrients
	for _, f := range m.Foods {
		t = t.Add(f.Nutrients)
	}
	return t
}

// Add returns the field-wise sum.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
		Sugar:    n.Sugar + o.Sugar,
		Sodium:   n.Sodium + o.Sodium,
	}
}
