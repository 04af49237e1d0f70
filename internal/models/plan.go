package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	PlanTypeDiet    = "diet"
	PlanTypeWorkout = "workout"
)

// ValidPlanType reports whether t names a known plan type.
func ValidPlanType(t string) bool {
	return t == PlanTypeDiet || t == PlanTypeWorkout
}

// JSON is a raw JSON document stored in a jsonb column.
type JSON []byte

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return errors.New("models.JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSON(nil), v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("models.JSON: cannot scan %T", src)
	}
	return nil
}

// Checklist maps plan item keys (e.g. "breakfast", "workout") to completion.
type Checklist map[string]bool

func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *Checklist) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Checklist{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models.Checklist: cannot scan %T", src)
	}
	out := Checklist{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*c = out
	return nil
}

// UserPlan is an AI-generated (or user-saved) diet or workout plan. At most
// one plan per (user, type) is active.
type UserPlan struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Type      string    `json:"type" db:"type"`
	Title     string    `json:"title" db:"title"`
	Data      JSON      `json:"data" db:"data"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DailyProgress records which items of a plan were completed on a day.
type DailyProgress struct {
	ID         int64     `json:"id" db:"id"`
	UserPlanID int64     `json:"user_plan_id" db:"user_plan_id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Date       string    `json:"date" db:"date"`
	Completed  Checklist `json:"completed" db:"completed"`
	Notes      string    `json:"notes,omitempty" db:"notes"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// CompletionRate is the share of checked items, 0 when nothing is tracked.
func (p *DailyProgress) CompletionRate() float64 {
	if len(p.Completed) == 0 {
		return 0
	}
	done := 0
	for _, ok := range p.Completed {
		if ok {
			done++
		}
	}
	return float64(done) / float64(len(p.Completed))
}

// MealPlan is the legacy free-text plan kept for older clients.
type MealPlan struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	PlanText  string    `json:"plan_text" db:"plan_text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
