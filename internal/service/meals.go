package service

import (
	"context"
	"strings"
	"time"

	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
)

type CreateMealInput struct {
	MealTypeID int64            `json:"meal_type_id"`
	Name       string           `json:"name"`
	LoggedAt   *time.Time       `json:"logged_at"`
	Notes      string           `json:"notes"`
	Foods      []FoodEntryInput `json:"foods"`
}

// MealWithTotals is a meal plus the sum of its foods.
type MealWithTotals struct {
	models.Meal
	Totals models.Nutrients `json:"totals"`
}

func withTotals(meals []models.Meal) []MealWithTotals {
	out := make([]MealWithTotals, len(meals))
	for i, m := range meals {
		out[i] = MealWithTotals{Meal: m, Totals: nutrition.Round(m.Totals())}
	}
	return out
}

func (s *Service) ListMealTypes(ctx context.Context) ([]models.MealType, error) {
	return s.store.ListMealTypes(ctx)
}

// resolveDay validates day, defaulting to the current nutritional day.
func (s *Service) resolveDay(day string) (string, error) {
	if day == "" {
		return s.today(), nil
	}
	if _, err := nutrition.ParseDay(day); err != nil {
		return "", invalid("date", "%s", err.Error())
	}
	return day, nil
}

func (s *Service) ListMeals(ctx context.Context, userID int64, day string) ([]MealWithTotals, error) {
	day, err := s.resolveDay(day)
	if err != nil {
		return nil, err
	}
	meals, err := s.store.ListMealsByDay(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	return withTotals(meals), nil
}

// CreateMeal logs a meal on the nutritional day of its logged_at time and
// refreshes that day's rollup.
func (s *Service) CreateMeal(ctx context.Context, userID int64, in CreateMealInput) (*MealWithTotals, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	types, err := s.store.ListMealTypes(ctx)
	if err != nil {
		return nil, err
	}
	var mealType *models.MealType
	for i := range types {
		if types[i].ID == in.MealTypeID {
			mealType = &types[i]
		}
	}
	if mealType == nil {
		return nil, invalid("meal_type_id", "unknown meal type %d", in.MealTypeID)
	}

	loggedAt := s.now()
	if in.LoggedAt != nil && !in.LoggedAt.IsZero() {
		loggedAt = *in.LoggedAt
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = mealType.Name
	}

	meal := &models.Meal{
		UserID:         userID,
		MealTypeID:     mealType.ID,
		Name:           name,
		NutritionalDay: nutrition.Day(loggedAt, s.loc),
		LoggedAt:       loggedAt.UTC(),
		Notes:          strings.TrimSpace(in.Notes),
		Foods:          make([]models.MealFood, 0, len(in.Foods)),
	}
	for _, f := range in.Foods {
		entry, err := s.resolveEntry(ctx, userID, f)
		if err != nil {
			return nil, err
		}
		meal.Foods = append(meal.Foods, entry.mealFood())
	}

	if err := s.store.CreateMeal(ctx, meal); err != nil {
		return nil, err
	}
	s.refresh(ctx, user, meal.NutritionalDay)
	return &MealWithTotals{Meal: *meal, Totals: nutrition.Round(meal.Totals())}, nil
}

func (s *Service) DeleteMeal(ctx context.Context, userID, mealID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	day, err := s.store.DeleteMeal(ctx, userID, mealID)
	if err != nil {
		return err
	}
	s.refresh(ctx, user, day)
	return nil
}

func (s *Service) AddMealFood(ctx context.Context, userID, mealID int64, in FoodEntryInput) (*models.MealFood, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meal, err := s.store.GetMeal(ctx, userID, mealID)
	if err != nil {
		return nil, err
	}
	entry, err := s.resolveEntry(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	food := entry.mealFood()
	food.MealID = meal.ID
	if err := s.store.AddMealFood(ctx, &food); err != nil {
		return nil, err
	}
	s.refresh(ctx, user, meal.NutritionalDay)
	return &food, nil
}

func (s *Service) DeleteMealFood(ctx context.Context, userID, mealID, mealFoodID int64) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	meal, err := s.store.GetMeal(ctx, userID, mealID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteMealFood(ctx, meal.ID, mealFoodID); err != nil {
		return err
	}
	s.refresh(ctx, user, meal.NutritionalDay)
	return nil
}

func (e *resolvedEntry) mealFood() models.MealFood {
	return models.MealFood{
		FoodID:    e.foodID,
		FoodName:  e.name,
		Quantity:  e.quantity,
		Unit:      e.unit,
		Grams:     e.grams,
		Nutrients: e.nutrients,
	}
}

// refresh recomputes a day's rollup after a meal change. The meal change
// itself already succeeded, so failures are only logged.
func (s *Service) refresh(ctx context.Context, user *models.User, day string) {
	if _, err := s.recompute(ctx, user, day); err != nil {
		s.logger.Errorw("Failed to recompute daily nutrition", "user_id", user.ID, "date", day, "error", err)
	}
}

// recompute rebuilds the daily_nutrition row of day from the stored meal
// foods and the user's current goals.
func (s *Service) recompute(ctx context.Context, user *models.User, day string) (*models.DailyNutrition, error) {
	meals, err := s.store.ListMealsByDay(ctx, user.ID, day)
	if err != nil {
		return nil, err
	}
	totals := make([]models.Nutrients, 0, len(meals))
	for i := range meals {
		totals = append(totals, meals[i].Totals())
	}

	dn := &models.DailyNutrition{
		UserID:       user.ID,
		Date:         day,
		MealCount:    len(meals),
		GoalCalories: float64(user.DailyCalories),
		GoalProtein:  float64(user.DailyProtein),
		GoalCarbs:    float64(user.DailyCarbs),
		GoalFat:      float64(user.DailyFat),
		Nutrients:    nutrition.Sum(totals),
	}
	if err := s.store.UpsertDailyNutrition(ctx, dn); err != nil {
		return nil, err
	}
	return dn, nil
}
