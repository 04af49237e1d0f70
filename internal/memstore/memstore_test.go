package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/models"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &models.User{Email: "Ana@Example.com", PasswordHash: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, "ana@example.com", u.Email)

	err := s.CreateUser(ctx, &models.User{Email: "ANA@example.com"})
	assert.ErrorIs(t, err, models.ErrConflict)

	got, err := s.GetUserByEmail(ctx, " ana@EXAMPLE.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, s.SetPremium(ctx, u.ID, true))
	patch := &models.User{ID: u.ID, Email: "other@example.com", Name: "Ana"}
	require.NoError(t, s.UpdateUser(ctx, patch))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.True(t, got.IsPremium)
	assert.Equal(t, "Ana", got.Name)

	_, err = s.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFoodVisibilityAndSearch(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice, bob := int64(1), int64(2)
	fdc := int64(171077)

	shared := &models.Food{Name: "Chicken breast", FDCID: &fdc, Source: models.FoodSourceUSDA}
	require.NoError(t, s.SaveFood(ctx, shared))
	mine := &models.Food{Name: "Pao de queijo", UserID: &alice, Aliases: []string{"cheese bread"}}
	require.NoError(t, s.SaveFood(ctx, mine))
	theirs := &models.Food{Name: "Bob's bread", UserID: &bob}
	require.NoError(t, s.SaveFood(ctx, theirs))

	foods, err := s.ListFoods(ctx, alice, 10)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, mine.ID, foods[0].ID, "own foods come first")

	found, err := s.SearchFoods(ctx, alice, "BREAD", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Pao de queijo", found[0].Name)

	_, err = s.GetFood(ctx, alice, theirs.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	again := &models.Food{Name: "Chicken breast, raw", FDCID: &fdc}
	require.NoError(t, s.SaveFood(ctx, again))
	assert.Equal(t, shared.ID, again.ID, "fdc id upserts")
}

func TestMealsAndFoods(t *testing.T) {
	ctx := context.Background()
	s := New()

	meal := &models.Meal{UserID: 1, MealTypeID: 1, NutritionalDay: "2024-03-10"}
	require.NoError(t, s.CreateMeal(ctx, meal))
	mf := &models.MealFood{MealID: meal.ID, FoodName: "Oats", Nutrients: models.Nutrients{Calories: 194.5}}
	require.NoError(t, s.AddMealFood(ctx, mf))

	meals, err := s.ListMealsByDay(ctx, 1, "2024-03-10")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	require.Len(t, meals[0].Foods, 1)
	assert.Equal(t, 194.5, meals[0].Totals().Calories)

	_, err = s.GetMeal(ctx, 2, meal.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, s.DeleteMealFood(ctx, meal.ID, mf.ID))
	assert.ErrorIs(t, s.DeleteMealFood(ctx, meal.ID, mf.ID), models.ErrNotFound)

	day, err := s.DeleteMeal(ctx, 1, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", day)
}

func TestActivePlanIsUniquePerType(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := &models.UserPlan{UserID: 1, Type: models.PlanTypeDiet, Title: "A", IsActive: true}
	second := &models.UserPlan{UserID: 1, Type: models.PlanTypeDiet, Title: "B", IsActive: true}
	workout := &models.UserPlan{UserID: 1, Type: models.PlanTypeWorkout, Title: "W", IsActive: true}
	for _, p := range []*models.UserPlan{first, second, workout} {
		require.NoError(t, s.CreatePlan(ctx, p))
	}

	active, err := s.GetActivePlan(ctx, 1, models.PlanTypeDiet)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	_, err = s.ActivatePlan(ctx, 1, first.ID)
	require.NoError(t, err)
	active, err = s.GetActivePlan(ctx, 1, models.PlanTypeDiet)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)

	active, err = s.GetActivePlan(ctx, 1, models.PlanTypeWorkout)
	require.NoError(t, err)
	assert.Equal(t, workout.ID, active.ID)
}
