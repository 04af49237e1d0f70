package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/models"
	"nutritrack/internal/service"
)

func logInline(t *testing.T, f *fixture, userID int64, at time.Time, kcal float64) {
	t.Helper()
	_, err := f.svc.CreateMeal(context.Background(), userID, service.CreateMealInput{
		MealTypeID: 1,
		LoggedAt:   &at,
		Foods: []service.FoodEntryInput{{Name: "Food", Quantity: 1, Unit: "serving",
			Nutrients: &models.Nutrients{Calories: kcal, Protein: kcal / 20}}},
	})
	require.NoError(t, err)
}

func TestDailyNutritionSummary(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	logInline(t, f, u.ID, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), 500)
	logInline(t, f, u.ID, time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC), 1700)

	sum, err := f.svc.DailyNutrition(context.Background(), u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", sum.Date)
	assert.Equal(t, 2, sum.MealCount)
	assert.Equal(t, 2200.0, sum.Totals.Calories)
	assert.Equal(t, -200.0, sum.Remaining.Calories)
	assert.Equal(t, 110.0, sum.Percent.Calories)
	assert.Equal(t, 15.0, sum.Remaining.Protein)
	require.Len(t, sum.Meals, 2)
	assert.Equal(t, 500.0, sum.Meals[0].Totals.Calories)
}

func TestHourlyProgressOrdersFromFive(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	logInline(t, f, u.ID, time.Date(2024, 3, 10, 8, 15, 0, 0, time.UTC), 400)
	logInline(t, f, u.ID, time.Date(2024, 3, 10, 8, 45, 0, 0, time.UTC), 100)
	logInline(t, f, u.ID, time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC), 300)

	hp, err := f.svc.HourlyProgress(context.Background(), u.ID, "2024-03-10")
	require.NoError(t, err)
	require.Len(t, hp.Hours, 24)
	assert.Equal(t, 5, hp.Hours[0].Hour)
	assert.Equal(t, 4, hp.Hours[23].Hour)

	assert.Equal(t, 8, hp.Hours[3].Hour)
	assert.Equal(t, 500.0, hp.Hours[3].Calories)
	assert.Equal(t, 25.0, hp.Hours[3].Protein)
	assert.Equal(t, 2, hp.Hours[21].Hour)
	assert.Equal(t, 300.0, hp.Hours[21].Calories)

	assert.Equal(t, 500.0, hp.Hours[20].CumulativeCalories)
	assert.Equal(t, 800.0, hp.Hours[23].CumulativeCalories)
	assert.Equal(t, 2000.0, hp.GoalCalories)
}

func TestWeeklyProgressZeroFillsAndAveragesLoggedDays(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	logInline(t, f, u.ID, time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC), 1950)
	logInline(t, f, u.ID, time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC), 1000)
	logInline(t, f, u.ID, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 3000)

	wp, err := f.svc.WeeklyProgress(context.Background(), u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", wp.From)
	assert.Equal(t, "2024-03-10", wp.To)
	require.Len(t, wp.Days, 7)
	assert.Equal(t, "2024-03-04", wp.Days[0].Date)
	assert.True(t, wp.Days[0].OnTarget)
	assert.Zero(t, wp.Days[1].Calories)
	assert.Equal(t, 2000.0, wp.Days[1].GoalCalories)

	assert.Equal(t, 2, wp.LoggedDays)
	assert.Equal(t, 1, wp.DaysOnTarget)
	assert.Equal(t, 1475.0, wp.Averages.Calories)

	_, err = f.svc.WeeklyProgress(context.Background(), u.ID, "2024-13-01")
	assert.True(t, isValidation(err))
}

func TestMonthlyProgress(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	logInline(t, f, u.ID, time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC), 2100)
	logInline(t, f, u.ID, time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC), 1000)

	mp, err := f.svc.MonthlyProgress(context.Background(), u.ID, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", mp.From)
	assert.Equal(t, "2024-02-29", mp.To)
	require.Len(t, mp.Days, 29)
	// the 04:00 meal belongs to Feb 29
	assert.Equal(t, 3100.0, mp.Days[28].Calories)
	assert.Equal(t, 1, mp.LoggedDays)
	assert.Zero(t, mp.DaysOnTarget)

	mp, err = f.svc.MonthlyProgress(context.Background(), u.ID, "")
	require.NoError(t, err)
	assert.Len(t, mp.Days, 31)
	assert.Zero(t, mp.LoggedDays)

	_, err = f.svc.MonthlyProgress(context.Background(), u.ID, "March")
	assert.True(t, isValidation(err))
}
