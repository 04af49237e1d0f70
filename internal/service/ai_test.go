package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/gpt"
	"nutritrack/internal/models"
	"nutritrack/internal/service"
)

func TestChatIncludesTodayTotals(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	logInline(t, f, u.ID, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), 600)
	f.ai.reply = "Have a salad."

	reply, err := f.svc.Chat(context.Background(), u.ID, service.ChatInput{Message: "dinner ideas?"})
	require.NoError(t, err)
	assert.Equal(t, "Have a salad.", reply)
	assert.Contains(t, f.ai.chatContext, "600 kcal")
	assert.Contains(t, f.ai.chatContext, "2000 kcal")

	_, err = f.svc.Chat(context.Background(), u.ID, service.ChatInput{Message: "  "})
	assert.True(t, isValidation(err))
}

func TestChatMessageLimitCountsCharacters(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	f.ai.reply = "ok"

	_, err := f.svc.Chat(context.Background(), u.ID, service.ChatInput{Message: strings.Repeat("ã", 4000)})
	require.NoError(t, err)

	_, err = f.svc.Chat(context.Background(), u.ID, service.ChatInput{Message: strings.Repeat("ã", 4001)})
	assert.True(t, isValidation(err))
}

func TestAIErrorsAreMapped(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")

	f.ai.err = errors.New("429 too many requests")
	_, err := f.svc.Chat(context.Background(), u.ID, service.ChatInput{Message: "hi"})
	assert.ErrorIs(t, err, service.ErrAIUnavailable)
	_, err = f.svc.AnalyzeMeal(context.Background(), "rice")
	assert.ErrorIs(t, err, service.ErrAIUnavailable)

	f.ai.err = gpt.ErrNotConfigured
	_, err = f.svc.PersonalizedRecommendations(context.Background(), u.ID)
	assert.ErrorIs(t, err, service.ErrNotConfigured)

	none := newFixture(t, func(d *service.Deps) { d.AI = nil })
	_, err = none.svc.SuggestRecipes(context.Background(), u.ID, nil, "")
	assert.ErrorIs(t, err, service.ErrNotConfigured)
}

func TestAnalyzeMealRoundsValues(t *testing.T) {
	f := newFixture(t)
	f.ai.analysis = &gpt.MealAnalysis{
		Foods:  []gpt.AnalyzedFood{{Name: "rice", Nutrients: models.Nutrients{Calories: 195.456}}},
		Totals: models.Nutrients{Calories: 195.456},
	}
	out, err := f.svc.AnalyzeMeal(context.Background(), "arroz")
	require.NoError(t, err)
	assert.Equal(t, 195.46, out.Foods[0].Calories)
	assert.Equal(t, 195.46, out.Totals.Calories)
}

func TestRecommendationsUseLastWeek(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	logInline(t, f, u.ID, time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC), 1800)

	recs, err := f.svc.PersonalizedRecommendations(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, f.ai.intake, "2024-03-09: 1800 kcal")
	assert.Contains(t, f.ai.intake, "2024-03-10: nothing logged")
}

func TestGenerateMealPlanRequiresPremium(t *testing.T) {
	f := newFixture(t, func(d *service.Deps) { d.RequirePremium = true })
	u := f.register(t, "ana@example.com")
	ctx := context.Background()
	f.ai.plan = &gpt.Plan{Title: "Lean week", Data: json.RawMessage(`{"title":"Lean week","days":[]}`)}

	_, err := f.svc.GenerateMealPlan(ctx, u.ID, "")
	assert.ErrorIs(t, err, service.ErrPremiumRequired)

	require.NoError(t, f.store.SetPremium(ctx, u.ID, true))
	first, err := f.svc.GenerateMealPlan(ctx, u.ID, "vegetarian")
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Equal(t, "Lean week", first.Title)
	assert.Equal(t, models.PlanTypeDiet, first.Type)

	f.ai.plan = &gpt.Plan{Data: json.RawMessage(`{"days":[]}`)}
	second, err := f.svc.GenerateMealPlan(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Meal plan", second.Title)

	active, err := f.svc.GetActivePlan(ctx, u.ID, models.PlanTypeDiet)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	legacy, err := f.svc.ListLegacyMealPlans(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, legacy, 2)

	workout, err := f.svc.GenerateWorkoutPlan(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Workout plan", workout.Title)
	legacy, err = f.svc.ListLegacyMealPlans(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, legacy, 2)
}
