package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/models"
	"nutritrack/internal/service"
)

func TestCreateRecipeSumsIngredients(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")
	chicken := chickenFood(t, f, u.ID)
	ctx := context.Background()

	r, err := f.svc.CreateRecipe(ctx, u.ID, service.RecipeInput{
		Name:     "Chicken & rice",
		Servings: 2,
		Tags:     []string{"lunch"},
		Ingredients: []service.FoodEntryInput{
			{FoodID: &chicken.ID, Quantity: 200},
			{Name: "Rice", Quantity: 1, Unit: "cup", Nutrients: &models.Nutrients{Calories: 205, Carbs: 44.5}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.RecipeSourceUser, r.Source)
	assert.Equal(t, 535.0, r.Calories)
	assert.Equal(t, 62.0, r.Protein)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, 240.0, r.Ingredients[1].Grams)

	got, err := f.svc.GetRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chicken & rice", got.Name)

	list, err := f.svc.ListRecipes(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other := f.register(t, "eve@example.com")
	assert.ErrorIs(t, f.svc.DeleteRecipe(ctx, other.ID, r.ID), models.ErrNotFound)
	require.NoError(t, f.svc.DeleteRecipe(ctx, u.ID, r.ID))
	_, err = f.svc.GetRecipe(ctx, u.ID, r.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "ana@example.com")

	_, err := f.svc.CreateRecipe(context.Background(), u.ID, service.RecipeInput{Name: "Empty"})
	assert.True(t, isValidation(err))
	_, err = f.svc.CreateRecipe(context.Background(), u.ID, service.RecipeInput{
		Ingredients: []service.FoodEntryInput{{Name: "x", Quantity: 1, Nutrients: &models.Nutrients{}}}})
	assert.True(t, isValidation(err))
}
