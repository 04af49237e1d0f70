package service

import (
	"context"
	"strings"

	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
)

type RecipeInput struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Instructions string           `json:"instructions"`
	Servings     int              `json:"servings"`
	PrepMinutes  int              `json:"prep_minutes"`
	Tags         []string         `json:"tags"`
	Source       string           `json:"source"`
	Ingredients  []FoodEntryInput `json:"ingredients"`
}

func (s *Service) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	return s.store.ListRecipes(ctx, userID)
}

func (s *Service) GetRecipe(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	return s.store.GetRecipe(ctx, userID, id)
}

// CreateRecipe resolves every ingredient like a meal food and stores the
// summed totals for the whole recipe.
func (s *Service) CreateRecipe(ctx context.Context, userID int64, in RecipeInput) (*models.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if len(in.Ingredients) == 0 {
		return nil, invalid("ingredients", "at least one ingredient is required")
	}
	if in.Servings < 0 || in.PrepMinutes < 0 {
		return nil, invalid("servings", "servings and prep_minutes must not be negative")
	}
	servings := in.Servings
	if servings == 0 {
		servings = 1
	}
	source := in.Source
	if source != models.RecipeSourceAI {
		source = models.RecipeSourceUser
	}

	recipe := &models.Recipe{
		UserID:       userID,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		Instructions: strings.TrimSpace(in.Instructions),
		Servings:     servings,
		PrepMinutes:  in.PrepMinutes,
		Tags:         append([]string{}, in.Tags...),
		Source:       source,
		Ingredients:  make([]models.RecipeIngredient, 0, len(in.Ingredients)),
	}
	totals := make([]models.Nutrients, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		entry, err := s.resolveEntry(ctx, userID, ing)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			FoodID:    entry.foodID,
			Name:      entry.name,
			Quantity:  entry.quantity,
			Unit:      entry.unit,
			Grams:     entry.grams,
			Nutrients: entry.nutrients,
		})
		totals = append(totals, entry.nutrients)
	}
	recipe.Nutrients = nutrition.Sum(totals)

	if err := s.store.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *Service) DeleteRecipe(ctx context.Context, userID, id int64) error {
	return s.store.DeleteRecipe(ctx, userID, id)
}
