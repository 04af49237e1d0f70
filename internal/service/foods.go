package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
	"nutritrack/internal/usda"
)

const (
	foodListLimit   = 200
	searchLimit     = 20
	minSearchLength = 2
)

type FoodInput struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	ServingSizeG float64  `json:"serving_size_g"`
	ServingUnit  string   `json:"serving_unit"`
	Aliases      []string `json:"aliases"`
	// per 100 g
	models.Nutrients
}

// FoodEntryInput references the food of a meal line or recipe ingredient:
// a local food, a USDA food by fdc id, or inline nutrients for the given
// quantity (e.g. from meal analysis).
type FoodEntryInput struct {
	FoodID    *int64            `json:"food_id"`
	FDCID     *int64            `json:"fdc_id"`
	Name      string            `json:"name"`
	Quantity  float64           `json:"quantity"`
	Unit      string            `json:"unit"`
	Grams     float64           `json:"grams"`
	Nutrients *models.Nutrients `json:"nutrients"`
}

type SearchResult struct {
	Query           string        `json:"query"`
	TranslatedQuery string        `json:"translated_query,omitempty"`
	Fallback        bool          `json:"fallback"`
	Foods           []models.Food `json:"foods"`
}

func (s *Service) ListFoods(ctx context.Context, userID int64) ([]models.Food, error) {
	return s.store.ListFoods(ctx, userID, foodListLimit)
}

func (s *Service) CreateFood(ctx context.Context, userID int64, in FoodInput) (*models.Food, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := checkNutrients(in.Nutrients); err != nil {
		return nil, err
	}
	serving, unit := in.ServingSizeG, strings.TrimSpace(in.ServingUnit)
	if serving < 0 {
		return nil, invalid("serving_size_g", "must not be negative")
	}
	if serving == 0 {
		serving = 100
	}
	if unit == "" {
		unit = "g"
	}

	aliases := make([]string, 0, len(in.Aliases))
	for _, a := range in.Aliases {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}

	food := &models.Food{
		UserID:       &userID,
		Name:         name,
		Brand:        strings.TrimSpace(in.Brand),
		Source:       models.FoodSourceCustom,
		ServingSizeG: serving,
		ServingUnit:  unit,
		Aliases:      aliases,
		Nutrients:    nutrition.Round(in.Nutrients),
	}
	if err := s.store.SaveFood(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

// SearchFoods merges local matches with FoodData Central results for the
// translated query. When the remote search fails the static fallback list
// is used instead.
func (s *Service) SearchFoods(ctx context.Context, userID int64, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchLength {
		return nil, invalid("q", "must have at least %d characters", minSearchLength)
	}

	result := &SearchResult{Query: query}
	remoteQuery := query
	if s.translator != nil {
		if en, ok := s.translator.Translate(query); ok {
			remoteQuery = en
			result.TranslatedQuery = en
		}
	}

	local, err := s.store.SearchFoods(ctx, userID, query, searchLimit)
	if err != nil {
		return nil, err
	}
	if remoteQuery != query {
		more, err := s.store.SearchFoods(ctx, userID, remoteQuery, searchLimit)
		if err != nil {
			return nil, err
		}
		local = mergeFoods(local, more)
	}

	var remote []models.Food
	if s.foods != nil {
		remote, err = s.foods.Search(ctx, remoteQuery, searchLimit)
		if err != nil {
			s.logger.Warnw("USDA search failed, using fallback foods", "query", remoteQuery, "error", err)
		}
	}
	if (s.foods == nil || err != nil) && s.fallback != nil {
		remote = s.fallback.Search(query, remoteQuery)
		result.Fallback = true
	}

	result.Foods = mergeFoods(local, remote)
	return result, nil
}

// mergeFoods appends extra to base, skipping USDA foods already present
// and exact local duplicates.
func mergeFoods(base, extra []models.Food) []models.Food {
	out := make([]models.Food, 0, len(base)+len(extra))
	seenFDC := map[int64]bool{}
	seenID := map[int64]bool{}
	seenName := map[string]bool{}
	add := func(f models.Food) {
		switch {
		case f.FDCID != nil && seenFDC[*f.FDCID]:
			return
		case f.ID != 0 && seenID[f.ID]:
			return
		case f.ID == 0 && f.FDCID == nil && seenName[usda.Fold(f.Name)]:
			return
		}
		if f.FDCID != nil {
			seenFDC[*f.FDCID] = true
		}
		if f.ID != 0 {
			seenID[f.ID] = true
		}
		seenName[usda.Fold(f.Name)] = true
		out = append(out, f)
	}
	for _, f := range base {
		add(f)
	}
	for _, f := range extra {
		add(f)
	}
	return out
}

// importUSDA returns the local copy of a FoodData Central food, importing it
// on first use.
func (s *Service) importUSDA(ctx context.Context, fdcID int64) (*models.Food, error) {
	food, err := s.store.GetFoodByFDCID(ctx, fdcID)
	if err == nil {
		return food, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if s.foods == nil {
		return nil, fmt.Errorf("food %d: %w", fdcID, models.ErrNotFound)
	}
	food, err = s.foods.Get(ctx, fdcID)
	if err != nil {
		return nil, err
	}
	food.UserID = nil
	food.Source = models.FoodSourceUSDA
	if err := s.store.SaveFood(ctx, food); err != nil {
		return nil, err
	}
	return food, nil
}

type resolvedEntry struct {
	foodID    *int64
	name      string
	quantity  float64
	unit      string
	grams     float64
	nutrients models.Nutrients
}

// resolveEntry turns an entry into its snapshot: grams and absolute
// nutrient values computed once from the referenced food.
func (s *Service) resolveEntry(ctx context.Context, userID int64, in FoodEntryInput) (*resolvedEntry, error) {
	if in.Quantity <= 0 {
		return nil, invalid("quantity", "must be positive")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "g"
	}

	var food *models.Food
	var err error
	switch {
	case in.FoodID != nil:
		food, err = s.store.GetFood(ctx, userID, *in.FoodID)
	case in.FDCID != nil:
		food, err = s.importUSDA(ctx, *in.FDCID)
	default:
		return resolveInline(in, unit)
	}
	if err != nil {
		return nil, err
	}

	grams, err := nutrition.ToGrams(in.Quantity, unit, food.ServingSizeG)
	if err != nil {
		return nil, invalid("unit", "%s", err.Error())
	}
	name := food.Name
	if n := strings.TrimSpace(in.Name); n != "" {
		name = n
	}
	id := food.ID
	return &resolvedEntry{
		foodID:    &id,
		name:      name,
		quantity:  in.Quantity,
		unit:      unit,
		grams:     round2(grams),
		nutrients: nutrition.Scale(food.Nutrients, grams),
	}, nil
}

func resolveInline(in FoodEntryInput, unit string) (*resolvedEntry, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required when no food_id or fdc_id is given")
	}
	if in.Nutrients == nil {
		return nil, invalid("nutrients", "are required when no food_id or fdc_id is given")
	}
	if err := checkNutrients(*in.Nutrients); err != nil {
		return nil, err
	}
	grams := in.Grams
	if grams <= 0 {
		// unknown units such as "slice" keep grams at zero
		grams, _ = nutrition.ToGrams(in.Quantity, unit, 0)
	}
	return &resolvedEntry{
		name:      name,
		quantity:  in.Quantity,
		unit:      unit,
		grams:     grams,
		nutrients: nutrition.Round(*in.Nutrients),
	}, nil
}

func checkNutrients(n models.Nutrients) error {
	values := map[string]float64{
		"calories": n.Calories, "protein": n.Protein, "carbs": n.Carbs, "fat": n.Fat,
		"fiber": n.Fiber, "sugar": n.Sugar, "sodium": n.Sodium,
	}
	for k, v := range values {
		if v < 0 {
			return invalid(k, "must not be negative")
		}
	}
	return nil
}
