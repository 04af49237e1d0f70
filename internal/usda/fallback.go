package usda

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"nutritrack/internal/models"
)

//go:embed data/fallback_foods.yaml
var fallbackYAML []byte

type fallbackFood struct {
	Name         string   `yaml:"name"`
	Aliases      []string `yaml:"aliases"`
	Calories     float64  `yaml:"calories"`
	Protein      float64  `yaml:"protein"`
	Carbs        float64  `yaml:"carbs"`
	Fat          float64  `yaml:"fat"`
	Fiber        float64  `yaml:"fiber"`
	Sugar        float64  `yaml:"sugar"`
	Sodium       float64  `yaml:"sodium"`
	ServingSizeG float64  `yaml:"serving_size_g"`
	ServingUnit  string   `yaml:"serving_unit"`
}

// Fallback is the static food list served when the USDA API fails.
type Fallback struct {
	foods []models.Food
}

func NewFallback() (*Fallback, error) {
	var raw []fallbackFood
	if err := yaml.Unmarshal(fallbackYAML, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fallback foods: %w", err)
	}

	foods := make([]models.Food, 0, len(raw))
	for _, f := range raw {
		serving, unit := f.ServingSizeG, f.ServingUnit
		if serving <= 0 {
			serving, unit = 100, "g"
		}
		foods = append(foods, models.Food{
			Name:         f.Name,
			Source:       models.FoodSourceUSDA,
			ServingSizeG: serving,
			ServingUnit:  unit,
			Aliases:      f.Aliases,
			Nutrients: models.Nutrients{
				Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat,
				Fiber: f.Fiber, Sugar: f.Sugar, Sodium: f.Sodium,
			},
		})
	}
	return &Fallback{foods: foods}, nil
}

// Search returns foods whose name or an alias contains a query, or
// appears as whole words inside it. Several queries may be passed, e.g. the
// original and its translation.
func (f *Fallback) Search(queries ...string) []models.Food {
	var out []models.Food
	for _, food := range f.foods {
		for _, q := range queries {
			if q = Fold(q); q != "" && matches(food, q) {
				out = append(out, food)
				break
			}
		}
	}
	return out
}

func matches(food models.Food, q string) bool {
	hay := []string{Fold(food.Name)}
	for _, a := range food.Aliases {
		hay = append(hay, Fold(a))
	}
	for _, h := range hay {
		if strings.Contains(h, q) || strings.Contains(" "+q+" ", " "+h+" ") {
			return true
		}
	}
	return false
}
