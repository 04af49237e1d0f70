package nutrition

import (
	"fmt"
	"math"
	"strings"

	"nutritrack/internal/models"
)

var gramsPerUnit = map[string]float64{
	"g":    1,
	"gram": 1,
	"kg":   1000,
	"mg":   0.001,
	"ml":   1,
	"l":    1000,
	"oz":   28.3495,
	"lb":   453.592,
	"cup":  240,
	"tbsp": 15,
	"tsp":  5,
}

// ToGrams converts a quantity to grams. Liquids are treated as water
// density. Serving-like units use servingSizeG, or 100g when unknown.
func ToGrams(quantity float64, unit string, servingSizeG float64) (float64, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive")
	}
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, "s")
	if u == "" {
		u = "g"
	}
	switch u {
	case "serving", "unit", "piece", "portion":
		if servingSizeG <= 0 {
			servingSizeG = 100
		}
		return quantity * servingSizeG, nil
	}
	f, ok := gramsPerUnit[u]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", unit)
	}
	return quantity * f, nil
}

// Scale converts per-100g values to the amount in grams.
func Scale(per100 models.Nutrients, grams float64) models.Nutrients {
	k := grams / 100
	return Round(models.Nutrients{
		Calories: per100.Calories * k,
		Protein:  per100.Protein * k,
		Carbs:    per100.Carbs * k,
		Fat:      per100.Fat * k,
		Fiber:    per100.Fiber * k,
		Sugar:    per100.Sugar * k,
		Sodium:   per100.Sodium * k,
	})
}

// Per100 converts absolute values for grams into per-100g values.
func Per100(n models.Nutrients, grams float64) models.Nutrients {
	if grams <= 0 {
		return models.Nutrients{}
	}
	return Scale(n, 100*100/grams)
}

// Sum adds a list of nutrient sets.
func Sum(items []models.Nutrients) models.Nutrients {
	var t models.Nutrients
	for _, n := range items {
		t = t.Add(n)
	}
	return Round(t)
}

// Round keeps two decimals on every field.
func Round(n models.Nutrients) models.Nutrients {
	return models.Nutrients{
		Calories: round2(n.Calories),
		Protein:  round2(n.Protein),
		Carbs:    round2(n.Carbs),
		Fat:      round2(n.Fat),
		Fiber:    round2(n.Fiber),
		Sugar:    round2(n.Sugar),
		Sodium:   round2(n.Sodium),
	}
}

// Percent of target reached, 0 when no target is set.
func Percent(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return round2(actual / target * 100)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
