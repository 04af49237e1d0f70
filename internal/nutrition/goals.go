package nutrition

import (
	"fmt"
	"math"
	"strings"
)

// Activity multipliers applied to BMR.
var ActivityFactors = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Caloric offsets per goal.
var GoalOffsets = map[string]float64{
	"lose":     -500,
	"maintain": 0,
	"gain":     300,
}

const (
	proteinShare = 0.25
	fatShare     = 0.25
	carbsShare   = 0.50

	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
	kcalPerGramCarbs   = 4
)

type GoalInput struct {
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	Age           int     `json:"age"`
	Sex           string  `json:"sex,omitempty"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

type Goals struct {
	BMR           float64 `json:"bmr"`
	TDEE          float64 `json:"tdee"`
	DailyCalories int     `json:"daily_calories"`
	DailyProtein  int     `json:"daily_protein"`
	DailyCarbs    int     `json:"daily_carbs"`
	DailyFat      int     `json:"daily_fat"`
}

// BMR is the Mifflin-St Jeor basal metabolic rate. Only "female" switches
// the sex constant; anything else uses +5.
func BMR(weightKg, heightCm float64, age int, sex string) float64 {
	s := 5.0
	if strings.EqualFold(sex, "female") {
		s = -161
	}
	return 10*weightKg + 6.25*heightCm - 5*float64(age) + s
}

// CalculateGoals turns a body profile into daily calorie and macro targets.
func CalculateGoals(in GoalInput) (Goals, error) {
	if in.WeightKg <= 0 || in.HeightCm <= 0 || in.Age <= 0 {
		return Goals{}, fmt.Errorf("weight, height and age must be positive")
	}
	factor, ok := ActivityFactors[in.ActivityLevel]
	if !ok {
		return Goals{}, fmt.Errorf("unknown activity level %q", in.ActivityLevel)
	}
	offset, ok := GoalOffsets[in.Goal]
	if !ok {
		return Goals{}, fmt.Errorf("unknown goal %q", in.Goal)
	}

	bmr := BMR(in.WeightKg, in.HeightCm, in.Age, in.Sex)
	tdee := bmr * factor
	calories := int(math.Round(tdee + offset))
	protein, fat, carbs := MacroSplit(calories)

	return Goals{
		BMR:           bmr,
		TDEE:          tdee,
		DailyCalories: calories,
		DailyProtein:  protein,
		DailyFat:      fat,
		DailyCarbs:    carbs,
	}, nil
}

// MacroSplit divides a calorie target into protein, fat and carb grams
// using the 25/25/50 split.
func MacroSplit(calories int) (protein, fat, carbs int) {
	c := float64(calories)
	protein = int(math.Round(c * proteinShare / kcalPerGramProtein))
	fat = int(math.Round(c * fatShare / kcalPerGramFat))
	carbs = int(math.Round(c * carbsShare / kcalPerGramCarbs))
	return protein, fat, carbs
}
