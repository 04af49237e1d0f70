package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"nutritrack/internal/models"
)

const nutritionistPrompt = "You are an experienced nutritionist. Give practical, safe advice " +
	"grounded in the user's profile and targets. Answer in the user's language."

type AnalyzedFood struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Grams    float64 `json:"grams"`
	models.Nutrients
}

type MealAnalysis struct {
	Foods  []AnalyzedFood   `json:"foods"`
	Totals models.Nutrients `json:"totals"`
}

type SuggestedIngredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type RecipeSuggestion struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Ingredients  []SuggestedIngredient `json:"ingredients"`
	Instructions string                `json:"instructions"`
	Servings     int                   `json:"servings"`
	PrepMinutes  int                   `json:"prep_minutes"`
	// per serving
	models.Nutrients
}

type Recommendation struct {
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Category string `json:"category"`
}

// Plan is a generated diet or workout plan. Data holds the raw JSON document.
type Plan struct {
	Title string
	Data  json.RawMessage
}

// Profile renders the parts of a user the prompts rely on.
func Profile(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Sex: %s\n", orUnknown(u.Sex))
	if u.Age > 0 {
		fmt.Fprintf(&b, "- Age: %d\n", u.Age)
	}
	if u.WeightKg > 0 {
		fmt.Fprintf(&b, "- Weight: %.1f kg\n", u.WeightKg)
	}
	if u.HeightCm > 0 {
		fmt.Fprintf(&b, "- Height: %.0f cm\n", u.HeightCm)
	}
	fmt.Fprintf(&b, "- Activity level: %s\n", orUnknown(u.ActivityLevel))
	fmt.Fprintf(&b, "- Goal: %s weight\n", orUnknown(u.Goal))
	fmt.Fprintf(&b, "- Daily targets: %d kcal, %d g protein, %d g carbs, %d g fat\n",
		u.DailyCalories, u.DailyProtein, u.DailyCarbs, u.DailyFat)
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "not informed"
	}
	return s
}

// Chat answers a free-text message. userContext is appended to the system
// prompt, typically the profile and today's totals.
func (c *Client) Chat(ctx context.Context, userContext string, history []Message, message string) (string, error) {
	return c.complete(ctx, request{
		system:    nutritionistPrompt + "\n\nUser context:\n" + userContext,
		history:   history,
		prompt:    message,
		maxTokens: 800,
	})
}

func (c *Client) AnalyzeMeal(ctx context.Context, description string) (*MealAnalysis, error) {
	prompt := "Break down this meal into individual foods with estimated portions and nutrients.\n" +
		"Meal: " + description + "\n\n" +
		`Reply only with JSON: {"foods":[{"name":"","quantity":0,"unit":"g","grams":0,` +
		`"calories":0,"protein":0,"carbs":0,"fat":0,"fiber":0,"sugar":0,"sodium":0}]}. ` +
		"Nutrient values are for the stated portion; sodium in mg, everything else in g or kcal."

	var out MealAnalysis
	err := c.completeJSON(ctx, request{system: nutritionistPrompt, prompt: prompt, maxTokens: 1200}, &out)
	if err != nil {
		return nil, err
	}
	var totals models.Nutrients
	for _, f := range out.Foods {
		totals = totals.Add(f.Nutrients)
	}
	out.Totals = totals
	return &out, nil
}

func (c *Client) SuggestRecipes(ctx context.Context, user *models.User, ingredients []string, preferences string) ([]RecipeSuggestion, error) {
	prompt := "Suggest 3 recipes for this person.\n" + Profile(user)
	if len(ingredients) > 0 {
		prompt += "Available ingredients: " + strings.Join(ingredients, ", ") + "\n"
	}
	if preferences != "" {
		prompt += "Preferences: " + preferences + "\n"
	}
	prompt += `Reply only with JSON: {"recipes":[{"name":"","description":"","ingredients":[{"name":"","quantity":0,"unit":"g"}],` +
		`"instructions":"","servings":1,"prep_minutes":0,"calories":0,"protein":0,"carbs":0,"fat":0}]}. ` +
		"Nutrients are per serving."

	var out struct {
		Recipes []RecipeSuggestion `json:"recipes"`
	}
	err := c.completeJSON(ctx, request{system: nutritionistPrompt, prompt: prompt, maxTokens: 2000}, &out)
	if err != nil {
		return nil, err
	}
	return out.Recipes, nil
}

// Recommendations turns a summary of recent intake into actionable advice.
func (c *Client) Recommendations(ctx context.Context, user *models.User, intake string) ([]Recommendation, error) {
	prompt := "Profile:\n" + Profile(user) + "\nLast days of intake:\n" + intake + "\n" +
		"Give 3 to 5 personalized recommendations. " +
		`Reply only with JSON: {"recommendations":[{"title":"","detail":"","category":"nutrition|hydration|habits|training"}]}`

	var out struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	err := c.completeJSON(ctx, request{system: nutritionistPrompt, prompt: prompt, maxTokens: 1000}, &out)
	if err != nil {
		return nil, err
	}
	return out.Recommendations, nil
}

func (c *Client) GenerateMealPlan(ctx context.Context, user *models.User, preferences string) (*Plan, error) {
	prompt := "Create a personalized 7-day meal plan for a person with the following parameters:\n" +
		Profile(user)
	if preferences != "" {
		prompt += "Preferences and restrictions: " + preferences + "\n"
	}
	prompt += "Each day must hit the daily targets. " +
		`Reply only with JSON: {"title":"","days":[{"day":1,"meals":[{"type":"breakfast","name":"","time":"08:00",` +
		`"foods":[""],"calories":0,"protein":0,"carbs":0,"fat":0}]}],"hydration":"","tips":[""]}`

	return c.generatePlan(ctx, prompt)
}

func (c *Client) GenerateWorkoutPlan(ctx context.Context, user *models.User, preferences string) (*Plan, error) {
	prompt := "Create a one-week workout plan for a person with the following parameters:\n" +
		Profile(user)
	if preferences != "" {
		prompt += "Preferences, equipment and limitations: " + preferences + "\n"
	}
	prompt += `Reply only with JSON: {"title":"","days":[{"day":1,"focus":"","exercises":[{"name":"","sets":0,` +
		`"reps":"","rest_seconds":0}],"duration_minutes":0}],"tips":[""]}`

	return c.generatePlan(ctx, prompt)
}

func (c *Client) generatePlan(ctx context.Context, prompt string) (*Plan, error) {
	var data json.RawMessage
	req := request{
		system:    "You are an experienced nutritionist and personal trainer.",
		prompt:    prompt,
		maxTokens: 3000,
	}
	if err := c.completeJSON(ctx, req, &data); err != nil {
		return nil, err
	}

	var head struct {
		Title string `json:"title"`
	}
	_ = json.Unmarshal(data, &head)
	return &Plan{Title: head.Title, Data: data}, nil
}
