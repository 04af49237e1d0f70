package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"nutritrack/internal/gpt"
	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
)

const (
	maxChatHistory  = 20
	maxMessageChars = 4000
	planTitleDiet   = "Meal plan"
	planTitleWork   = "Workout plan"
)

type ChatInput struct {
	Message string        `json:"message"`
	History []gpt.Message `json:"history"`
}

// aiError hides provider failures behind ErrAIUnavailable and logs the cause.
func (s *Service) aiError(op string, err error) error {
	if errors.Is(err, gpt.ErrNotConfigured) {
		return ErrNotConfigured
	}
	s.logger.Errorw("AI request failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, ErrAIUnavailable)
}

func (s *Service) requireAI() error {
	if s.ai == nil {
		return ErrNotConfigured
	}
	return nil
}

// Chat answers a nutrition question with the user's profile, goals and
// today's intake as context.
func (s *Service) Chat(ctx context.Context, userID int64, in ChatInput) (string, error) {
	if err := s.requireAI(); err != nil {
		return "", err
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return "", invalid("message", "is required")
	}
	if utf8.RuneCountInString(msg) > maxMessageChars {
		return "", invalid("message", "must have at most %d characters", maxMessageChars)
	}
	history := in.History
	if len(history) > maxChatHistory {
		history = history[len(history)-maxChatHistory:]
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	summary, err := s.DailyNutrition(ctx, userID, "")
	if err != nil {
		return "", err
	}
	userContext := gpt.Profile(user) + fmt.Sprintf(
		"- Eaten today (%s): %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat in %d meals\n",
		summary.Date, summary.Totals.Calories, summary.Totals.Protein, summary.Totals.Carbs,
		summary.Totals.Fat, summary.MealCount)

	reply, err := s.ai.Chat(ctx, userContext, history, msg)
	if err != nil {
		return "", s.aiError("chat", err)
	}
	return reply, nil
}

func (s *Service) AnalyzeMeal(ctx context.Context, description string) (*gpt.MealAnalysis, error) {
	if err := s.requireAI(); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, invalid("description", "is required")
	}
	out, err := s.ai.AnalyzeMeal(ctx, description)
	if err != nil {
		return nil, s.aiError("analyze meal", err)
	}
	for i := range out.Foods {
		out.Foods[i].Nutrients = nutrition.Round(out.Foods[i].Nutrients)
	}
	out.Totals = nutrition.Round(out.Totals)
	return out, nil
}

func (s *Service) SuggestRecipes(ctx context.Context, userID int64, ingredients []string, preferences string) ([]gpt.RecipeSuggestion, error) {
	if err := s.requireAI(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	clean := make([]string, 0, len(ingredients))
	for _, i := range ingredients {
		if i = strings.TrimSpace(i); i != "" {
			clean = append(clean, i)
		}
	}
	out, err := s.ai.SuggestRecipes(ctx, user, clean, strings.TrimSpace(preferences))
	if err != nil {
		return nil, s.aiError("suggest recipes", err)
	}
	return out, nil
}

// PersonalizedRecommendations feeds the last 7 nutritional days to the AI.
func (s *Service) PersonalizedRecommendations(ctx context.Context, userID int64) ([]gpt.Recommendation, error) {
	if err := s.requireAI(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	week, err := s.WeeklyProgress(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, d := range week.Days {
		if d.MealCount == 0 {
			fmt.Fprintf(&b, "%s: nothing logged\n", d.Date)
			continue
		}
		fmt.Fprintf(&b, "%s: %.0f kcal, %.0f g protein, %.0f g carbs, %.0f g fat (goal %.0f kcal)\n",
			d.Date, d.Calories, d.Protein, d.Carbs, d.Fat, d.GoalCalories)
	}

	out, err := s.ai.Recommendations(ctx, user, b.String())
	if err != nil {
		return nil, s.aiError("recommendations", err)
	}
	return out, nil
}

func (s *Service) GenerateMealPlan(ctx context.Context, userID int64, preferences string) (*models.UserPlan, error) {
	return s.generatePlan(ctx, userID, models.PlanTypeDiet, preferences)
}

func (s *Service) GenerateWorkoutPlan(ctx context.Context, userID int64, preferences string) (*models.UserPlan, error) {
	return s.generatePlan(ctx, userID, models.PlanTypeWorkout, preferences)
}

// generatePlan asks the AI for a plan and stores it as the user's active
// plan of that type. Diet plans are also kept as a legacy meal plan.
func (s *Service) generatePlan(ctx context.Context, userID int64, planType, preferences string) (*models.UserPlan, error) {
	if err := s.requireAI(); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.requirePremium && !user.IsPremium {
		return nil, ErrPremiumRequired
	}

	var generated *gpt.Plan
	title := planTitleDiet
	preferences = strings.TrimSpace(preferences)
	if planType == models.PlanTypeDiet {
		generated, err = s.ai.GenerateMealPlan(ctx, user, preferences)
	} else {
		title = planTitleWork
		generated, err = s.ai.GenerateWorkoutPlan(ctx, user, preferences)
	}
	if err != nil {
		return nil, s.aiError("generate "+planType+" plan", err)
	}
	if generated.Title != "" {
		title = generated.Title
	}

	plan := &models.UserPlan{
		UserID:   userID,
		Type:     planType,
		Title:    title,
		Data:     models.JSON(generated.Data),
		IsActive: true,
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if planType == models.PlanTypeDiet {
		legacy := &models.MealPlan{UserID: userID, Title: title, PlanText: string(generated.Data)}
		if err := s.store.SaveMealPlan(ctx, legacy); err != nil {
			s.logger.Warnw("Failed to save legacy meal plan", "user_id", userID, "error", err)
		}
	}
	s.logger.Infow("Plan generated", "user_id", userID, "type", planType, "plan_id", plan.ID)
	return plan, nil
}
