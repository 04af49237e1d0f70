package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"nutritrack/internal/models"
)

type SavePlanInput struct {
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Data     json.RawMessage `json:"data"`
	Activate bool            `json:"activate"`
}

type ProgressInput struct {
	Date      string           `json:"date"`
	Completed models.Checklist `json:"completed"`
	Notes     string           `json:"notes"`
}

func checkPlanType(planType string, optional bool) error {
	if planType == "" && optional {
		return nil
	}
	if !models.ValidPlanType(planType) {
		return invalid("type", "must be %s or %s", models.PlanTypeDiet, models.PlanTypeWorkout)
	}
	return nil
}

func (s *Service) ListPlans(ctx context.Context, userID int64, planType string) ([]models.UserPlan, error) {
	if err := checkPlanType(planType, true); err != nil {
		return nil, err
	}
	return s.store.ListPlans(ctx, userID, planType)
}

func (s *Service) GetActivePlan(ctx context.Context, userID int64, planType string) (*models.UserPlan, error) {
	if err := checkPlanType(planType, false); err != nil {
		return nil, err
	}
	return s.store.GetActivePlan(ctx, userID, planType)
}

func (s *Service) SavePlan(ctx context.Context, userID int64, in SavePlanInput) (*models.UserPlan, error) {
	if err := checkPlanType(in.Type, false); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	if len(in.Data) == 0 || !json.Valid(in.Data) {
		return nil, invalid("data", "must be a JSON document")
	}
	plan := &models.UserPlan{
		UserID:   userID,
		Type:     in.Type,
		Title:    title,
		Data:     models.JSON(in.Data),
		IsActive: in.Activate,
	}
	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) ActivatePlan(ctx context.Context, userID, planID int64) (*models.UserPlan, error) {
	return s.store.ActivatePlan(ctx, userID, planID)
}

func (s *Service) DeletePlan(ctx context.Context, userID, planID int64) error {
	return s.store.DeletePlan(ctx, userID, planID)
}

// GetProgress returns the checklist of a plan for a day. A day without
// records yields an empty checklist.
func (s *Service) GetProgress(ctx context.Context, userID, planID int64, day string) (*models.DailyProgress, error) {
	day, err := s.resolveDay(day)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	p, err := s.store.GetDailyProgress(ctx, planID, day)
	if errors.Is(err, models.ErrNotFound) {
		return &models.DailyProgress{UserPlanID: planID, UserID: userID, Date: day, Completed: models.Checklist{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProgress(ctx context.Context, userID, planID int64, in ProgressInput) (*models.DailyProgress, error) {
	day, err := s.resolveDay(in.Date)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	completed := in.Completed
	if completed == nil {
		completed = models.Checklist{}
	}
	p := &models.DailyProgress{
		UserPlanID: planID,
		UserID:     userID,
		Date:       day,
		Completed:  completed,
		Notes:      strings.TrimSpace(in.Notes),
	}
	if err := s.store.UpsertDailyProgress(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListLegacyMealPlans(ctx context.Context, userID int64) ([]models.MealPlan, error) {
	return s.store.ListMealPlans(ctx, userID)
}
