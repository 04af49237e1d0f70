package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"nutritrack/internal/auth"
	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
)

const (
	minPasswordLen      = 6
	defaultCalories     = 2000
	defaultReminderHour = 20
	revokedKeyPrefix    = "auth:revoked:"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserPatch carries the profile fields to change; nil means unchanged.
type UserPatch struct {
	Name                *string  `json:"name"`
	Age                 *int     `json:"age"`
	Sex                 *string  `json:"sex"`
	WeightKg            *float64 `json:"weight_kg"`
	HeightCm            *float64 `json:"height_cm"`
	ActivityLevel       *string  `json:"activity_level"`
	Goal                *string  `json:"goal"`
	OnboardingCompleted *bool    `json:"onboarding_completed"`
}

// GoalsInput either sets explicit targets or, with Calculate, derives them
// from the stored profile.
type GoalsInput struct {
	Calculate     bool `json:"calculate"`
	DailyCalories *int `json:"daily_calories"`
	DailyProtein  *int `json:"daily_protein"`
	DailyCarbs    *int `json:"daily_carbs"`
	DailyFat      *int `json:"daily_fat"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, invalid("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		return nil, invalid("password", "must have at least %d characters", minPasswordLen)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	protein, fat, carbs := nutrition.MacroSplit(defaultCalories)
	user := &models.User{
		Email:         email,
		PasswordHash:  hash,
		Name:          strings.TrimSpace(in.Name),
		ActivityLevel: "moderate",
		Goal:          models.GoalMaintain,
		DailyCalories: defaultCalories,
		DailyProtein:  protein,
		DailyCarbs:    carbs,
		DailyFat:      fat,
		ReminderHour:  defaultReminderHour,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Infow("User registered", "user_id", user.ID)
	return s.issueToken(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(user)
}

func (s *Service) issueToken(user *models.User) (*AuthResult, error) {
	token, claims, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	_, revoked, err := s.cache.Get(ctx, revokedKeyPrefix+claims.ID)
	if err != nil {
		s.logger.Warnw("Revocation lookup failed", "error", err)
	}
	if revoked {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedKeyPrefix+claims.ID, []byte("1"), ttl)
}

func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

func (s *Service) UpdateUser(ctx context.Context, userID int64, p UserPatch) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		user.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		if *p.Age < 1 || *p.Age > 120 {
			return nil, invalid("age", "must be between 1 and 120")
		}
		user.Age = *p.Age
	}
	if p.Sex != nil {
		sex := strings.ToLower(strings.TrimSpace(*p.Sex))
		if sex != "" && sex != "male" && sex != "female" {
			return nil, invalid("sex", "must be male or female")
		}
		user.Sex = sex
	}
	if p.WeightKg != nil {
		if *p.WeightKg <= 0 || *p.WeightKg > 500 {
			return nil, invalid("weight_kg", "must be between 0 and 500")
		}
		user.WeightKg = *p.WeightKg
	}
	if p.HeightCm != nil {
		if *p.HeightCm <= 0 || *p.HeightCm > 300 {
			return nil, invalid("height_cm", "must be between 0 and 300")
		}
		user.HeightCm = *p.HeightCm
	}
	if p.ActivityLevel != nil {
		if _, ok := nutrition.ActivityFactors[*p.ActivityLevel]; !ok {
			return nil, invalid("activity_level", "unknown activity level %q", *p.ActivityLevel)
		}
		user.ActivityLevel = *p.ActivityLevel
	}
	if p.Goal != nil {
		if _, ok := nutrition.GoalOffsets[*p.Goal]; !ok {
			return nil, invalid("goal", "unknown goal %q", *p.Goal)
		}
		user.Goal = *p.Goal
	}
	if p.OnboardingCompleted != nil {
		user.OnboardingCompleted = *p.OnboardingCompleted
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateGoals stores new daily targets and refreshes today's rollup so the
// dashboard reflects them immediately. The computed goals are returned when
// Calculate is set.
func (s *Service) UpdateGoals(ctx context.Context, userID int64, in GoalsInput) (*models.User, *nutrition.Goals, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var computed *nutrition.Goals
	if in.Calculate {
		g, err := s.CalculateGoals(nutrition.GoalInput{
			WeightKg: user.WeightKg, HeightCm: user.HeightCm, Age: user.Age, Sex: user.Sex,
			ActivityLevel: user.ActivityLevel, Goal: user.Goal,
		})
		if err != nil {
			return nil, nil, err
		}
		user.DailyCalories, user.DailyProtein = g.DailyCalories, g.DailyProtein
		user.DailyCarbs, user.DailyFat = g.DailyCarbs, g.DailyFat
		computed = &g
	} else {
		fields := []struct {
			name string
			in   *int
			dst  *int
		}{
			{"daily_calories", in.DailyCalories, &user.DailyCalories},
			{"daily_protein", in.DailyProtein, &user.DailyProtein},
			{"daily_carbs", in.DailyCarbs, &user.DailyCarbs},
			{"daily_fat", in.DailyFat, &user.DailyFat},
		}
		changed := false
		for _, f := range fields {
			if f.in == nil {
				continue
			}
			if *f.in <= 0 {
				return nil, nil, invalid(f.name, "must be positive")
			}
			*f.dst = *f.in
			changed = true
		}
		if !changed {
			return nil, nil, invalid("", "no goal values provided")
		}
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, nil, err
	}
	if _, err := s.recompute(ctx, user, s.today()); err != nil {
		s.logger.Warnw("Failed to refresh daily nutrition", "user_id", userID, "error", err)
	}
	return user, computed, nil
}

// CalculateGoals runs the goal calculator, reporting bad input as a
// ValidationError.
func (s *Service) CalculateGoals(in nutrition.GoalInput) (nutrition.Goals, error) {
	g, err := nutrition.CalculateGoals(in)
	if err != nil {
		return nutrition.Goals{}, &ValidationError{Message: err.Error()}
	}
	return g, nil
}
