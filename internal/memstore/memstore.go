// Package memstore keeps every table of the tracker in memory. It mirrors
// the Postgres repository closely enough to back service and handler tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"nutritrack/internal/models"
)

type Store struct {
	mu sync.RWMutex

	seq        int64
	users      map[int64]models.User
	foods      map[int64]models.Food
	mealTypes  []models.MealType
	meals      map[int64]models.Meal
	recipes    map[int64]models.Recipe
	daily      map[string]models.DailyNutrition
	plans      map[int64]models.UserPlan
	progress   map[string]models.DailyProgress
	mealPlans  map[int64]models.MealPlan
	payments   map[string]models.Payment
	mealFoodID map[int64]int64 // meal food id -> meal id

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:     map[int64]models.User{},
		foods:     map[int64]models.Food{},
		meals:     map[int64]models.Meal{},
		recipes:   map[int64]models.Recipe{},
		daily:     map[string]models.DailyNutrition{},
		plans:     map[int64]models.UserPlan{},
		progress:  map[string]models.DailyProgress{},
		mealPlans: map[int64]models.MealPlan{},
		payments:  map[string]models.Payment{},
		mealTypes: []models.MealType{
			{ID: 1, Name: "breakfast", DisplayOrder: 1},
			{ID: 2, Name: "lunch", DisplayOrder: 2},
			{ID: 3, Name: "dinner", DisplayOrder: 3},
			{ID: 4, Name: "snack", DisplayOrder: 4},
		},
		mealFoodID: map[int64]int64{},
		now:        time.Now,
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, models.ErrNotFound)
}

func dayKey(id int64, day string) string {
	return fmt.Sprintf("%d/%s", id, day)
}

// Users

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return fmt.Errorf("email %s: %w", user.Email, models.ErrConflict)
		}
	}
	user.ID = s.nextID()
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[user.ID]
	if !ok {
		return notFound("user")
	}
	user.Email, user.PasswordHash, user.IsPremium = old.Email, old.PasswordHash, old.IsPremium
	user.CreatedAt = old.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (s *Store) SetPremium(_ context.Context, userID int64, premium bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return notFound("user")
	}
	u.IsPremium = premium
	u.UpdatedAt = s.now()
	s.users[userID] = u
	return nil
}

func (s *Store) ListReminderUsers(_ context.Context, hour, minute int) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, u := range s.users {
		if u.RemindersEnabled && u.TelegramChatID != 0 && u.ReminderHour == hour && u.ReminderMinute == minute {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Foods

func (s *Store) SaveFood(_ context.Context, food *models.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if food.Aliases == nil {
		food.Aliases = []string{}
	}
	if food.FDCID != nil {
		for id, f := range s.foods {
			if f.FDCID != nil && *f.FDCID == *food.FDCID {
				food.ID, food.CreatedAt = id, f.CreatedAt
				s.foods[id] = copyFood(*food)
				return nil
			}
		}
	}
	food.ID = s.nextID()
	food.CreatedAt = s.now()
	s.foods[food.ID] = copyFood(*food)
	return nil
}

func copyFood(f models.Food) models.Food {
	f.Aliases = append([]string{}, f.Aliases...)
	return f
}

func visible(f models.Food, userID int64) bool {
	return f.UserID == nil || *f.UserID == userID
}

func (s *Store) GetFood(_ context.Context, userID, id int64) (*models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.foods[id]
	if !ok || !visible(f, userID) {
		return nil, notFound("food")
	}
	f = copyFood(f)
	return &f, nil
}

func (s *Store) GetFoodByFDCID(_ context.Context, fdcID int64) (*models.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.foods {
		if f.FDCID != nil && *f.FDCID == fdcID {
			f = copyFood(f)
			return &f, nil
		}
	}
	return nil, notFound("food")
}

func (s *Store) ListFoods(_ context.Context, userID int64, limit int) ([]models.Food, error) {
	return s.filterFoods(userID, limit, func(models.Food) bool { return true }), nil
}

func (s *Store) SearchFoods(_ context.Context, userID int64, term string, limit int) ([]models.Food, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	return s.filterFoods(userID, limit, func(f models.Food) bool {
		if strings.Contains(strings.ToLower(f.Name), term) {
			return true
		}
		for _, a := range f.Aliases {
			if strings.Contains(strings.ToLower(a), term) {
				return true
			}
		}
		return false
	}), nil
}

// filterFoods orders like the repository: own foods first, then by name.
func (s *Store) filterFoods(userID int64, limit int, match func(models.Food) bool) []models.Food {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Food{}
	for _, f := range s.foods {
		if visible(f, userID) && match(f) {
			out = append(out, copyFood(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].UserID == nil, out[j].UserID == nil
		if si != sj {
			return !si
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Meals

func (s *Store) ListMealTypes(context.Context) ([]models.MealType, error) {
	return append([]models.MealType{}, s.mealTypes...), nil
}

func (s *Store) CreateMeal(_ context.Context, meal *models.Meal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meal.ID = s.nextID()
	meal.CreatedAt = s.now()
	if meal.Foods == nil {
		meal.Foods = []models.MealFood{}
	}
	for i := range meal.Foods {
		s.stampMealFood(meal.ID, &meal.Foods[i])
	}
	s.meals[meal.ID] = copyMeal(*meal)
	return nil
}

func (s *Store) stampMealFood(mealID int64, f *models.MealFood) {
	f.ID = s.nextID()
	f.MealID = mealID
	f.CreatedAt = s.now()
	s.mealFoodID[f.ID] = mealID
}

func copyMeal(m models.Meal) models.Meal {
	m.Foods = append([]models.MealFood{}, m.Foods...)
	return m
}

func (s *Store) AddMealFood(_ context.Context, food *models.MealFood) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meals[food.MealID]
	if !ok {
		return notFound("meal")
	}
	s.stampMealFood(m.ID, food)
	m.Foods = append(m.Foods, *food)
	s.meals[m.ID] = m
	return nil
}

func (s *Store) GetMeal(_ context.Context, userID, id int64) (*models.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meals[id]
	if !ok || m.UserID != userID {
		return nil, notFound("meal")
	}
	m = copyMeal(m)
	return &m, nil
}

func (s *Store) ListMealsByDay(_ context.Context, userID int64, day string) ([]models.Meal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Meal{}
	for _, m := range s.meals {
		if m.UserID == userID && m.NutritionalDay == day {
			out = append(out, copyMeal(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoggedAt.Equal(out[j].LoggedAt) {
			return out[i].LoggedAt.Before(out[j].LoggedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteMeal(_ context.Context, userID, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meals[id]
	if !ok || m.UserID != userID {
		return "", notFound("meal")
	}
	for _, f := range m.Foods {
		delete(s.mealFoodID, f.ID)
	}
	delete(s.meals, id)
	return m.NutritionalDay, nil
}

func (s *Store) DeleteMealFood(_ context.Context, mealID, mealFoodID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mealFoodID[mealFoodID] != mealID {
		return notFound("meal food")
	}
	m := s.meals[mealID]
	foods := m.Foods[:0:0]
	for _, f := range m.Foods {
		if f.ID != mealFoodID {
			foods = append(foods, f)
		}
	}
	m.Foods = foods
	s.meals[mealID] = m
	delete(s.mealFoodID, mealFoodID)
	return nil
}

// Daily nutrition

func (s *Store) UpsertDailyNutrition(_ context.Context, dn *models.DailyNutrition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dn.UpdatedAt = s.now()
	s.daily[dayKey(dn.UserID, dn.Date)] = *dn
	return nil
}

func (s *Store) GetDailyNutrition(_ context.Context, userID int64, day string) (*models.DailyNutrition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dn, ok := s.daily[dayKey(userID, day)]
	if !ok {
		return nil, notFound("daily nutrition")
	}
	return &dn, nil
}

func (s *Store) ListDailyNutrition(_ context.Context, userID int64, from, to string) ([]models.DailyNutrition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.DailyNutrition{}
	for _, dn := range s.daily {
		// YYYY-MM-DD compares lexically
		if dn.UserID == userID && dn.Date >= from && dn.Date <= to {
			out = append(out, dn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Recipes

func (s *Store) CreateRecipe(_ context.Context, recipe *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	recipe.ID = s.nextID()
	recipe.CreatedAt = s.now()
	for i := range recipe.Ingredients {
		recipe.Ingredients[i].ID = s.nextID()
		recipe.Ingredients[i].RecipeID = recipe.ID
	}
	s.recipes[recipe.ID] = copyRecipe(*recipe)
	return nil
}

func copyRecipe(r models.Recipe) models.Recipe {
	r.Tags = append([]string{}, r.Tags...)
	r.Ingredients = append([]models.RecipeIngredient{}, r.Ingredients...)
	return r
}

func (s *Store) GetRecipe(_ context.Context, userID, id int64) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipes[id]
	if !ok || r.UserID != userID {
		return nil, notFound("recipe")
	}
	r = copyRecipe(r)
	return &r, nil
}

func (s *Store) ListRecipes(_ context.Context, userID int64) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Recipe{}
	for _, r := range s.recipes {
		if r.UserID == userID {
			out = append(out, copyRecipe(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) DeleteRecipe(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipes[id]
	if !ok || r.UserID != userID {
		return notFound("recipe")
	}
	delete(s.recipes, id)
	return nil
}

// Plans

func (s *Store) CreatePlan(_ context.Context, plan *models.UserPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan.ID = s.nextID()
	plan.CreatedAt = s.now()
	plan.UpdatedAt = plan.CreatedAt
	if plan.IsActive {
		s.deactivate(plan.UserID, plan.Type, plan.ID)
	}
	s.plans[plan.ID] = copyPlan(*plan)
	return nil
}

func copyPlan(p models.UserPlan) models.UserPlan {
	p.Data = append(models.JSON(nil), p.Data...)
	return p
}

func (s *Store) deactivate(userID int64, planType string, keep int64) {
	for id, p := range s.plans {
		if p.UserID == userID && p.Type == planType && p.IsActive && id != keep {
			p.IsActive = false
			p.UpdatedAt = s.now()
			s.plans[id] = p
		}
	}
}

func (s *Store) ActivatePlan(_ context.Context, userID, id int64) (*models.UserPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok || p.UserID != userID {
		return nil, notFound("plan")
	}
	s.deactivate(userID, p.Type, id)
	p.IsActive = true
	p.UpdatedAt = s.now()
	s.plans[id] = p
	p = copyPlan(p)
	return &p, nil
}

func (s *Store) GetPlan(_ context.Context, userID, id int64) (*models.UserPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok || p.UserID != userID {
		return nil, notFound("plan")
	}
	p = copyPlan(p)
	return &p, nil
}

func (s *Store) GetActivePlan(_ context.Context, userID int64, planType string) (*models.UserPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans {
		if p.UserID == userID && p.Type == planType && p.IsActive {
			p = copyPlan(p)
			return &p, nil
		}
	}
	return nil, notFound("active plan")
}

func (s *Store) ListPlans(_ context.Context, userID int64, planType string) ([]models.UserPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.UserPlan{}
	for _, p := range s.plans {
		if p.UserID == userID && (planType == "" || p.Type == planType) {
			out = append(out, copyPlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) DeletePlan(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok || p.UserID != userID {
		return notFound("plan")
	}
	delete(s.plans, id)
	for k, dp := range s.progress {
		if dp.UserPlanID == id {
			delete(s.progress, k)
		}
	}
	return nil
}

func (s *Store) UpsertDailyProgress(_ context.Context, p *models.DailyProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey(p.UserPlanID, p.Date)
	if old, ok := s.progress[key]; ok {
		p.ID = old.ID
	} else {
		p.ID = s.nextID()
	}
	p.UpdatedAt = s.now()
	s.progress[key] = *p
	return nil
}

func (s *Store) GetDailyProgress(_ context.Context, planID int64, day string) (*models.DailyProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.progress[dayKey(planID, day)]
	if !ok {
		return nil, notFound("daily progress")
	}
	return &p, nil
}

func (s *Store) SaveMealPlan(_ context.Context, plan *models.MealPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan.ID = s.nextID()
	plan.CreatedAt = s.now()
	s.mealPlans[plan.ID] = *plan
	return nil
}

func (s *Store) ListMealPlans(_ context.Context, userID int64) ([]models.MealPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.MealPlan{}
	for _, p := range s.mealPlans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Payments

func (s *Store) SavePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[payment.StripeSessionID]; ok {
		return fmt.Errorf("payment %s: %w", payment.StripeSessionID, models.ErrConflict)
	}
	payment.ID = s.nextID()
	payment.CreatedAt = s.now()
	payment.UpdatedAt = payment.CreatedAt
	s.payments[payment.StripeSessionID] = *payment
	return nil
}

func (s *Store) GetPaymentBySessionID(_ context.Context, sessionID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[sessionID]
	if !ok {
		return nil, notFound("payment")
	}
	return &p, nil
}

func (s *Store) UpdatePaymentStatus(_ context.Context, sessionID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[sessionID]
	if !ok {
		return notFound("payment")
	}
	p.Status = status
	p.UpdatedAt = s.now()
	s.payments[sessionID] = p
	return nil
}

func (s *Store) CompletePayment(_ context.Context, sessionID string, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[sessionID]
	if !ok {
		return notFound("payment")
	}
	u, ok := s.users[userID]
	if !ok {
		return notFound("user")
	}
	now := s.now()
	p.Status, p.UpdatedAt = models.PaymentPaid, now
	u.IsPremium, u.UpdatedAt = true, now
	s.payments[sessionID] = p
	s.users[userID] = u
	return nil
}
