// Package service implements the API's use cases on top of the store,
// the food database, the AI provider and billing.
package service

import (
	"context"
	"time"

	"nutritrack/internal/auth"
	"nutritrack/internal/cache"
	"nutritrack/internal/gpt"
	"nutritrack/internal/models"
	"nutritrack/internal/nutrition"
	"nutritrack/internal/usda"
	"nutritrack/pkg/logger"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	SetPremium(ctx context.Context, userID int64, premium bool) error
	ListReminderUsers(ctx context.Context, hour, minute int) ([]models.User, error)
}

type FoodStore interface {
	SaveFood(ctx context.Context, food *models.Food) error
	GetFood(ctx context.Context, userID, id int64) (*models.Food, error)
	GetFoodByFDCID(ctx context.Context, fdcID int64) (*models.Food, error)
	ListFoods(ctx context.Context, userID int64, limit int) ([]models.Food, error)
	SearchFoods(ctx context.Context, userID int64, term string, limit int) ([]models.Food, error)
}

type MealStore interface {
	ListMealTypes(ctx context.Context) ([]models.MealType, error)
	CreateMeal(ctx context.Context, meal *models.Meal) error
	AddMealFood(ctx context.Context, food *models.MealFood) error
	GetMeal(ctx context.Context, userID, id int64) (*models.Meal, error)
	ListMealsByDay(ctx context.Context, userID int64, day string) ([]models.Meal, error)
	DeleteMeal(ctx context.Context, userID, id int64) (string, error)
	DeleteMealFood(ctx context.Context, mealID, mealFoodID int64) error
}

type NutritionStore interface {
	UpsertDailyNutrition(ctx context.Context, dn *models.DailyNutrition) error
	GetDailyNutrition(ctx context.Context, userID int64, day string) (*models.DailyNutrition, error)
	ListDailyNutrition(ctx context.Context, userID int64, from, to string) ([]models.DailyNutrition, error)
}

type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipe(ctx context.Context, userID, id int64) (*models.Recipe, error)
	ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id int64) error
}

type PlanStore interface {
	CreatePlan(ctx context.Context, plan *models.UserPlan) error
	ActivatePlan(ctx context.Context, userID, id int64) (*models.UserPlan, error)
	GetPlan(ctx context.Context, userID, id int64) (*models.UserPlan, error)
	GetActivePlan(ctx context.Context, userID int64, planType string) (*models.UserPlan, error)
	ListPlans(ctx context.Context, userID int64, planType string) ([]models.UserPlan, error)
	DeletePlan(ctx context.Context, userID, id int64) error
	UpsertDailyProgress(ctx context.Context, p *models.DailyProgress) error
	GetDailyProgress(ctx context.Context, planID int64, day string) (*models.DailyProgress, error)
	SaveMealPlan(ctx context.Context, plan *models.MealPlan) error
	ListMealPlans(ctx context.Context, userID int64) ([]models.MealPlan, error)
}

type PaymentStore interface {
	SavePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentBySessionID(ctx context.Context, sessionID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, sessionID, status string) error
	// CompletePayment marks the payment paid and the user premium atomically.
	CompletePayment(ctx context.Context, sessionID string, userID int64) error
}

// Store is everything the service persists. *db.PostgresDB implements it.
type Store interface {
	UserStore
	FoodStore
	MealStore
	NutritionStore
	RecipeStore
	PlanStore
	PaymentStore
}

// FoodDatabase is the remote food catalogue (USDA FoodData Central).
type FoodDatabase interface {
	Search(ctx context.Context, query string, pageSize int) ([]models.Food, error)
	Get(ctx context.Context, fdcID int64) (*models.Food, error)
}

type AI interface {
	Chat(ctx context.Context, userContext string, history []gpt.Message, message string) (string, error)
	AnalyzeMeal(ctx context.Context, description string) (*gpt.MealAnalysis, error)
	SuggestRecipes(ctx context.Context, user *models.User, ingredients []string, preferences string) ([]gpt.RecipeSuggestion, error)
	Recommendations(ctx context.Context, user *models.User, intake string) ([]gpt.Recommendation, error)
	GenerateMealPlan(ctx context.Context, user *models.User, preferences string) (*gpt.Plan, error)
	GenerateWorkoutPlan(ctx context.Context, user *models.User, preferences string) (*gpt.Plan, error)
}

// Checkout is the payment provider. CreateSession returns the session id,
// the redirect URL and the amount charged in minor units.
type Checkout interface {
	CreateSession(ctx context.Context, userID int64, email string) (sessionID, url string, amount int64, currency string, err error)
}

type PlanRenderer interface {
	RenderPlan(user *models.User, plan *models.UserPlan) ([]byte, error)
}

type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Deps struct {
	Store      Store
	Tokens     *auth.Manager
	Cache      cache.Cache
	Foods      FoodDatabase
	Translator *usda.Translator
	Fallback   *usda.Fallback
	AI         AI
	Checkout   Checkout
	Renderer   PlanRenderer
	// Uploader is optional; without it PDFs are returned inline.
	Uploader       Uploader
	Location       *time.Location
	RequirePremium bool
	Logger         *logger.Logger
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

type Service struct {
	store          Store
	tokens         *auth.Manager
	cache          cache.Cache
	foods          FoodDatabase
	translator     *usda.Translator
	fallback       *usda.Fallback
	ai             AI
	checkout       Checkout
	renderer       PlanRenderer
	uploader       Uploader
	loc            *time.Location
	requirePremium bool
	logger         *logger.Logger
	now            func() time.Time
}

func New(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	c := d.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:          d.Store,
		tokens:         d.Tokens,
		cache:          c,
		foods:          d.Foods,
		translator:     d.Translator,
		fallback:       d.Fallback,
		ai:             d.AI,
		checkout:       d.Checkout,
		renderer:       d.Renderer,
		uploader:       d.Uploader,
		loc:            loc,
		requirePremium: d.RequirePremium,
		logger:         log.Named("service"),
		now:            now,
	}
}

// Location is the timezone nutritional days are evaluated in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) today() string {
	return nutrition.Today(s.now(), s.loc)
}
