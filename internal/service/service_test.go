package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nutritrack/internal/auth"
	"nutritrack/internal/gpt"
	"nutritrack/internal/memstore"
	"nutritrack/internal/models"
	"nutritrack/internal/service"
	"nutritrack/internal/usda"
)

var _ service.Store = (*memstore.Store)(nil)

// 2024-03-10 12:00 UTC, a Sunday.
var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeFoods struct {
	results   []models.Food
	searchErr error
	queries   []string
	details   map[int64]*models.Food
	gets      int
}

func (f *fakeFoods) Search(_ context.Context, query string, _ int) ([]models.Food, error) {
	f.queries = append(f.queries, query)
	return f.results, f.searchErr
}

func (f *fakeFoods) Get(_ context.Context, fdcID int64) (*models.Food, error) {
	f.gets++
	food, ok := f.details[fdcID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *food
	return &cp, nil
}

type fakeAI struct {
	err         error
	chatContext string
	reply       string
	analysis    *gpt.MealAnalysis
	plan        *gpt.Plan
	intake      string
}

func (a *fakeAI) Chat(_ context.Context, userContext string, _ []gpt.Message, _ string) (string, error) {
	a.chatContext = userContext
	return a.reply, a.err
}

func (a *fakeAI) AnalyzeMeal(context.Context, string) (*gpt.MealAnalysis, error) {
	return a.analysis, a.err
}

func (a *fakeAI) SuggestRecipes(context.Context, *models.User, []string, string) ([]gpt.RecipeSuggestion, error) {
	return []gpt.RecipeSuggestion{{Name: "Omelette", Servings: 1}}, a.err
}

func (a *fakeAI) Recommendations(_ context.Context, _ *models.User, intake string) ([]gpt.Recommendation, error) {
	a.intake = intake
	return []gpt.Recommendation{{Title: "Drink water"}}, a.err
}

func (a *fakeAI) GenerateMealPlan(context.Context, *models.User, string) (*gpt.Plan, error) {
	return a.plan, a.err
}

func (a *fakeAI) GenerateWorkoutPlan(context.Context, *models.User, string) (*gpt.Plan, error) {
	return a.plan, a.err
}

type fakeCheckout struct{ n int }

func (c *fakeCheckout) CreateSession(context.Context, int64, string) (string, string, int64, string, error) {
	c.n++
	return "cs_test_" + string(rune('0'+c.n)), "https://checkout.stripe.test/pay", 1999, "usd", nil
}

type fakeRenderer struct{}

func (fakeRenderer) RenderPlan(_ *models.User, plan *models.UserPlan) ([]byte, error) {
	return []byte("%PDF-1.3 " + plan.Title), nil
}

type fakeUploader struct {
	key string
	err error
}

func (u *fakeUploader) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	u.key = key
	if u.err != nil {
		return "", u.err
	}
	return "https://bucket.test/" + key, nil
}

type fixture struct {
	svc   *service.Service
	store *memstore.Store
	foods *fakeFoods
	ai    *fakeAI
	deps  service.Deps
}

func newFixture(t *testing.T, mutate ...func(*service.Deps)) *fixture {
	t.Helper()
	tr, err := usda.NewTranslator()
	require.NoError(t, err)
	fb, err := usda.NewFallback()
	require.NoError(t, err)

	f := &fixture{store: memstore.New(), foods: &fakeFoods{}, ai: &fakeAI{}}
	f.deps = service.Deps{
		Store:      f.store,
		Tokens:     auth.NewManager("test-secret", time.Hour),
		Foods:      f.foods,
		Translator: tr,
		Fallback:   fb,
		AI:         f.ai,
		Checkout:   &fakeCheckout{},
		Renderer:   fakeRenderer{},
		Location:   time.UTC,
		Now:        func() time.Time { return fixedNow },
	}
	for _, m := range mutate {
		m(&f.deps)
	}
	f.svc = service.New(f.deps)
	return f
}

// register creates a user with a complete profile and 2000 kcal goals.
func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	res, err := f.svc.Register(context.Background(), service.RegisterInput{
		Email: email, Password: "secret123", Name: "Ana",
	})
	require.NoError(t, err)
	return res.User
}

func isValidation(err error) bool {
	var ve *service.ValidationError
	return errors.As(err, &ve)
}

func ptr[T any](v T) *T { return &v }
