package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutritrack/internal/models"
)

func newMock(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewWithDB(sqlx.NewDb(sqlDB, "postgres")), mock
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("ana@example.com", "hash", "Ana", 0, "", 0.0, 0.0, "moderate", "maintain", 2000, 125, 250, 56).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	u := &models.User{
		Email: "  Ana@Example.com ", PasswordHash: "hash", Name: "Ana",
		ActivityLevel: "moderate", Goal: "maintain",
		DailyCalories: 2000, DailyProtein: 125, DailyCarbs: 250, DailyFat: 56,
	}
	require.NoError(t, db.CreateUser(context.Background(), u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateIsConflict(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	err := db.CreateUser(context.Background(), &models.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, models.ErrConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM users WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := db.GetUserByEmail(context.Background(), "Missing@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchFoodsMatchesNameAndAliases(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM foods WHERE \(user_id = \$1 OR user_id IS NULL\) AND \(name ILIKE \$2 OR EXISTS \(SELECT 1 FROM unnest\(aliases\) AS a WHERE a ILIKE \$3\)\)`).
		WithArgs(int64(3), "%arroz%", "%arroz%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "source", "aliases", "calories"}).
			AddRow(1, "Rice, white, cooked", "usda", "{arroz}", 130.0))

	foods, err := db.SearchFoods(context.Background(), 3, " arroz ", 20)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Rice, white, cooked", foods[0].Name)
	assert.Equal(t, []string{"arroz"}, []string(foods[0].Aliases))
	assert.Equal(t, 130.0, foods[0].Calories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_x`, escapeLike("50% off_x"))
}

func TestListMealsByDayAttachesFoods(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .* FROM meals\s+WHERE user_id = \$1 AND nutritional_day = \$2`).
		WithArgs(int64(1), "2024-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "meal_type_id", "name", "nutritional_day", "logged_at"}).
			AddRow(10, 1, 1, "Breakfast", "2024-03-10", now).
			AddRow(11, 1, 2, "Lunch", "2024-03-10", now))

	mock.ExpectQuery(`(?s)SELECT .* FROM meal_foods WHERE meal_id IN \(\$1,\$2\) ORDER BY id`).
		WithArgs(int64(10), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "meal_id", "food_name", "grams", "calories"}).
			AddRow(100, 10, "Egg", 50.0, 72.0).
			AddRow(101, 11, "Rice", 150.0, 195.0).
			AddRow(102, 11, "Beans", 100.0, 76.0))

	meals, err := db.ListMealsByDay(context.Background(), 1, "2024-03-10")
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Len(t, meals[0].Foods, 1)
	assert.Len(t, meals[1].Foods, 2)
	assert.Equal(t, 271.0, meals[1].Totals().Calories)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListMealsByDayEmptySkipsFoods(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM meals`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	meals, err := db.ListMealsByDay(context.Background(), 1, "2024-03-10")
	require.NoError(t, err)
	assert.Empty(t, meals)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMealInsertsFoodsInTransaction(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO meals`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, now))
	mock.ExpectQuery(`INSERT INTO meal_foods`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(50, now))
	mock.ExpectCommit()

	meal := &models.Meal{
		UserID: 1, MealTypeID: 1, NutritionalDay: "2024-03-10", LoggedAt: now,
		Foods: []models.MealFood{{FoodName: "Egg", Quantity: 1, Unit: "unit", Grams: 50}},
	}
	require.NoError(t, db.CreateMeal(context.Background(), meal))
	assert.Equal(t, int64(5), meal.ID)
	assert.Equal(t, int64(5), meal.Foods[0].MealID)
	assert.Equal(t, int64(50), meal.Foods[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMealRollsBackOnFoodError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO meals`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(5, time.Now()))
	mock.ExpectQuery(`INSERT INTO meal_foods`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	meal := &models.Meal{UserID: 1, Foods: []models.MealFood{{FoodName: "Egg"}}}
	assert.ErrorIs(t, db.CreateMeal(context.Background(), meal), assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMealRemovesFoodsFirst(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nutritional_day::text FROM meals WHERE id = $1 AND user_id = $2 FOR UPDATE`)).
		WithArgs(int64(5), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"nutritional_day"}).AddRow("2024-03-10"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM meal_foods WHERE meal_id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM meals WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	day, err := db.DeleteMeal(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMealOfOtherUserIsNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT nutritional_day::text FROM meals`).
		WillReturnRows(sqlmock.NewRows([]string{"nutritional_day"}))
	mock.ExpectRollback()

	_, err := db.DeleteMeal(context.Background(), 2, 5)
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMealFoodMissing(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM meal_foods WHERE id = \$1 AND meal_id = \$2`).
		WithArgs(int64(9), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, db.DeleteMealFood(context.Background(), 5, 9), models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateActivePlanDeactivatesOthers(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO user_plans`).
		WithArgs(int64(1), "diet", "Week 1", sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
	mock.ExpectExec(`UPDATE user_plans SET is_active = FALSE`).
		WithArgs(int64(1), "diet", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	plan := &models.UserPlan{UserID: 1, Type: "diet", Title: "Week 1", Data: models.JSON(`{}`), IsActive: true}
	require.NoError(t, db.CreatePlan(context.Background(), plan))
	assert.Equal(t, int64(3), plan.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInactivePlanLeavesOthers(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO user_plans`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(4, now, now))
	mock.ExpectCommit()

	plan := &models.UserPlan{UserID: 1, Type: "workout", Data: models.JSON(`{}`)}
	require.NoError(t, db.CreatePlan(context.Background(), plan))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivatePlan(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .* FROM user_plans WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "title", "data", "is_active"}).
			AddRow(3, 1, "workout", "Strength", []byte(`{"days":[]}`), false))
	mock.ExpectExec(`UPDATE user_plans SET is_active = FALSE`).
		WithArgs(int64(1), "workout", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE user_plans SET is_active = TRUE`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectCommit()

	plan, err := db.ActivatePlan(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.True(t, plan.IsActive)
	assert.JSONEq(t, `{"days":[]}`, string(plan.Data))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPlansFiltersByType(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)SELECT .* FROM user_plans WHERE user_id = \$1 AND type = \$2 ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(1), "diet").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type"}).AddRow(1, "diet"))

	plans, err := db.ListPlans(context.Background(), 1, "diet")
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDailyNutrition(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO daily_nutrition .* ON CONFLICT \(user_id, date\) DO UPDATE`).
		WithArgs(int64(1), "2024-03-10", 2, 500.0, 30.0, 60.0, 15.0, 0.0, 0.0, 0.0, 2000.0, 125.0, 250.0, 56.0).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	dn := &models.DailyNutrition{
		UserID: 1, Date: "2024-03-10", MealCount: 2,
		Nutrients:    models.Nutrients{Calories: 500, Protein: 30, Carbs: 60, Fat: 15},
		GoalCalories: 2000, GoalProtein: 125, GoalCarbs: 250, GoalFat: 56,
	}
	require.NoError(t, db.UpsertDailyNutrition(context.Background(), dn))
	assert.Equal(t, now, dn.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusUnknownSession(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE payments SET status`).
		WithArgs("cs_missing", models.PaymentPaid).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := db.UpdatePaymentStatus(context.Background(), "cs_missing", models.PaymentPaid)
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateAppliesPendingOnly(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("0001_init"))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS foods_name_lower_idx`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs("0002_food_search").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ran, err := db.Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_food_search"}, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletePaymentCommitsBothWrites(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE payments SET status`).
		WithArgs("cs_1", models.PaymentPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET is_premium = TRUE`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, db.CompletePayment(context.Background(), "cs_1", 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompletePaymentRollsBackWhenPremiumFails(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE payments SET status`).
		WithArgs("cs_1", models.PaymentPaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET is_premium = TRUE`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	assert.Error(t, db.CompletePayment(context.Background(), "cs_1", 7))
	require.NoError(t, mock.ExpectationsWereMet())
}
