package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"nutritrack/internal/models"
)

const mealColumns = `id, user_id, meal_type_id, name, nutritional_day::text AS nutritional_day,
	logged_at, notes, created_at`

const mealFoodColumns = `id, meal_id, food_id, food_name, quantity, unit, grams,
	calories, protein, carbs, fat, fiber, sugar, sodium, created_at`

func (db *PostgresDB) ListMealTypes(ctx context.Context) ([]models.MealType, error) {
	types := []models.MealType{}
	err := db.db.SelectContext(ctx, &types,
		`SELECT id, name, display_order FROM meal_types ORDER BY display_order, id`)
	if err != nil {
		return nil, wrapErr(err, "failed to list meal types")
	}
	return types, nil
}

// CreateMeal inserts the meal and its foods in one transaction.
func (db *PostgresDB) CreateMeal(ctx context.Context, meal *models.Meal) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
            INSERT INTO meals (user_id, meal_type_id, name, nutritional_day, logged_at, notes)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, created_at`,
			meal.UserID, meal.MealTypeID, meal.Name, meal.NutritionalDay, meal.LoggedAt, meal.Notes,
		).Scan(&meal.ID, &meal.CreatedAt)
		if err != nil {
			return wrapErr(err, "failed to create meal")
		}

		for i := range meal.Foods {
			meal.Foods[i].MealID = meal.ID
			if err := insertMealFood(ctx, tx, &meal.Foods[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *PostgresDB) AddMealFood(ctx context.Context, food *models.MealFood) error {
	return insertMealFood(ctx, db.db, food)
}

func insertMealFood(ctx context.Context, q sqlx.QueryerContext, food *models.MealFood) error {
	err := q.QueryRowxContext(ctx, `
        INSERT INTO meal_foods (meal_id, food_id, food_name, quantity, unit, grams,
            calories, protein, carbs, fat, fiber, sugar, sodium)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id, created_at`,
		food.MealID, food.FoodID, food.FoodName, food.Quantity, food.Unit, food.Grams,
		food.Calories, food.Protein, food.Carbs, food.Fat, food.Fiber, food.Sugar, food.Sodium,
	).Scan(&food.ID, &food.CreatedAt)

	return wrapErr(err, "failed to add meal food")
}

// GetMeal loads one of the user's meals with its foods.
func (db *PostgresDB) GetMeal(ctx context.Context, userID, id int64) (*models.Meal, error) {
	var meal models.Meal
	err := db.db.GetContext(ctx, &meal,
		`SELECT `+mealColumns+` FROM meals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to get meal")
	}

	meals := []models.Meal{meal}
	if err := db.attachMealFoods(ctx, meals); err != nil {
		return nil, err
	}
	return &meals[0], nil
}

// ListMealsByDay returns the meals of one nutritional day ordered by logged_at.
func (db *PostgresDB) ListMealsByDay(ctx context.Context, userID int64, day string) ([]models.Meal, error) {
	meals := []models.Meal{}
	err := db.db.SelectContext(ctx, &meals, `
        SELECT `+mealColumns+` FROM meals
        WHERE user_id = $1 AND nutritional_day = $2
        ORDER BY logged_at, id`, userID, day)
	if err != nil {
		return nil, wrapErr(err, "failed to list meals")
	}
	if err := db.attachMealFoods(ctx, meals); err != nil {
		return nil, err
	}
	return meals, nil
}

func (db *PostgresDB) attachMealFoods(ctx context.Context, meals []models.Meal) error {
	if len(meals) == 0 {
		return nil
	}
	ids := make([]int64, len(meals))
	index := make(map[int64]int, len(meals))
	for i, m := range meals {
		ids[i] = m.ID
		index[m.ID] = i
		meals[i].Foods = []models.MealFood{}
	}

	query, args, err := psql.Select(mealFoodColumns).
		From("meal_foods").
		Where(sq.Eq{"meal_id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return err
	}

	var foods []models.MealFood
	if err := db.db.SelectContext(ctx, &foods, query, args...); err != nil {
		return wrapErr(err, "failed to load meal foods")
	}
	for _, f := range foods {
		i := index[f.MealID]
		meals[i].Foods = append(meals[i].Foods, f)
	}
	return nil
}

// DeleteMeal removes the meal and its foods, returning the nutritional day
// it belonged to.
func (db *PostgresDB) DeleteMeal(ctx context.Context, userID, id int64) (string, error) {
	var day string
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &day,
			`SELECT nutritional_day::text FROM meals WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
		if err != nil {
			return wrapErr(err, "failed to delete meal")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM meal_foods WHERE meal_id = $1`, id); err != nil {
			return wrapErr(err, "failed to delete meal foods")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM meals WHERE id = $1`, id); err != nil {
			return wrapErr(err, "failed to delete meal")
		}
		return nil
	})
	return day, err
}

func (db *PostgresDB) DeleteMealFood(ctx context.Context, mealID, mealFoodID int64) error {
	res, err := db.db.ExecContext(ctx,
		`DELETE FROM meal_foods WHERE id = $1 AND meal_id = $2`, mealFoodID, mealID)
	if err != nil {
		return wrapErr(err, "failed to delete meal food")
	}
	return expectAffected(res, "failed to delete meal food")
}
