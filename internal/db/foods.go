package db

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"nutritrack/internal/models"
)

const foodColumns = `id, user_id, name, brand, source, fdc_id, serving_size_g, serving_unit,
	aliases, calories, protein, carbs, fat, fiber, sugar, sodium, created_at`

// SaveFood inserts a food. A USDA food already imported under the same
// fdc_id is refreshed and its id returned instead.
func (db *PostgresDB) SaveFood(ctx context.Context, food *models.Food) error {
	query := `
        INSERT INTO foods (user_id, name, brand, source, fdc_id, serving_size_g, serving_unit,
            aliases, calories, protein, carbs, fat, fiber, sugar, sodium)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (fdc_id) DO UPDATE
        SET name = EXCLUDED.name, calories = EXCLUDED.calories, protein = EXCLUDED.protein,
            carbs = EXCLUDED.carbs, fat = EXCLUDED.fat, fiber = EXCLUDED.fiber,
            sugar = EXCLUDED.sugar, sodium = EXCLUDED.sodium
        RETURNING id, created_at
    `

	if food.Aliases == nil {
		food.Aliases = []string{}
	}
	err := db.db.QueryRowxContext(ctx, query,
		food.UserID, food.Name, food.Brand, food.Source, food.FDCID, food.ServingSizeG, food.ServingUnit,
		food.Aliases, food.Calories, food.Protein, food.Carbs, food.Fat, food.Fiber, food.Sugar, food.Sodium,
	).Scan(&food.ID, &food.CreatedAt)

	return wrapErr(err, "failed to save food")
}

// GetFood returns a food visible to userID: its own custom foods or shared ones.
func (db *PostgresDB) GetFood(ctx context.Context, userID, id int64) (*models.Food, error) {
	var food models.Food
	err := db.db.GetContext(ctx, &food,
		`SELECT `+foodColumns+` FROM foods WHERE id = $1 AND (user_id = $2 OR user_id IS NULL)`,
		id, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to get food")
	}
	return &food, nil
}

func (db *PostgresDB) GetFoodByFDCID(ctx context.Context, fdcID int64) (*models.Food, error) {
	var food models.Food
	err := db.db.GetContext(ctx, &food, `SELECT `+foodColumns+` FROM foods WHERE fdc_id = $1`, fdcID)
	if err != nil {
		return nil, wrapErr(err, "failed to get food by fdc id")
	}
	return &food, nil
}

// ListFoods returns the user's custom foods first, then shared foods.
func (db *PostgresDB) ListFoods(ctx context.Context, userID int64, limit int) ([]models.Food, error) {
	query, args, err := visibleFoods(userID).
		OrderBy("(user_id IS NULL)", "name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	foods := []models.Food{}
	if err := db.db.SelectContext(ctx, &foods, query, args...); err != nil {
		return nil, wrapErr(err, "failed to list foods")
	}
	return foods, nil
}

// SearchFoods matches name or any alias case-insensitively.
func (db *PostgresDB) SearchFoods(ctx context.Context, userID int64, term string, limit int) ([]models.Food, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	query, args, err := visibleFoods(userID).
		Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.Expr("EXISTS (SELECT 1 FROM unnest(aliases) AS a WHERE a ILIKE ?)", pattern),
		}).
		OrderBy("(user_id IS NULL)", "length(name)", "name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	foods := []models.Food{}
	if err := db.db.SelectContext(ctx, &foods, query, args...); err != nil {
		return nil, wrapErr(err, "failed to search foods")
	}
	return foods, nil
}

func visibleFoods(userID int64) sq.SelectBuilder {
	return psql.Select(foodColumns).
		From("foods").
		Where(sq.Or{sq.Eq{"user_id": userID}, sq.Eq{"user_id": nil}})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
