package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"nutritrack/internal/models"
)

const recipeColumns = `id, user_id, name, description, instructions, servings, prep_minutes,
	tags, source, calories, protein, carbs, fat, fiber, sugar, sodium, created_at`

const ingredientColumns = `id, recipe_id, food_id, name, quantity, unit, grams,
	calories, protein, carbs, fat, fiber, sugar, sodium`

func (db *PostgresDB) CreateRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
            INSERT INTO recipes (user_id, name, description, instructions, servings, prep_minutes,
                tags, source, calories, protein, carbs, fat, fiber, sugar, sodium)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
            RETURNING id, created_at`,
			recipe.UserID, recipe.Name, recipe.Description, recipe.Instructions, recipe.Servings,
			recipe.PrepMinutes, recipe.Tags, recipe.Source, recipe.Calories, recipe.Protein,
			recipe.Carbs, recipe.Fat, recipe.Fiber, recipe.Sugar, recipe.Sodium,
		).Scan(&recipe.ID, &recipe.CreatedAt)
		if err != nil {
			return wrapErr(err, "failed to create recipe")
		}

		for i := range recipe.Ingredients {
			ing := &recipe.Ingredients[i]
			ing.RecipeID = recipe.ID
			err := tx.QueryRowxContext(ctx, `
                INSERT INTO recipe_ingredients (recipe_id, food_id, name, quantity, unit, grams,
                    calories, protein, carbs, fat, fiber, sugar, sodium)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                RETURNING id`,
				ing.RecipeID, ing.FoodID, ing.Name, ing.Quantity, ing.Unit, ing.Grams,
				ing.Calories, ing.Protein, ing.Carbs, ing.Fat, ing.Fiber, ing.Sugar, ing.Sodium,
			).Scan(&ing.ID)
			if err != nil {
				return wrapErr(err, "failed to add recipe ingredient")
			}
		}
		return nil
	})
}

func (db *PostgresDB) GetRecipe(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.db.GetContext(ctx, &recipe,
		`SELECT `+recipeColumns+` FROM recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to get recipe")
	}
	recipes := []models.Recipe{recipe}
	if err := db.attachIngredients(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

func (db *PostgresDB) ListRecipes(ctx context.Context, userID int64) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := db.db.SelectContext(ctx, &recipes,
		`SELECT `+recipeColumns+` FROM recipes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to list recipes")
	}
	if err := db.attachIngredients(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (db *PostgresDB) attachIngredients(ctx context.Context, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]int64, len(recipes))
	index := make(map[int64]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		index[r.ID] = i
		recipes[i].Ingredients = []models.RecipeIngredient{}
	}

	query, args, err := psql.Select(ingredientColumns).
		From("recipe_ingredients").
		Where(sq.Eq{"recipe_id": ids}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return err
	}

	var ings []models.RecipeIngredient
	if err := db.db.SelectContext(ctx, &ings, query, args...); err != nil {
		return wrapErr(err, "failed to load recipe ingredients")
	}
	for _, ing := range ings {
		i := index[ing.RecipeID]
		recipes[i].Ingredients = append(recipes[i].Ingredients, ing)
	}
	return nil
}

func (db *PostgresDB) DeleteRecipe(ctx context.Context, userID, id int64) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapErr(err, "failed to delete recipe")
	}
	return expectAffected(res, "failed to delete recipe")
}
