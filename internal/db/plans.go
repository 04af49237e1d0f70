package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"nutritrack/internal/models"
)

const planColumns = `id, user_id, type, title, data, is_active, created_at, updated_at`

const progressColumns = `id, user_plan_id, user_id, date::text AS date, completed, notes, updated_at`

const deactivatePlans = `
    UPDATE user_plans SET is_active = FALSE, updated_at = NOW()
    WHERE user_id = $1 AND type = $2 AND is_active AND id <> $3`

// CreatePlan stores a plan. An active plan deactivates the user's other
// plans of the same type in the same transaction.
func (db *PostgresDB) CreatePlan(ctx context.Context, plan *models.UserPlan) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
            INSERT INTO user_plans (user_id, type, title, data, is_active)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id, created_at, updated_at`,
			plan.UserID, plan.Type, plan.Title, plan.Data, plan.IsActive,
		).Scan(&plan.ID, &plan.CreatedAt, &plan.UpdatedAt)
		if err != nil {
			return wrapErr(err, "failed to create plan")
		}
		if plan.IsActive {
			if _, err := tx.ExecContext(ctx, deactivatePlans, plan.UserID, plan.Type, plan.ID); err != nil {
				return wrapErr(err, "failed to deactivate plans")
			}
		}
		return nil
	})
}

// ActivatePlan makes the plan the user's only active one of its type.
func (db *PostgresDB) ActivatePlan(ctx context.Context, userID, id int64) (*models.UserPlan, error) {
	var plan models.UserPlan
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &plan,
			`SELECT `+planColumns+` FROM user_plans WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
		if err != nil {
			return wrapErr(err, "failed to get plan")
		}
		if _, err := tx.ExecContext(ctx, deactivatePlans, userID, plan.Type, id); err != nil {
			return wrapErr(err, "failed to deactivate plans")
		}
		err = tx.QueryRowxContext(ctx,
			`UPDATE user_plans SET is_active = TRUE, updated_at = NOW() WHERE id = $1 RETURNING updated_at`, id,
		).Scan(&plan.UpdatedAt)
		if err != nil {
			return wrapErr(err, "failed to activate plan")
		}
		plan.IsActive = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (db *PostgresDB) GetPlan(ctx context.Context, userID, id int64) (*models.UserPlan, error) {
	var plan models.UserPlan
	err := db.db.GetContext(ctx, &plan,
		`SELECT `+planColumns+` FROM user_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to get plan")
	}
	return &plan, nil
}

func (db *PostgresDB) GetActivePlan(ctx context.Context, userID int64, planType string) (*models.UserPlan, error) {
	var plan models.UserPlan
	err := db.db.GetContext(ctx, &plan, `
        SELECT `+planColumns+` FROM user_plans
        WHERE user_id = $1 AND type = $2 AND is_active
        ORDER BY updated_at DESC LIMIT 1`, userID, planType)
	if err != nil {
		return nil, wrapErr(err, "failed to get active plan")
	}
	return &plan, nil
}

// ListPlans returns the user's plans newest first, optionally of one type.
func (db *PostgresDB) ListPlans(ctx context.Context, userID int64, planType string) ([]models.UserPlan, error) {
	b := psql.Select(planColumns).From("user_plans").Where(sq.Eq{"user_id": userID})
	if planType != "" {
		b = b.Where(sq.Eq{"type": planType})
	}
	query, args, err := b.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, err
	}

	plans := []models.UserPlan{}
	if err := db.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, wrapErr(err, "failed to list plans")
	}
	return plans, nil
}

func (db *PostgresDB) DeletePlan(ctx context.Context, userID, id int64) error {
	res, err := db.db.ExecContext(ctx, `DELETE FROM user_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return wrapErr(err, "failed to delete plan")
	}
	return expectAffected(res, "failed to delete plan")
}

func (db *PostgresDB) UpsertDailyProgress(ctx context.Context, p *models.DailyProgress) error {
	query := `
        INSERT INTO daily_progress (user_plan_id, user_id, date, completed, notes)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_plan_id, date) DO UPDATE
        SET completed = EXCLUDED.completed, notes = EXCLUDED.notes, updated_at = NOW()
        RETURNING id, updated_at
    `

	err := db.db.QueryRowxContext(ctx, query, p.UserPlanID, p.UserID, p.Date, p.Completed, p.Notes).
		Scan(&p.ID, &p.UpdatedAt)
	return wrapErr(err, "failed to save daily progress")
}

func (db *PostgresDB) GetDailyProgress(ctx context.Context, planID int64, day string) (*models.DailyProgress, error) {
	var p models.DailyProgress
	err := db.db.GetContext(ctx, &p,
		`SELECT `+progressColumns+` FROM daily_progress WHERE user_plan_id = $1 AND date = $2`, planID, day)
	if err != nil {
		return nil, wrapErr(err, "failed to get daily progress")
	}
	return &p, nil
}

func (db *PostgresDB) SaveMealPlan(ctx context.Context, plan *models.MealPlan) error {
	err := db.db.QueryRowxContext(ctx, `
        INSERT INTO meal_plans (user_id, title, plan_text)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`, plan.UserID, plan.Title, plan.PlanText,
	).Scan(&plan.ID, &plan.CreatedAt)
	return wrapErr(err, "failed to save meal plan")
}

func (db *PostgresDB) ListMealPlans(ctx context.Context, userID int64) ([]models.MealPlan, error) {
	plans := []models.MealPlan{}
	err := db.db.SelectContext(ctx, &plans, `
        SELECT id, user_id, title, plan_text, created_at FROM meal_plans
        WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to list meal plans")
	}
	return plans, nil
}
