package db

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nutritrack/internal/models"
)

func (db *PostgresDB) SavePayment(ctx context.Context, payment *models.Payment) error {
	query := `
        INSERT INTO payments (user_id, amount, currency, stripe_session_id, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `

	err := db.db.QueryRowxContext(ctx, query,
		payment.UserID, payment.Amount, payment.Currency,
		payment.StripeSessionID, payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)

	return wrapErr(err, "failed to save payment")
}

func (db *PostgresDB) GetPaymentBySessionID(ctx context.Context, sessionID string) (*models.Payment, error) {
	query := `
        SELECT id, user_id, amount, currency, stripe_session_id, status, created_at, updated_at
        FROM payments
        WHERE stripe_session_id = $1
    `

	var payment models.Payment
	if err := db.db.GetContext(ctx, &payment, query, sessionID); err != nil {
		return nil, wrapErr(err, "failed to get payment by session ID")
	}
	return &payment, nil
}

func (db *PostgresDB) UpdatePaymentStatus(ctx context.Context, sessionID, status string) error {
	res, err := db.db.ExecContext(ctx,
		`UPDATE payments SET status = $2, updated_at = NOW() WHERE stripe_session_id = $1`,
		sessionID, status)
	if err != nil {
		return wrapErr(err, "failed to update payment status")
	}
	return expectAffected(res, "failed to update payment status")
}

// CompletePayment marks the session paid and grants premium in one
// transaction, so a failed write leaves the payment pending for the retry.
func (db *PostgresDB) CompletePayment(ctx context.Context, sessionID string, userID int64) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE payments SET status = $2, updated_at = NOW() WHERE stripe_session_id = $1`,
			sessionID, models.PaymentPaid)
		if err != nil {
			return wrapErr(err, "failed to update payment status")
		}
		if err := expectAffected(res, "failed to update payment status"); err != nil {
			return err
		}
		res, err = tx.ExecContext(ctx,
			`UPDATE users SET is_premium = TRUE, updated_at = NOW() WHERE id = $1`, userID)
		if err != nil {
			return wrapErr(err, "failed to update premium status")
		}
		return expectAffected(res, "failed to update premium status")
	})
}
