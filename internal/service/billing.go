package service

import (
	"context"

	"nutritrack/internal/models"
)

type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckout opens a checkout session and records the pending payment.
func (s *Service) CreateCheckout(ctx context.Context, userID int64) (*CheckoutResult, error) {
	if s.checkout == nil {
		return nil, ErrNotConfigured
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessionID, url, amount, currency, err := s.checkout.CreateSession(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		UserID:          user.ID,
		Amount:          amount,
		Currency:        currency,
		StripeSessionID: sessionID,
		Status:          models.PaymentPending,
	}
	if err := s.store.SavePayment(ctx, payment); err != nil {
		return nil, err
	}
	s.logger.Infow("Checkout session created", "user_id", user.ID, "session_id", sessionID)
	return &CheckoutResult{SessionID: sessionID, URL: url}, nil
}

// CompleteCheckout marks the session paid and grants premium. Repeated
// deliveries of the same event are no-ops once both are recorded.
func (s *Service) CompleteCheckout(ctx context.Context, sessionID string) error {
	payment, err := s.store.GetPaymentBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if payment.Status == models.PaymentPaid {
		user, err := s.store.GetUserByID(ctx, payment.UserID)
		if err != nil {
			return err
		}
		if user.IsPremium {
			return nil
		}
	}
	if err := s.store.CompletePayment(ctx, sessionID, payment.UserID); err != nil {
		return err
	}
	s.logger.Infow("Payment completed", "user_id", payment.UserID, "session_id", sessionID)
	return nil
}

// FailCheckout records a failed or expired session. Paid sessions are kept.
func (s *Service) FailCheckout(ctx context.Context, sessionID string) error {
	payment, err := s.store.GetPaymentBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}
	if payment.Status == models.PaymentPaid {
		return nil
	}
	return s.store.UpdatePaymentStatus(ctx, sessionID, models.PaymentFailed)
}
