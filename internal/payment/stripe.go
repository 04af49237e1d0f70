// internal/payment/stripe.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/checkout/session"
	"github.com/stripe/stripe-go/v72/webhook"

	"nutritrack/config"
)

type StripeClient struct {
	secretKey     string
	webhookSecret string
	priceID       string
	successURL    string
	cancelURL     string
}

func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	// Set the secret key for backend operations
	stripe.Key = cfg.SecretKey

	return &StripeClient{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookKey,
		priceID:       cfg.PriceID,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateSession opens a one-off premium checkout for the user and returns
// the session id, its redirect URL and the amount Stripe will charge.
func (s *StripeClient) CreateSession(ctx context.Context, userID int64, email string) (string, string, int64, string, error) {
	if s.priceID == "" {
		return "", "", 0, "", errors.New("stripe price id is not configured")
	}
	// Ensure we're using the secret key for API operations
	if stripe.Key != s.secretKey {
		stripe.Key = s.secretKey
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(strconv.FormatInt(userID, 10)),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return "", "", 0, "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	return sess.ID, sess.URL, sess.AmountTotal, string(sess.Currency), nil
}

func (s *StripeClient) VerifyWebhookSignature(payload []byte, sig string) (stripe.Event, error) {
	if s.webhookSecret == "" {
		return stripe.Event{}, errors.New("webhook secret is not configured")
	}
	return webhook.ConstructEvent(payload, sig, s.webhookSecret)
}
