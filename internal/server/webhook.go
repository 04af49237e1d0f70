package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v72"

	"nutritrack/internal/models"
)

const maxWebhookBody = 64 << 10

func (h *Handler) stripeWebhook(c *gin.Context) {
	if h.webhooks == nil {
		h.logger.Error("Webhook received but Stripe is not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Errorw("Failed to read webhook body", "error", err)
		badRequest(c, "failed to read request body")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		badRequest(c, "missing signature")
		return
	}

	event, err := h.webhooks.VerifyWebhookSignature(body, signature)
	if err != nil {
		h.logger.Warnw("Failed to verify webhook signature", "error", err)
		badRequest(c, "invalid signature")
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			badRequest(c, "failed to parse event data")
			return
		}
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			h.logger.Infow("Checkout completed but not paid yet", "session_id", session.ID)
			break
		}
		if err := h.svc.CompleteCheckout(c.Request.Context(), session.ID); err != nil {
			h.webhookError(c, event, err)
			return
		}

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			badRequest(c, "failed to parse event data")
			return
		}
		if err := h.svc.FailCheckout(c.Request.Context(), session.ID); err != nil {
			h.webhookError(c, event, err)
			return
		}

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			h.logger.Errorw("Failed to parse payment intent", "error", err)
			break
		}
		h.logger.Warnw("Payment failed", "payment_id", intent.ID)

	default:
		h.logger.Debugw("Ignoring webhook event", "type", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// webhookError acknowledges events for sessions we never created so
// Stripe stops retrying them; other failures are retried.
func (h *Handler) webhookError(c *gin.Context, event stripe.Event, err error) {
	if errors.Is(err, models.ErrNotFound) {
		h.logger.Warnw("Webhook for unknown checkout session", "event_id", event.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	h.logger.Errorw("Failed to process webhook", "event_id", event.ID, "type", event.Type, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
}
