package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/plans"
)

// Webhook exported for testing purposes
type Webhook struct {
	Activator     *plans.Activator
	WebhookSecret string
}

const webhookMaxBodyBytes = int64(65536)

// StripeWebhookHandler is the Stripe-triggered confirmation path. It
// verifies the event signature and activates the purchased plan on
// checkout.session.completed; the activator's session ledger makes a
// replay of an already-handled session a no-op
func (h Webhook) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, webhookMaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		config.ErrorStatus("failed to read webhook body", http.StatusServiceUnavailable, w, err)
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		h.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		config.ErrorStatus("webhook signature verification failed", http.StatusBadRequest, w, err)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			config.ErrorStatus("failed to parse webhook event", http.StatusBadRequest, w, err)
			return
		}
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			zap.S().Infow("checkout session completed without payment, skipping",
				"sessionID", sess.ID,
				"paymentStatus", sess.PaymentStatus,
			)
			break
		}

		result, err := h.Activator.Activate(r.Context(), activationFromSession(&sess))
		if err != nil {
			// returning non-2xx makes Stripe retry the event later
			config.ErrorStatus("failed to activate plan", http.StatusInternalServerError, w, err)
			return
		}
		zap.S().Infow("plan activated from webhook",
			"sessionID", sess.ID,
			"plan", result.PlanName,
			"alreadyProcessed", result.AlreadyProcessed,
			"updatedVehicles", result.UpdatedVehicles,
		)
	default:
		zap.S().Debugw("unhandled webhook event", "type", event.Type)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"received": true}`))
}
