package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/api"
	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
	"github.com/carhive/carhive-api/plans"
)

// Plan exported for testing purposes
type Plan struct {
	Activator *plans.Activator
	UserDB    databases.UserDatabase
	DealerDB  databases.DealerDatabase
	BaseURL   string
}

type checkoutRequest struct {
	TargetPlan string `json:"targetPlan"`
	UserType   string `json:"userType"`
	IsRenewal  bool   `json:"isRenewal"`
}

type verifyPaymentRequest struct {
	SessionID string `json:"sessionId"`
}

type upgradePlanRequest struct {
	TargetPlan string `json:"targetPlan"`
	UserType   string `json:"userType"`
	SessionID  string `json:"sessionId"`
	IsRenewal  bool   `json:"isRenewal"`
}

// CreateCheckoutSessionHandler creates a Stripe checkout session for the
// requested plan; the session metadata carries everything activation needs
func (p Plan) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	plan, ok := plans.ByName(req.TargetPlan)
	if !ok {
		config.ErrorStatus("unknown plan", http.StatusBadRequest, w, fmt.Errorf("plan %q is not in the catalog", req.TargetPlan))
		return
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name + " plan"),
					},
					UnitAmount: stripe.Int64(int64(plan.Price * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.BaseURL + "/api/v1/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.BaseURL + "/api/v1/cancel"),
		Metadata: map[string]string{
			"accountID":  identity.ID(),
			"userType":   req.UserType,
			"targetPlan": plan.Name,
			"isRenewal":  fmt.Sprintf("%t", req.IsRenewal),
		},
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("checkout session created",
		"sessionID", sess.ID,
		"accountID", identity.ID(),
		"plan", plan.Name,
	)

	b, _ := json.Marshal(map[string]string{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VerifyPaymentHandler is the client-triggered confirmation path: it
// retrieves the session from Stripe and, when paid, applies the same
// idempotent activation the webhook does
func (p Plan) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	var req verifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.SessionID == "" {
		config.ErrorStatus("missing session id", http.StatusBadRequest, w, fmt.Errorf("sessionId is required"))
		return
	}

	sess, err := checkoutsession.Get(req.SessionID, nil)
	if err != nil {
		config.ErrorStatus("failed to retrieve checkout session", http.StatusInternalServerError, w, err)
		return
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		config.ErrorStatus("payment not completed", http.StatusBadRequest, w, fmt.Errorf("payment status: %s", sess.PaymentStatus))
		return
	}

	result, err := p.Activator.Activate(r.Context(), activationFromSession(sess))
	if err != nil {
		writeActivationError(w, err)
		return
	}

	b, _ := json.Marshal(result)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpgradePlanOptionsHandler returns the account's current plan and the
// transitions the hierarchy permits from it
func (p Plan) UpgradePlanOptionsHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	current := ""
	if plan, err := p.currentPlan(r.Context(), identity.ID()); err == nil && plan != nil {
		current = plan.PlanName
	}

	b, _ := json.Marshal(map[string]interface{}{
		"currentPlan":       current,
		"availableUpgrades": plans.UpgradesFrom(current),
		"availableRenewals": plans.RenewalsFrom(current),
		"planHierarchy":     plans.Hierarchy,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpgradePlanHandler applies an upgrade or renewal for the authenticated
// account, keyed by the checkout session id
func (p Plan) UpgradePlanHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	var req upgradePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.TargetPlan == "" {
		config.ErrorStatus("missing target plan", http.StatusBadRequest, w, fmt.Errorf("targetPlan is required"))
		return
	}
	if req.SessionID == "" {
		config.ErrorStatus("missing session id", http.StatusBadRequest, w, fmt.Errorf("sessionId is required"))
		return
	}

	result, err := p.Activator.Activate(r.Context(), plans.ActivationRequest{
		AccountID:  identity.ID(),
		TargetPlan: req.TargetPlan,
		SessionID:  req.SessionID,
		IsRenewal:  req.IsRenewal,
	})
	if err != nil {
		writeActivationError(w, err)
		return
	}

	b, _ := json.Marshal(map[string]interface{}{
		"success":         result.Success,
		"message":         result.Message,
		"updatedVehicles": result.UpdatedVehicles,
		"newEndDate":      result.NewEndDate,
		"isRenewal":       result.IsRenewal,
	})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (p Plan) currentPlan(ctx context.Context, accountID string) (*models.PlanInfo, error) {
	dealer, err := p.DealerDB.FindOne(ctx, bson.M{"_id": accountID})
	if err == nil && dealer != nil {
		return dealer.Details.Plan, nil
	}
	user, err := p.UserDB.FindOne(ctx, bson.M{"_id": accountID})
	if err == nil && user != nil {
		return user.Details.Plan, nil
	}
	return nil, fmt.Errorf("account %s not found", accountID)
}

func (p Plan) handleSuccessRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"status": "success", "sessionId": "%s"}`, r.URL.Query().Get("session_id"))))
}

func (p Plan) handleCancelRedirect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "cancelled"}`))
}

// activationFromSession maps checkout-session metadata onto an activation
// request
func activationFromSession(sess *stripe.CheckoutSession) plans.ActivationRequest {
	return plans.ActivationRequest{
		AccountID:  sess.Metadata["accountID"],
		TargetPlan: sess.Metadata["targetPlan"],
		SessionID:  sess.ID,
		IsRenewal:  sess.Metadata["isRenewal"] == "true",
		Amount:     float64(sess.AmountTotal) / 100,
	}
}

func writeActivationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, plans.ErrUnknownPlan), errors.Is(err, plans.ErrInvalidTransition):
		config.ErrorStatus("invalid plan transition", http.StatusBadRequest, w, err)
	case errors.Is(err, plans.ErrAccountNotFound):
		config.ErrorStatus("account not found", http.StatusNotFound, w, err)
	default:
		config.ErrorStatus("failed to activate plan", http.StatusInternalServerError, w, err)
	}
}
