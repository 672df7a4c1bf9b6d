package plans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
)

// Activation error taxonomy. Handlers map these onto 400/404; anything else
// is a 500.
var (
	ErrUnknownPlan       = errors.New("unknown plan")
	ErrInvalidTransition = errors.New("invalid plan transition")
	ErrAccountNotFound   = errors.New("account not found")
)

// errAlreadyProcessed aborts the transaction without treating a duplicate
// session as a failure
var errAlreadyProcessed = errors.New("session already processed")

// ActivationRequest carries everything a confirmed payment needs to take
// effect
type ActivationRequest struct {
	AccountID  string
	TargetPlan string
	SessionID  string
	IsRenewal  bool
	Amount     float64
}

// ActivationResult summarizes an applied (or previously applied) activation
type ActivationResult struct {
	Success          bool      `json:"success"`
	Message          string    `json:"message"`
	AlreadyProcessed bool      `json:"alreadyProcessed,omitempty"`
	UpdatedVehicles  int64     `json:"updatedVehicles"`
	NewEndDate       time.Time `json:"newEndDate"`
	PlanName         string    `json:"planName"`
	IsRenewal        bool      `json:"isRenewal"`
}

// Activator applies a plan upgrade or renewal to an account. It is the
// single activation path: both the Stripe webhook and the manual
// verify-payment endpoint call Activate, and a processed-sessions marker
// keyed by checkout session id makes the mutation run at most once.
type Activator struct {
	Dealers  databases.DealerDatabase
	Users    databases.UserDatabase
	Vehicles databases.VehicleDatabase
	Sessions databases.ProcessedSessionDatabase
	Txn      databases.TxnRunner
	Now      func() time.Time
}

// NewActivator wires an activator; a nil clock defaults to time.Now
func NewActivator(dealers databases.DealerDatabase, users databases.UserDatabase, vehicles databases.VehicleDatabase, sessions databases.ProcessedSessionDatabase, txn databases.TxnRunner) *Activator {
	return &Activator{
		Dealers:  dealers,
		Users:    users,
		Vehicles: vehicles,
		Sessions: sessions,
		Txn:      txn,
		Now:      time.Now,
	}
}

// Activate validates and applies the requested plan transition inside one
// transaction: the idempotency marker insert, the account plan fields and
// history append, and the expiry fan-out to the account's active listings
// all commit or abort together. Validation failures surface before any
// mutation.
func (a *Activator) Activate(ctx context.Context, req ActivationRequest) (*ActivationResult, error) {
	plan, ok := ByName(req.TargetPlan)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, req.TargetPlan)
	}
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidTransition)
	}

	result := &ActivationResult{PlanName: plan.Name, IsRenewal: req.IsRenewal}

	err := a.Txn.WithTransaction(ctx, func(ctx context.Context) error {
		// the gate: a second delivery of the same session dies here, before
		// any plan field is touched
		marker := models.ProcessedSession{
			SessionID:   req.SessionID,
			AccountID:   req.AccountID,
			PlanName:    plan.Name,
			ProcessedAt: a.now(),
		}
		if err := a.Sessions.MarkProcessed(ctx, marker); err != nil {
			if databases.IsDuplicateSession(err) {
				return errAlreadyProcessed
			}
			return err
		}

		current, accountField, err := a.resolveAccount(ctx, req.AccountID)
		if err != nil {
			return err
		}

		currentName := ""
		oldTotal, oldUsed := 0, 0
		if current != nil {
			currentName = current.PlanName
			oldTotal = current.TotalTokens
			oldUsed = current.UsedTokens
		}

		// re-validate server-side, the client's view of the current plan
		// may be stale
		if req.IsRenewal {
			if !IsValidRenewal(currentName, plan.Name) {
				return fmt.Errorf("%w: cannot renew from %q to %q", ErrInvalidTransition, currentName, plan.Name)
			}
		} else {
			if !IsUpgrade(currentName, plan.Name) {
				return fmt.Errorf("%w: cannot upgrade from %q to %q", ErrInvalidTransition, currentName, plan.Name)
			}
		}

		now := a.now()
		endDate := now.Add(time.Duration(plan.ValidityDays) * 24 * time.Hour)
		newTotal := RolloverTokens(oldTotal, oldUsed, plan.Tokens)

		amount := req.Amount
		if amount == 0 {
			amount = plan.Price
		}
		purchase := models.PlanPurchase{
			PlanName:     plan.Name,
			PurchasedAt:  now,
			Amount:       amount,
			SessionID:    req.SessionID,
			Tokens:       plan.Tokens,
			ValidityDays: plan.ValidityDays,
			IsUpgrade:    !req.IsRenewal,
			IsRenewal:    req.IsRenewal,
			PreviousPlan: currentName,
		}

		update := bson.M{
			"$set": bson.M{
				accountField + ".plan.planName":          plan.Name,
				accountField + ".plan.planPrice":         plan.Price,
				accountField + ".plan.startDate":         now,
				accountField + ".plan.endDate":           endDate,
				accountField + ".plan.totalTokens":       newTotal,
				accountField + ".plan.usedTokens":        0,
				accountField + ".plan.lastPaymentStatus": models.PaymentStatusCompleted,
				accountField + ".plan.lastPaymentAt":     now,
				accountField + ".updatedAt":              now,
			},
			"$push": bson.M{
				accountField + ".plan.purchaseHistory": purchase,
			},
		}
		if err := a.updateAccount(ctx, accountField, req.AccountID, update); err != nil {
			return err
		}

		// propagate the new expiry to every active listing this account owns
		audit := models.UpgradeAudit{
			PreviousPlan: currentName,
			NewPlan:      plan.Name,
			NewExpiry:    endDate,
			UpgradedAt:   now,
		}
		res, err := a.Vehicles.UpdateMany(ctx,
			bson.M{
				"vehicle.dealerID":    req.AccountID,
				"vehicle.tokenStatus": models.TokenStatusActive,
			},
			bson.M{
				"$set": bson.M{
					"vehicle.planExpiresAt": endDate,
					"vehicle.upgradeAudit":  audit,
					"vehicle.updatedAt":     now,
				},
			},
		)
		if err != nil {
			return err
		}

		result.Success = true
		result.UpdatedVehicles = res.ModifiedCount
		result.NewEndDate = endDate
		if req.IsRenewal {
			result.Message = fmt.Sprintf("%s renewed", plan.Name)
		} else {
			result.Message = fmt.Sprintf("upgraded to %s", plan.Name)
		}
		return nil
	})

	if errors.Is(err, errAlreadyProcessed) {
		zap.S().Infow("plan activation skipped, session already processed",
			"sessionID", req.SessionID,
			"accountID", req.AccountID,
		)
		result.Success = true
		result.AlreadyProcessed = true
		result.Message = "payment already processed"
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	zap.S().Infow("plan activated",
		"accountID", req.AccountID,
		"plan", plan.Name,
		"isRenewal", req.IsRenewal,
		"updatedVehicles", result.UpdatedVehicles,
	)
	return result, nil
}

// resolveAccount loads the account's current plan, trying dealers first and
// falling back to users: plan data can live in either collection depending
// on how the account was provisioned. The returned field name prefixes the
// nested document in the matching collection.
func (a *Activator) resolveAccount(ctx context.Context, accountID string) (*models.PlanInfo, string, error) {
	dealer, err := a.Dealers.FindOne(ctx, bson.M{"_id": accountID})
	if err == nil && dealer != nil {
		return dealer.Details.Plan, "dealer", nil
	}

	user, err := a.Users.FindOne(ctx, bson.M{"_id": accountID})
	if err == nil && user != nil {
		return user.Details.Plan, "user", nil
	}

	return nil, "", fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
}

func (a *Activator) updateAccount(ctx context.Context, accountField, accountID string, update bson.M) error {
	filter := bson.M{"_id": accountID}
	if accountField == "dealer" {
		_, err := a.Dealers.UpdateOne(ctx, filter, update)
		return err
	}
	_, err := a.Users.UpdateOne(ctx, filter, update)
	return err
}

func (a *Activator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}
