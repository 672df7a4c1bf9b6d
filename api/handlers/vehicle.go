package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/api"
	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
)

// Page holds the page number for paginated list endpoints
var Page int

// Vehicle exported for testing purposes
type Vehicle struct {
	DB         databases.VehicleDatabase
	InactiveDB databases.VehicleDatabase
	UserDB     databases.UserDatabase
	DealerDB   databases.DealerDatabase
}

// VehicleHandler returns featured/new-arrival vehicles, newest first
func (v Vehicle) VehicleHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf(fmt.Sprintf("limit not set, using default of %v, err: %v", Limit|10, err))
		Limit = 10
	}
	limit64 := int64(Limit)
	Page = getPage(Page, r)
	skip64 := int64(Page * Limit)
	dbResp, err := v.DB.Find(context.TODO(), bson.D{}, &options.FindOptions{
		Limit: &limit64,
		Skip:  &skip64,
		Sort:  bson.D{{Key: "vehicle.createdAt", Value: -1}},
	})
	if err != nil {
		config.ErrorStatus("failed to get vehicles", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Vehicles exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.Vehicle{}
	}
	summaries := make([]models.VehicleSummary, 0, len(dbResp))
	for _, vehicle := range dbResp {
		summaries = append(summaries, vehicle.Summary())
	}
	b, err := json.Marshal(summaries)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VehicleByIDHandler returns a vehicle by ID
func (v Vehicle) VehicleByIDHandler(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]

	zap.S().Debugf("vehicle_id: %v", vehicleID)

	dbResp, err := v.DB.FindOne(context.Background(), bson.M{"_id": vehicleID})
	if err != nil {
		config.ErrorStatus("failed to get vehicle by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateVehicleHandler creates a listing for the authenticated account,
// consuming one listing token
func (v Vehicle) CreateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}
	accountID := identity.ID()

	var details models.VehicleDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	plan, accountField, err := v.resolveAccountPlan(r.Context(), accountID)
	if err != nil {
		config.ErrorStatus("failed to resolve account", http.StatusNotFound, w, err)
		return
	}
	if plan == nil {
		config.ErrorStatus("no active plan", http.StatusBadRequest, w, fmt.Errorf("account %s has no plan", accountID))
		return
	}
	if time.Now().After(plan.EndDate) {
		config.ErrorStatus("plan expired", http.StatusBadRequest, w, fmt.Errorf("plan ended %v", plan.EndDate))
		return
	}

	// consume a token with a guarded server-side increment so two
	// concurrent listings cannot both spend the last token
	consumed, err := v.consumeToken(r.Context(), accountField, accountID)
	if err != nil {
		config.ErrorStatus("failed to consume listing token", http.StatusInternalServerError, w, err)
		return
	}
	if !consumed {
		config.ErrorStatus("no listing tokens remaining", http.StatusBadRequest, w, fmt.Errorf("usedTokens == totalTokens"))
		return
	}

	now := time.Now().UTC()
	details.DealerID = accountID
	details.TokenStatus = models.TokenStatusActive
	details.PlanExpiresAt = &plan.EndDate
	details.CreatedAt = now
	details.UpdatedAt = now

	vehicle := models.Vehicle{
		ID:      uuid.New().String(),
		Details: details,
	}
	if _, err := v.DB.InsertOne(r.Context(), vehicle); err != nil {
		config.ErrorStatus("failed to create vehicle", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(vehicle)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateVehicleHandler updates a vehicle by ID. Only the account that owns
// the listing can change it
func (v Vehicle) UpdateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}
	vehicleID := mux.Vars(r)["vehicle_id"]

	var details map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"vehicle.updatedAt": time.Now().UTC()}
	for key, value := range details {
		switch key {
		case "dealerID", "tokenStatus", "planExpiresAt", "upgradeAudit", "createdAt", "updatedAt":
			// managed fields, not client-writable
		default:
			set["vehicle."+key] = value
		}
	}

	// the ownership filter makes an update of someone else's listing
	// indistinguishable from a missing one
	res, err := v.DB.UpdateOne(r.Context(), bson.M{"_id": vehicleID, "vehicle.dealerID": identity.ID()}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update vehicle", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("vehicle not found", http.StatusNotFound, w, fmt.Errorf("no vehicle with id %s owned by %s", vehicleID, identity.ID()))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"updated": "%s"}`, vehicleID)))
}

// DeleteVehicleHandler deletes a vehicle by ID. Only the account that owns
// the listing can remove it
func (v Vehicle) DeleteVehicleHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}
	vehicleID := mux.Vars(r)["vehicle_id"]

	owned := bson.M{"_id": vehicleID, "vehicle.dealerID": identity.ID()}
	if _, err := v.DB.FindOne(r.Context(), owned); err != nil {
		config.ErrorStatus("vehicle not found", http.StatusNotFound, w, err)
		return
	}

	err := v.DB.DeleteOne(r.Context(), owned)
	if err != nil {
		config.ErrorStatus("failed to delete vehicle", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(fmt.Sprintf(`{"deleted": "%s"}`, vehicleID)))
}

// VehiclesByDealerIDHandler returns a dealer's listings, active and retired,
// segregated by source collection
func (v Vehicle) VehiclesByDealerIDHandler(w http.ResponseWriter, r *http.Request) {
	dealerID := mux.Vars(r)["dealer_id"]

	zap.S().Debugf("dealer_id: '%v'", dealerID)

	active, err := v.DB.Find(context.TODO(), bson.M{"vehicle.dealerID": dealerID})
	if err != nil {
		config.ErrorStatus("failed to get dealer vehicles", http.StatusNotFound, w, err)
		return
	}
	inactive, err := v.InactiveDB.Find(context.TODO(), bson.M{"vehicle.dealerID": dealerID})
	if err != nil {
		config.ErrorStatus("failed to get inactive dealer vehicles", http.StatusNotFound, w, err)
		return
	}

	if len(active) == 0 {
		active = []models.Vehicle{}
	}
	if len(inactive) == 0 {
		inactive = []models.Vehicle{}
	}

	b, err := json.Marshal(map[string][]models.Vehicle{
		"vehicles":         active,
		"inactiveVehicles": inactive,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// resolveAccountPlan loads the plan for accountID, trying the dealers
// collection first and falling back to users
func (v Vehicle) resolveAccountPlan(ctx context.Context, accountID string) (*models.PlanInfo, string, error) {
	dealer, err := v.DealerDB.FindOne(ctx, bson.M{"_id": accountID})
	if err == nil && dealer != nil {
		return dealer.Details.Plan, "dealer", nil
	}

	user, err := v.UserDB.FindOne(ctx, bson.M{"_id": accountID})
	if err == nil && user != nil {
		return user.Details.Plan, "user", nil
	}

	return nil, "", fmt.Errorf("account %s not found", accountID)
}

// consumeToken increments usedTokens only while tokens remain; the guard
// lives in the filter so the check and increment are one document operation
func (v Vehicle) consumeToken(ctx context.Context, accountField, accountID string) (bool, error) {
	filter := bson.M{
		"_id": accountID,
		"$expr": bson.M{
			"$lt": bson.A{"$" + accountField + ".plan.usedTokens", "$" + accountField + ".plan.totalTokens"},
		},
	}
	update := bson.M{"$inc": bson.M{accountField + ".plan.usedTokens": 1}}

	if accountField == "dealer" {
		res, err := v.DealerDB.UpdateOne(ctx, filter, update)
		if err != nil {
			return false, err
		}
		return res.ModifiedCount > 0, nil
	}
	res, err := v.UserDB.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func getPage(Page int, r *http.Request) int {
	if r.URL.Query().Get("page") == "" {
		zap.S().Warnf("page not set, using default of %v", Page)
	} else {
		var err error
		Page, err = strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			zap.S().Errorf(fmt.Sprintf("error parsing page number: %v", err))
		}
		if Page < 0 {
			zap.S().Warnf(fmt.Sprintf("cannot process page number less than 1. Got: %v", Page))
			return 0
		}
	}
	return Page
}
