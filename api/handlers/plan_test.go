package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/databases/mocks"
	"github.com/carhive/carhive-api/models"
	"github.com/carhive/carhive-api/plans"
)

func TestUpgradePlanOptionsHandler(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}

	srDealer := &mocks.SingleResultHelper{}
	srDealer.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Dealer)
		(*arg).ID = "acct-1"
		(*arg).Details.Plan = &models.PlanInfo{PlanName: plans.PlanTradersSilver}
	})
	coll := &mocks.CollectionHelper{}
	coll.On("FindOne", mock.Anything, bson.M{"_id": "acct-1"}).Return(srDealer)
	dbHelper.On("Collection", "dealers").Return(coll)

	p := Plan{
		DealerDB: databases.NewDealerDatabase(dbHelper),
		UserDB:   databases.NewUserDatabase(dbHelper),
	}

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/upgrade-plan", nil), "acct-1")
	rr := httptest.NewRecorder()

	p.UpgradePlanOptionsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		CurrentPlan       string   `json:"currentPlan"`
		AvailableUpgrades []string `json:"availableUpgrades"`
		AvailableRenewals []string `json:"availableRenewals"`
		PlanHierarchy     []string `json:"planHierarchy"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, plans.PlanTradersSilver, resp.CurrentPlan)
	assert.Equal(t, []string{plans.PlanTradersGold, plans.PlanTradersPlatinum}, resp.AvailableUpgrades)
	assert.Equal(t, []string{plans.PlanTradersSilver, plans.PlanTradersGold, plans.PlanTradersPlatinum}, resp.AvailableRenewals)
	assert.Equal(t, plans.Hierarchy, resp.PlanHierarchy)
}

func TestUpgradePlanOptionsHandlerUnauthenticated(t *testing.T) {
	p := Plan{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/upgrade-plan", nil)
	rr := httptest.NewRecorder()

	p.UpgradePlanOptionsHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpgradePlanHandlerValidatesInput(t *testing.T) {
	p := Plan{}

	// missing target plan
	body, _ := json.Marshal(map[string]string{"sessionId": "cs_1"})
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/upgrade-plan", bytes.NewReader(body)), "acct-1")
	rr := httptest.NewRecorder()
	p.UpgradePlanHandler(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// missing session id
	body, _ = json.Marshal(map[string]string{"targetPlan": plans.PlanBasic})
	req = authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/upgrade-plan", bytes.NewReader(body)), "acct-1")
	rr = httptest.NewRecorder()
	p.UpgradePlanHandler(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpgradePlanHandlerMapsActivationErrors(t *testing.T) {
	// unknown plan surfaces as a 400 from the activator's validation
	activator := plans.NewActivator(nil, nil, nil, nil, &mocks.TxnRunner{})
	p := Plan{Activator: activator}

	body, _ := json.Marshal(map[string]string{"targetPlan": "Diamond", "sessionId": "cs_1"})
	req := authedRequest(httptest.NewRequest(http.MethodPost, "/api/v1/upgrade-plan", bytes.NewReader(body)), "acct-1")
	rr := httptest.NewRecorder()

	p.UpgradePlanHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
