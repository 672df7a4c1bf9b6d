package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
)

// Dealer exported for testing purposes
type Dealer struct {
	DB  databases.DealerDatabase
	VDB databases.VehicleDatabase
}

type dealerLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type dealerLoginResponse struct {
	Token  string `json:"token"`
	Dealer struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		CompanyName string `json:"companyName"`
	} `json:"dealer"`
}

// DealerLoginHandler handles dealer login via email/password and returns a JWT
func (h Dealer) DealerLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req dealerLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		config.ErrorStatus("email and password required", http.StatusBadRequest, w, fmt.Errorf("missing credentials"))
		return
	}

	dealer, err := h.DB.FindOne(r.Context(), bson.M{"dealer.email": email})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dealer.Details.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, fmt.Errorf("password mismatch"))
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, fmt.Errorf("JWT_SECRET is not set"))
		return
	}

	claims := jwt.MapClaims{
		"sub":   dealer.ID,
		"email": dealer.Details.Email,
		"scope": "dealer",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}

	var resp dealerLoginResponse
	resp.Token = signed
	resp.Dealer.ID = dealer.ID
	resp.Dealer.Email = dealer.Details.Email
	resp.Dealer.CompanyName = dealer.Details.CompanyName

	b, _ := json.Marshal(resp)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DealerByIDHandler returns a dealer profile by ID, with the password
// stripped and the dealer's active listing count attached
func (h Dealer) DealerByIDHandler(w http.ResponseWriter, r *http.Request) {
	dealerID := mux.Vars(r)["dealer_id"]

	dealer, err := h.DB.FindOne(r.Context(), bson.M{"_id": dealerID})
	if err != nil {
		config.ErrorStatus("failed to get dealer by ID", http.StatusNotFound, w, err)
		return
	}
	dealer.Details.Password = ""

	listingCount, err := h.VDB.CountDocuments(r.Context(), bson.M{"vehicle.dealerID": dealerID})
	if err != nil {
		listingCount = 0
	}

	b, err := json.Marshal(map[string]interface{}{
		"dealer":       dealer,
		"listingCount": listingCount,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateDealerHandler updates the mutable dealer profile fields
func (h Dealer) UpdateDealerHandler(w http.ResponseWriter, r *http.Request) {
	dealerID := mux.Vars(r)["dealer_id"]

	var details models.DealerDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// plan and password stay managed by their own flows
	update := bson.M{
		"dealer.companyName": details.CompanyName,
		"dealer.phone":       details.Phone,
		"dealer.address":     details.Address,
		"dealer.city":        details.City,
		"dealer.country":     details.Country,
		"dealer.logo":        details.Logo,
		"dealer.about":       details.About,
		"dealer.updatedAt":   time.Now(),
	}

	res, err := h.DB.UpdateOne(r.Context(), bson.M{"_id": dealerID}, bson.M{"$set": update})
	if err != nil {
		config.ErrorStatus("failed to update dealer", http.StatusInternalServerError, w, err)
		return
	}
	if res != nil && res.MatchedCount == 0 {
		config.ErrorStatus("dealer not found", http.StatusNotFound, w, fmt.Errorf("no dealer with id %s", dealerID))
		return
	}

	b, _ := json.Marshal(map[string]interface{}{"updated": true, "_id": dealerID})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
