package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carhive/carhive-api/api"
	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
)

// Favorite exported for testing purposes
type Favorite struct {
	DB  databases.FavoriteDatabase
	VDB databases.VehicleDatabase
}

type addFavoriteRequest struct {
	VehicleID string `json:"vehicleID"`
}

// FavoritesHandler returns the authenticated user's saved listings,
// resolved to vehicle summaries. Favorites pointing at listings that no
// longer exist are skipped
func (h Favorite) FavoritesHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	favorites, err := h.DB.Find(r.Context(), bson.M{"userID": identity.ID()})
	if err != nil {
		config.ErrorStatus("failed to get favorites", http.StatusInternalServerError, w, err)
		return
	}

	summaries := []models.VehicleSummary{}
	for _, fav := range favorites {
		vehicle, err := h.VDB.FindOne(r.Context(), bson.M{"_id": fav.VehicleID})
		if err != nil || vehicle == nil {
			continue
		}
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

// AddFavoriteHandler saves a listing for the authenticated user. Saving
// the same listing twice is a no-op
func (h Favorite) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	var req addFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.VehicleID == "" {
		config.ErrorStatus("missing vehicle id", http.StatusBadRequest, w, fmt.Errorf("vehicleID is required"))
		return
	}

	if _, err := h.VDB.FindOne(r.Context(), bson.M{"_id": req.VehicleID}); err != nil {
		config.ErrorStatus("vehicle not found", http.StatusNotFound, w, err)
		return
	}

	existing, err := h.DB.CountDocuments(r.Context(), bson.M{"userID": identity.ID(), "vehicleID": req.VehicleID})
	if err == nil && existing > 0 {
		b, _ := json.Marshal(map[string]interface{}{"saved": true, "vehicleID": req.VehicleID})
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	favorite := models.Favorite{
		ID:        uuid.New().String(),
		UserID:    identity.ID(),
		VehicleID: req.VehicleID,
		CreatedAt: time.Now(),
	}
	if _, err := h.DB.InsertOne(r.Context(), favorite); err != nil {
		config.ErrorStatus("failed to save favorite", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]interface{}{"saved": true, "vehicleID": req.VehicleID})
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// RemoveFavoriteHandler removes a saved listing for the authenticated user
func (h Favorite) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	identity := api.IdentityFromContext(r.Context())
	if identity == nil {
		config.ErrorStatus("missing identity", http.StatusUnauthorized, w, fmt.Errorf("no authenticated account"))
		return
	}

	vehicleID := mux.Vars(r)["vehicle_id"]
	if err := h.DB.DeleteOne(r.Context(), bson.M{"userID": identity.ID(), "vehicleID": vehicleID}); err != nil {
		config.ErrorStatus("failed to remove favorite", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(map[string]interface{}{"removed": true, "vehicleID": vehicleID})
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
