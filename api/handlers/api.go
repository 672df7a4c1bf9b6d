package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/api"
	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
	"github.com/carhive/carhive-api/plans"
	"github.com/carhive/carhive-api/search"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{
		DB:       databases.NewUserDatabase(a.dbHelper),
		DealerDB: databases.NewDealerDatabase(a.dbHelper),
	}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	vehicleDB := databases.NewVehicleDatabase(a.dbHelper)
	inactiveDB := databases.NewInactiveVehicleDatabase(a.dbHelper)
	userDB := databases.NewUserDatabase(a.dbHelper)
	dealerDB := databases.NewDealerDatabase(a.dbHelper)
	sessionDB := databases.NewProcessedSessionDatabase(a.dbHelper)
	txn := databases.NewTxnRunner(a.client)

	resultCache := search.NewResultCache(search.DefaultCacheTTL, nil)
	var index search.Index
	if a.Config.AlgoliaAppID != "" {
		index = search.NewAlgoliaIndex(a.Config.AlgoliaAppID, a.Config.AlgoliaAPIKey, a.Config.AlgoliaIndexName)
	}
	searchService := search.NewService(index, vehicleDB, resultCache, search.DefaultMaxHits)

	activator := plans.NewActivator(dealerDB, userDB, vehicleDB, sessionDB, txn)

	v := Vehicle{DB: vehicleDB, InactiveDB: inactiveDB, UserDB: userDB, DealerDB: dealerDB}
	s := Search{Service: searchService}
	p := Plan{Activator: activator, UserDB: userDB, DealerDB: dealerDB, BaseURL: a.Config.BaseURL}
	w := Webhook{Activator: activator, WebhookSecret: a.Config.StripeWebhookSecret}
	d := Dealer{DB: dealerDB, VDB: vehicleDB}
	art := Article{DB: databases.NewArticleDatabase(a.dbHelper)}
	fav := Favorite{DB: databases.NewFavoriteDatabase(a.dbHelper), VDB: vehicleDB}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/dealer/login", http.HandlerFunc(d.DealerLoginHandler)).Methods("POST")
	apiCreate.Handle("/dealer/{dealer_id}", api.Middleware(http.HandlerFunc(d.DealerByIDHandler))).Methods("GET")
	apiCreate.Handle("/dealer/{dealer_id}", api.Middleware(http.HandlerFunc(d.UpdateDealerHandler))).Methods("PUT")

	apiCreate.Handle("/vehicles", api.Middleware(http.HandlerFunc(v.VehicleHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/search", api.Middleware(http.HandlerFunc(s.KeywordSearchHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/browse", api.Middleware(http.HandlerFunc(s.BrowseHandler))).Methods("GET")
	apiCreate.Handle("/vehicles/dealer/{dealer_id}", api.Middleware(http.HandlerFunc(v.VehiclesByDealerIDHandler))).Methods("GET")
	apiCreate.Handle("/vehicle", api.Middleware(http.HandlerFunc(v.CreateVehicleHandler))).Methods("POST")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.VehicleByIDHandler))).Methods("GET")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.UpdateVehicleHandler))).Methods("PUT")
	apiCreate.Handle("/vehicle/{vehicle_id}", api.Middleware(http.HandlerFunc(v.DeleteVehicleHandler))).Methods("DELETE")

	apiCreate.Handle("/articles", api.Middleware(http.HandlerFunc(art.ArticleHandler))).Methods("GET")
	apiCreate.Handle("/articles", api.Middleware(http.HandlerFunc(art.CreateArticleHandler))).Methods("POST")
	apiCreate.Handle("/articles/{slug}", api.Middleware(http.HandlerFunc(art.ArticleBySlugHandler))).Methods("GET")

	apiCreate.Handle("/favorites", api.Middleware(http.HandlerFunc(fav.FavoritesHandler))).Methods("GET")
	apiCreate.Handle("/favorites", api.Middleware(http.HandlerFunc(fav.AddFavoriteHandler))).Methods("POST")
	apiCreate.Handle("/favorites/{vehicle_id}", api.Middleware(http.HandlerFunc(fav.RemoveFavoriteHandler))).Methods("DELETE")

	apiCreate.Handle("/create-checkout-session", api.Middleware(http.HandlerFunc(p.CreateCheckoutSessionHandler))).Methods("POST")
	apiCreate.Handle("/verify-payment", api.Middleware(http.HandlerFunc(p.VerifyPaymentHandler))).Methods("POST")
	apiCreate.Handle("/upgrade-plan", api.Middleware(http.HandlerFunc(p.UpgradePlanOptionsHandler))).Methods("GET")
	apiCreate.Handle("/upgrade-plan", api.Middleware(http.HandlerFunc(p.UpgradePlanHandler))).Methods("POST")

	apiCreate.Handle("/stripe/webhook", http.HandlerFunc(w.StripeWebhookHandler)).Methods("POST")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/success", http.HandlerFunc(p.handleSuccessRedirect)).Methods("GET")
	apiCreate.Handle("/cancel", http.HandlerFunc(p.handleCancelRedirect)).Methods("GET")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("carhive-api has connected to the database")

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// initialize api router
	a.initializeRoutes()
	return nil

}

// DBHelper exposes the database helper for wiring the scheduler in main
func (a *App) DBHelper() databases.DatabaseHelper {
	return a.dbHelper
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
