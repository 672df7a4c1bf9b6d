package config

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	URL                 string
	DatabaseName        string
	BaseURL             string
	Port                string
	AlgoliaAppID        string
	AlgoliaAPIKey       string
	AlgoliaIndexName    string
	StripeSecretKey     string
	StripeWebhookSecret string
	SendgridAPIKey      string
	JWTSecret           string
}

// New sets up all config related services
func New() *Config {

	// load .env if present, real env wins
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                 os.Getenv("DB_URI"),
		DatabaseName:        os.Getenv("DB_NAME"),
		BaseURL:             os.Getenv("BASE_URL"),
		Port:                os.Getenv("PORT"),
		AlgoliaAppID:        os.Getenv("ALGOLIA_APP_ID"),
		AlgoliaAPIKey:       os.Getenv("ALGOLIA_API_KEY"),
		AlgoliaIndexName:    os.Getenv("ALGOLIA_INDEX"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SendgridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
	}

}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	w.Write([]byte(fmt.Sprintf(`{"response": "%s, %v"}`, message, err)))
	return
}
