package api

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"

	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/carhive-api/databases"
)

// MiddlewareDB is a struct that holds the account databases used to
// validate credentials
type MiddlewareDB struct {
	DB       databases.UserDatabase
	DealerDB databases.DealerDatabase
}

var authenticator auth.Authenticator
var cache store.Cache

type contextKey string

const identityKey contextKey = "identity"

// Middleware adds bearer-token authentication around accessing the routes
// and stashes the authenticated identity in the request context
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), user)))
	})
}

// ContextWithIdentity stashes an authenticated identity in ctx
func ContextWithIdentity(ctx context.Context, info auth.Info) context.Context {
	return context.WithValue(ctx, identityKey, info)
}

// IdentityFromContext returns the authenticated identity stashed by
// Middleware, or nil on unauthenticated requests
func IdentityFromContext(ctx context.Context) auth.Info {
	info, _ := ctx.Value(identityKey).(auth.Info)
	return info
}

// CreateToken returns a token
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	email, _, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	accountID, err := m.lookupAccountID(r.Context(), email)
	if err != nil {
		http.Error(w, "failed to get account by email", http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	authUser := auth.NewDefaultUser(email, accountID, nil, nil)
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, authUser, r)

	response := map[string]string{
		"token": token,
		"_id":   accountID,
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Write(responseBody)
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24*365*100) // 100 years ttl
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser validates credentials against the users collection, falling
// back to dealers for accounts provisioned there
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	usernameHash := sha256.Sum256([]byte(email))

	dbEmailResp, err := m.DB.Find(context.Background(), bson.M{"user.email": email})
	if err == nil && len(dbEmailResp) > 0 {
		account := dbEmailResp[0]
		expectedUsernameHash := sha256.Sum256([]byte(account.Details.Email))
		usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:]) == 1

		err = bcrypt.CompareHashAndPassword([]byte(account.Details.Password), []byte(password))
		if err != nil {
			return nil, fmt.Errorf("failed to compare password")
		}
		if usernameMatch {
			return auth.NewDefaultUser(email, account.ID, nil, nil), nil
		}
		return nil, fmt.Errorf("invalid credentials")
	}

	dealers, err := m.DealerDB.Find(context.Background(), bson.M{"dealer.email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email")
	}
	if len(dealers) == 0 {
		return nil, fmt.Errorf("no matching email found")
	}

	dealer := dealers[0]
	expectedUsernameHash := sha256.Sum256([]byte(dealer.Details.Email))
	usernameMatch := subtle.ConstantTimeCompare(usernameHash[:], expectedUsernameHash[:]) == 1

	err = bcrypt.CompareHashAndPassword([]byte(dealer.Details.Password), []byte(password))
	if err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}

	if usernameMatch {
		return auth.NewDefaultUser(email, dealer.ID, nil, nil), nil
	}
	return nil, fmt.Errorf("invalid credentials")
}

func (m MiddlewareDB) lookupAccountID(ctx context.Context, email string) (string, error) {
	users, err := m.DB.Find(ctx, bson.M{"user.email": email})
	if err == nil && len(users) > 0 {
		return users[0].ID, nil
	}

	dealers, err := m.DealerDB.Find(ctx, bson.M{"dealer.email": email})
	if err != nil || len(dealers) == 0 {
		return "", fmt.Errorf("no matching email found")
	}
	return dealers[0].ID, nil
}

// RevokeToken revokes a token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
