package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"opeec/controllers"
	"opeec/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "opeec-wallet-api",
	})
}

func InitRouter() *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for Docker health checks (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// Add CORS middleware - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	origins := []string{
		"https://opeec.com", "https://admin.opeec.com",
		"http://localhost:3000", "http://localhost:8080", "http://127.0.0.1:3000", "http://127.0.0.1:8080",
	}
	if originsEnv != "" {
		parts := strings.Split(originsEnv, ",")
		for _, p := range parts {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-CRON-KEY", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Add catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Rate limiter for internal settlement calls: 1000/hour, whitelisted callers bypass
	settlementLimiter := middleware.NewWebhookLimiter(1000, time.Hour, []string{"127.0.0.1"})

	// Internal settlement endpoint for the order service (protected via X-CRON-KEY header)
	api.Handle("/internal/settlements", settlementLimiter.Middleware(http.HandlerFunc(controllers.ProcessSettlementHandler))).Methods(http.MethodPost)

	// Health check endpoint under the API prefix
	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// Seller-facing routes
	SellersRoutes(api)

	// Admin routes
	SetAdminRoutes(api)

	return r
}
