package routes

import (
	"net/http"
	"time"

	"opeec/controllers/auth"
	"opeec/controllers/sellers"
	"opeec/middleware"

	"github.com/gorilla/mux"
)

// SellersRoutes registers all seller-facing routes on the given subrouter
func SellersRoutes(api *mux.Router) {
	// Rate limiter for login/refresh: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter per session: 120 read, 60 write, 60 second window
	sellerLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	// Login & session management
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutHandler)))).Methods(http.MethodPost)
	api.Handle("/logout-all", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(auth.LogoutAllHandler)))).Methods(http.MethodPost)

	// Wallet info and cache refresh
	api.Handle("/sellers/wallet", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(sellers.GetWalletInfoHandler)))).Methods(http.MethodGet)
	api.Handle("/sellers/wallet/refresh", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(sellers.RefreshWalletHandler)))).Methods(http.MethodPost)

	// Ledger history
	api.Handle("/sellers/transactions", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(sellers.ListTransactionsHandler)))).Methods(http.MethodGet)

	// Withdrawal request and listing
	api.Handle("/sellers/withdrawal", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(sellers.CreateWithdrawalHandler)))).Methods(http.MethodPost)
	api.Handle("/sellers/withdrawal", sellerLimiter.Middleware(middleware.AuthMiddleware(http.HandlerFunc(sellers.ListWithdrawalsHandler)))).Methods(http.MethodGet)
}
