package routes

import (
	"net/http"
	"time"

	"opeec/controllers/admins"
	"opeec/middleware"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.Login))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Dashboard stats
	adminRouter.Handle("/dashboard", http.HandlerFunc(admins.GetDashboardStats)).Methods(http.MethodGet)

	// Admin info
	adminRouter.Handle("/info", http.HandlerFunc(admins.GetAdminInfo)).Methods(http.MethodGet)

	// Admin profile
	adminRouter.Handle("/profile", http.HandlerFunc(admins.GetAdminProfile)).Methods(http.MethodGet)
	adminRouter.Handle("/profile", http.HandlerFunc(admins.UpdateAdminProfile)).Methods(http.MethodPut)
	adminRouter.Handle("/password", http.HandlerFunc(admins.UpdateAdminPassword)).Methods(http.MethodPut)

	// Seller management
	adminRouter.Handle("/sellers", http.HandlerFunc(admins.GetSellers)).Methods(http.MethodGet)
	adminRouter.Handle("/sellers/{id:[0-9]+}", http.HandlerFunc(admins.GetSellerDetail)).Methods(http.MethodGet)
	adminRouter.Handle("/sellers/{id:[0-9]+}", http.HandlerFunc(admins.UpdateSeller)).Methods(http.MethodPut)
	adminRouter.Handle("/sellers/password/{id:[0-9]+}", http.HandlerFunc(admins.UpdateSellerPassword)).Methods(http.MethodPut)

	// Withdrawal management
	adminRouter.Handle("/withdrawals", http.HandlerFunc(admins.GetWithdrawals)).Methods(http.MethodGet)
	adminRouter.Handle("/withdrawals/{id:[0-9]+}/approve", http.HandlerFunc(admins.ApproveWithdrawal)).Methods(http.MethodPut)
	adminRouter.Handle("/withdrawals/{id:[0-9]+}/reject", http.HandlerFunc(admins.RejectWithdrawal)).Methods(http.MethodPut)
	adminRouter.Handle("/withdrawals/{id:[0-9]+}/paid", http.HandlerFunc(admins.MarkWithdrawalPaid)).Methods(http.MethodPut)

	// Payment proof upload
	adminRouter.Handle("/uploads/payment-proof", http.HandlerFunc(admins.UploadPaymentProof)).Methods(http.MethodPost)

	// Ledger listing, export and summary
	adminRouter.Handle("/finance/transactions", http.HandlerFunc(admins.GetFinanceTransactions)).Methods(http.MethodGet)
	adminRouter.Handle("/finance/transactions/export", http.HandlerFunc(admins.ExportFinanceTransactions)).Methods(http.MethodGet)
	adminRouter.Handle("/finance/summary", http.HandlerFunc(admins.GetFinanceSummary)).Methods(http.MethodGet)
}
