package sellers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"opeec/database"
	"opeec/middleware"
	"opeec/models"
	"opeec/services/wallet"
	"opeec/utils"

	"gorm.io/gorm"
)

type CreateWithdrawalRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method"`
}

var knownStatuses = map[string]bool{
	models.WithdrawalPending:  true,
	models.WithdrawalApproved: true,
	models.WithdrawalPaid:     true,
	models.WithdrawalRejected: true,
}

// POST /sellers/withdrawal
func CreateWithdrawalHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateWithdrawalRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	// Only active sellers can cash out.
	var user models.User
	if err := database.DB.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Account not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error, please try again"})
		return
	}
	if strings.ToLower(user.Status) != "active" {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Your account is not active, please contact support"})
		return
	}

	svc := wallet.NewService(database.DB)
	created, err := svc.CreateWithdrawal(uid, req.Amount, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Valid withdrawal amount is required"})
		case errors.Is(err, wallet.ErrInsufficientBalance):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Insufficient balance"})
		default:
			utils.Log.Errorf("create withdrawal: seller %d: %v", uid, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error, please try again"})
		}
		return
	}

	// Best-effort after the hold committed; failure never unwinds the ledger.
	utils.NotifyWithdrawalRequested(created.ID, uid, created.Amount)

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request submitted",
		Data: map[string]interface{}{
			"withdrawal": map[string]interface{}{
				"id":             created.ID,
				"amount":         created.Amount,
				"payment_method": created.PaymentMethod,
				"status":         created.Status,
				"created_at":     created.CreatedAt.Format("Jan 2, 2006 3:04 PM"),
			},
		},
	})
}

// GET /sellers/withdrawal
func ListWithdrawalsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !knownStatuses[status] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown status filter"})
		return
	}

	db := database.DB
	countQuery := db.Model(&models.WithdrawalRequest{}).Where("seller_id = ?", uid)
	if status != "" {
		countQuery = countQuery.Where("status = ?", status)
	}

	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var requests []models.WithdrawalRequest
	query := db.Where("seller_id = ?", uid)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("id DESC").Limit(limit).Offset(offset).Find(&requests).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	items := make([]withdrawalView, 0, len(requests))
	for _, req := range requests {
		items = append(items, formatWithdrawal(req))
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": items,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": totalPages,
			},
		},
	})
}
