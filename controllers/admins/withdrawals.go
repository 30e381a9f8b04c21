package admins

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"opeec/database"
	"opeec/middleware"
	"opeec/models"
	"opeec/services/wallet"
	"opeec/utils"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type WithdrawalResponse struct {
	ID              uint    `json:"id"`
	SellerID        uint    `json:"seller_id"`
	SellerName      string  `json:"seller_name"`
	SellerEmail     string  `json:"seller_email"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	PaymentMethod   string  `json:"payment_method"`
	TransactionID   string  `json:"transaction_id,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	ReviewedAt      string  `json:"reviewed_at,omitempty"`
}

var knownStatuses = map[string]bool{
	models.WithdrawalPending:  true,
	models.WithdrawalApproved: true,
	models.WithdrawalPaid:     true,
	models.WithdrawalRejected: true,
}

// GET /admin/withdrawals
func GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	sellerID := r.URL.Query().Get("seller_id")

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if status != "" && !knownStatuses[status] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown status filter"})
		return
	}

	offset := (page - 1) * limit

	db := database.DB
	query := db.Model(&models.WithdrawalRequest{}).
		Joins("JOIN users ON withdrawal_requests.seller_id = users.id")
	if status != "" {
		query = query.Where("withdrawal_requests.status = ?", status)
	}
	if sellerID != "" {
		query = query.Where("withdrawal_requests.seller_id = ?", sellerID)
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	type withdrawalWithSeller struct {
		models.WithdrawalRequest
		SellerName  string
		SellerEmail string
	}

	var rows []withdrawalWithSeller
	err := query.Select("withdrawal_requests.*, users.name as seller_name, users.email as seller_email").
		Offset(offset).
		Limit(limit).
		Order("withdrawal_requests.created_at DESC").
		Find(&rows).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve withdrawal data"})
		return
	}

	response := make([]WithdrawalResponse, 0, len(rows))
	for _, row := range rows {
		item := WithdrawalResponse{
			ID:            row.ID,
			SellerID:      row.SellerID,
			SellerName:    row.SellerName,
			SellerEmail:   row.SellerEmail,
			Amount:        row.Amount,
			Status:        row.Status,
			PaymentMethod: row.PaymentMethod,
			CreatedAt:     row.CreatedAt.Format(time.RFC3339),
		}
		item.TransactionID = utils.GetStringValue(row.ExternalReference)
		item.RejectionReason = utils.GetStringValue(row.RejectionReason)
		if row.ReviewedAt != nil {
			item.ReviewedAt = row.ReviewedAt.Format(time.RFC3339)
		}
		response = append(response, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"data": response,
			"pagination": map[string]interface{}{
				"page":        page,
				"limit":       limit,
				"total_rows":  totalRows,
				"total_pages": int(math.Ceil(float64(totalRows) / float64(limit))),
			},
		},
	})
}

func withdrawalIDFromPath(r *http.Request) (uint, bool) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// writeTransitionError maps service errors onto responses. State conflicts
// include the current status so the admin can resolve manually.
func writeTransitionError(w http.ResponseWriter, err error) {
	var se *wallet.StateError
	switch {
	case errors.As(err, &se):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "Illegal transition: " + se.Error(),
			Data:    map[string]interface{}{"current_status": se.Current},
		})
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Withdrawal request not found"})
	case errors.Is(err, wallet.ErrMissingReference),
		errors.Is(err, wallet.ErrMissingScreenshot),
		errors.Is(err, wallet.ErrMissingReason):
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: err.Error()})
	default:
		utils.Log.Errorf("withdrawal transition: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to update withdrawal request"})
	}
}

type ApproveWithdrawalRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	ScreenshotURL string `json:"screenshot_url" validate:"required"`
}

// PUT /admin/withdrawals/{id}/approve
// The hold already reserved the funds; approval only advances the workflow.
func ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := withdrawalIDFromPath(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal id"})
		return
	}
	adminID, _ := middleware.GetAdminID(r)

	var req ApproveWithdrawalRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	svc := wallet.NewService(database.DB)
	updated, err := svc.ApproveWithdrawal(id, adminID, req.TransactionID, req.ScreenshotURL)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	utils.NotifyWithdrawalReviewed(updated.ID, updated.Status, adminID)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request approved",
		Data: map[string]interface{}{
			"id":     updated.ID,
			"status": updated.Status,
		},
	})
}

type RejectWithdrawalRequest struct {
	RejectionReason string `json:"rejection_reason" validate:"required"`
	TransactionID   string `json:"transaction_id"`
}

// PUT /admin/withdrawals/{id}/reject
// Writes the RELEASE entry reversing the hold.
func RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := withdrawalIDFromPath(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal id"})
		return
	}
	adminID, _ := middleware.GetAdminID(r)

	var req RejectWithdrawalRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	svc := wallet.NewService(database.DB)
	updated, err := svc.RejectWithdrawal(id, adminID, req.RejectionReason, req.TransactionID)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	utils.NotifyWithdrawalReviewed(updated.ID, updated.Status, adminID)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal request rejected, hold released",
		Data: map[string]interface{}{
			"id":     updated.ID,
			"status": updated.Status,
		},
	})
}

type MarkPaidRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// PUT /admin/withdrawals/{id}/paid
// Writes the SELLER_PAYOUT entry: the permanent debit the hold stood in for.
func MarkWithdrawalPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := withdrawalIDFromPath(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal id"})
		return
	}
	adminID, _ := middleware.GetAdminID(r)

	var req MarkPaidRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	svc := wallet.NewService(database.DB)
	updated, err := svc.MarkWithdrawalPaid(id, adminID, req.TransactionID)
	if err != nil {
		writeTransitionError(w, err)
		return
	}

	utils.NotifyWithdrawalReviewed(updated.ID, updated.Status, adminID)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Withdrawal marked as paid",
		Data: map[string]interface{}{
			"id":     updated.ID,
			"status": updated.Status,
		},
	})
}
