package sellers

import (
	"net/http"
	"time"

	"opeec/database"
	"opeec/models"
	"opeec/services/wallet"
	"opeec/utils"
)

// withdrawalView is one row in the wallet screen. Amounts are shown negated
// because every listed request is an outflow from the seller's point of view.
type withdrawalView struct {
	ID              uint    `json:"id"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	TransactionID   string  `json:"transaction_id,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
}

func formatWithdrawal(r models.WithdrawalRequest) withdrawalView {
	v := withdrawalView{
		ID:            r.ID,
		Amount:        -r.Amount,
		Status:        r.Status,
		PaymentMethod: r.PaymentMethod,
		Date:          r.CreatedAt.Format("Jan 2, 2006"),
		Time:          r.CreatedAt.Format("3:04 PM"),
	}
	v.TransactionID = utils.GetStringValue(r.ExternalReference)
	v.RejectionReason = utils.GetStringValue(r.RejectionReason)
	return v
}

// GET /sellers/wallet
func GetWalletInfoHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	svc := wallet.NewService(database.DB)
	bal, err := svc.GetBalances(uid, false)
	if err != nil {
		utils.Log.Errorf("wallet info: balance for seller %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load wallet"})
		return
	}

	var requests []models.WithdrawalRequest
	if err := database.DB.Where("seller_id = ?", uid).Order("created_at DESC").Find(&requests).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to load withdrawal requests"})
		return
	}

	pending := make([]withdrawalView, 0)
	history := make([]withdrawalView, 0)
	for _, req := range requests {
		if req.Status == models.WithdrawalPending {
			pending = append(pending, formatWithdrawal(req))
		} else {
			history = append(history, formatWithdrawal(req))
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"available_balance": bal.AvailableBalance,
			"pending_balance":   bal.PendingBalance,
			"pending":           pending,
			"history":           history,
			"as_of":             time.Now().Format(time.RFC3339),
		},
	})
}

// POST /sellers/wallet/refresh
// Forces a full refold of the ledger, bypassing the cached projection.
func RefreshWalletHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	svc := wallet.NewService(database.DB)
	bal, err := svc.ComputeBalance(uid)
	if err != nil {
		utils.Log.Errorf("wallet refresh: seller %d: %v", uid, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to refresh wallet"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Wallet refreshed",
		Data: map[string]interface{}{
			"available_balance": bal.AvailableBalance,
		},
	})
}
