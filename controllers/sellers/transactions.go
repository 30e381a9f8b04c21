package sellers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"opeec/database"
	"opeec/models"
	"opeec/utils"
)

type transactionView struct {
	ID          uint               `json:"id"`
	Type        string             `json:"type"`
	Amount      float64            `json:"amount"`
	Direction   string             `json:"direction"`
	Status      string             `json:"status"`
	OrderID     *uint              `json:"order_id,omitempty"`
	ReferenceID string             `json:"reference_id"`
	Description string             `json:"description"`
	Metadata    *models.TxMetadata `json:"metadata,omitempty"`
	CreatedAt   string             `json:"created_at"`
}

func direction(e *models.TransactionLog) string {
	if e.Credits() {
		return "credit"
	}
	return "debit"
}

// GET /sellers/transactions
//
// Paginated ledger history for the authenticated seller, optionally filtered
// by entry type.
func ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := utils.GetUserID(r)
	if !ok || uid == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	txType := strings.TrimSpace(r.URL.Query().Get("type"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}

	db := database.DB

	countQuery := db.Model(&models.TransactionLog{}).Where("seller_id = ?", uid)
	if txType != "" {
		countQuery = countQuery.Where("type = ?", txType)
	}

	var totalRows int64
	if err := countQuery.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	totalPages := int(math.Ceil(float64(totalRows) / float64(limit)))
	offset := (page - 1) * limit

	var entries []models.TransactionLog
	query := db.Where("seller_id = ?", uid)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Database error"})
		return
	}

	items := make([]transactionView, 0, len(entries))
	for _, e := range entries {
		items = append(items, transactionView{
			ID:          e.ID,
			Type:        e.Type,
			Amount:      e.Amount,
			Direction:   direction(&e),
			Status:      e.Status,
			OrderID:     e.OrderID,
			ReferenceID: e.ReferenceID,
			Description: e.Description,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
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
