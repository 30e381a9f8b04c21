package admins

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"opeec/database"
	"opeec/models"
	"opeec/utils"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type LedgerEntryResponse struct {
	ID          uint    `json:"id"`
	SellerID    uint    `json:"seller_id"`
	SellerName  string  `json:"seller_name"`
	SellerEmail string  `json:"seller_email"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	OrderID     *uint   `json:"order_id,omitempty"`
	ReferenceID string  `json:"reference_id"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

var knownTxTypes = map[string]bool{
	models.TxOrderEarning:    true,
	models.TxPenalty:         true,
	models.TxRefund:          true,
	models.TxDepositRefund:   true,
	models.TxSellerPayout:    true,
	models.TxWithdrawHold:    true,
	models.TxWithdrawRelease: true,
}

// ledgerQuery applies the shared filter set for the listing and export
// endpoints. Returns nil and writes the response itself on a bad filter.
func ledgerQuery(w http.ResponseWriter, r *http.Request) *gorm.DB {
	sellerID := r.URL.Query().Get("seller_id")
	txType := r.URL.Query().Get("type")
	status := r.URL.Query().Get("status")
	orderID := r.URL.Query().Get("order_id")
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	if txType != "" && !knownTxTypes[txType] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown transaction type filter"})
		return nil
	}

	query := database.DB.Model(&models.TransactionLog{}).
		Joins("JOIN users ON transaction_logs.seller_id = users.id")

	if sellerID != "" {
		query = query.Where("transaction_logs.seller_id = ?", sellerID)
	}
	if txType != "" {
		query = query.Where("transaction_logs.type = ?", txType)
	}
	if status != "" {
		query = query.Where("transaction_logs.status = ?", status)
	}
	if orderID != "" {
		query = query.Where("transaction_logs.order_id = ?", orderID)
	}
	if startDate != "" {
		if startTime, err := time.Parse("2006-01-02", startDate); err == nil {
			query = query.Where("transaction_logs.created_at >= ?", startTime)
		}
	}
	if endDate != "" {
		if endTime, err := time.Parse("2006-01-02", endDate); err == nil {
			// Inclusive end date: everything before the start of the next day
			query = query.Where("transaction_logs.created_at < ?", endTime.AddDate(0, 0, 1))
		}
	}
	return query
}

type ledgerRow struct {
	models.TransactionLog
	SellerName  string
	SellerEmail string
}

// GET /admin/finance/transactions
func GetFinanceTransactions(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := ledgerQuery(w, r)
	if query == nil {
		return
	}

	var totalRows int64
	if err := query.Count(&totalRows).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve transactions"})
		return
	}

	var rows []ledgerRow
	err := query.Select("transaction_logs.*, users.name as seller_name, users.email as seller_email").
		Offset(offset).
		Limit(limit).
		Order("transaction_logs.created_at DESC, transaction_logs.id DESC").
		Find(&rows).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve transactions"})
		return
	}

	response := make([]LedgerEntryResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, LedgerEntryResponse{
			ID:          row.ID,
			SellerID:    row.SellerID,
			SellerName:  row.SellerName,
			SellerEmail: row.SellerEmail,
			Type:        row.Type,
			Amount:      row.Amount,
			Status:      row.Status,
			OrderID:     row.OrderID,
			ReferenceID: row.ReferenceID,
			Description: row.Description,
			CreatedAt:   row.CreatedAt.Format(time.RFC3339),
		})
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

// GET /admin/finance/transactions/export
//
// Streams the filtered ledger as an .xlsx workbook. No pagination: the
// export honors the same filters as the listing and emits every match.
func ExportFinanceTransactions(w http.ResponseWriter, r *http.Request) {
	query := ledgerQuery(w, r)
	if query == nil {
		return
	}

	var rows []ledgerRow
	err := query.Select("transaction_logs.*, users.name as seller_name, users.email as seller_email").
		Order("transaction_logs.created_at ASC, transaction_logs.id ASC").
		Find(&rows).Error
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to retrieve transactions"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to build export"})
		return
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"ID", "Seller ID", "Seller Name", "Seller Email", "Type", "Amount", "Status", "Order ID", "Reference ID", "Description", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, row := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), row.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), row.SellerID)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), row.SellerName)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), row.SellerEmail)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), row.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), row.Amount)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", rowIndex), row.Status)
		if row.OrderID != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("H%d", rowIndex), *row.OrderID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", rowIndex), row.ReferenceID)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", rowIndex), row.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", rowIndex), row.CreatedAt.Format(time.RFC3339))
		rowIndex++
	}

	fileName := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	if err := f.Write(w); err != nil {
		utils.Log.Errorf("finance export: writing workbook: %v", err)
	}
}

type typeSummary struct {
	Type  string  `json:"type"`
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// GET /admin/finance/summary
func GetFinanceSummary(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	byType := make([]typeSummary, 0)
	rows, err := db.Model(&models.TransactionLog{}).
		Select("type, COUNT(*) as count, COALESCE(SUM(amount), 0) as total").
		Where("status = ?", models.TxStatusCompleted).
		Group("type").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var ts typeSummary
			if scanErr := rows.Scan(&ts.Type, &ts.Count, &ts.Total); scanErr == nil {
				byType = append(byType, ts)
			}
		}
	}

	var pendingWithdrawals, approvedWithdrawals int64
	db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.WithdrawalPending).Count(&pendingWithdrawals)
	db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.WithdrawalApproved).Count(&approvedWithdrawals)

	type sums struct {
		HeldAmount     float64
		PaidOutAmount  float64
		TotalAvailable float64
	}
	var s sums
	db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0) as held_amount").
		Where("status IN ?", []string{models.WithdrawalPending, models.WithdrawalApproved}).
		Scan(&s.HeldAmount)
	db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0) as paid_out_amount").
		Where("status = ?", models.WithdrawalPaid).
		Scan(&s.PaidOutAmount)
	db.Model(&models.SellerWallet{}).
		Select("COALESCE(SUM(available_balance), 0) as total_available").
		Scan(&s.TotalAvailable)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"by_type": byType,
			"withdrawals": map[string]interface{}{
				"pending_count":   pendingWithdrawals,
				"approved_count":  approvedWithdrawals,
				"held_amount":     utils.Round2(s.HeldAmount),
				"paid_out_amount": utils.Round2(s.PaidOutAmount),
			},
			"total_available_balance": utils.Round2(s.TotalAvailable),
		},
	})
}
