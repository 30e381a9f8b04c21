package admins

import (
	"net/http"
	"strings"
	"time"

	"opeec/database"
	"opeec/models"
	"opeec/utils"
)

type DailyGrowth struct {
	Day   string `json:"day"`
	Count *int64 `json:"count"`
}

type DailyEarnings struct {
	Day    string   `json:"day"`
	Amount *float64 `json:"amount"`
}

type TransactionDetail struct {
	SellerName string    `json:"seller_name"`
	Amount     float64   `json:"amount"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

type TypeTransactions struct {
	OrderEarning  *int64 `json:"order_earning"`
	Refund        *int64 `json:"refund"`
	Penalty       *int64 `json:"penalty"`
	DepositRefund *int64 `json:"deposit_refund"`
	SellerPayout  *int64 `json:"seller_payout"`
}

type DashboardStats struct {
	TotalSellers        int64               `json:"total_sellers"`
	ActiveSellers       int64               `json:"active_sellers"`
	GrowthSellers       []DailyGrowth       `json:"growth_sellers"`
	OverviewEarnings    []DailyEarnings     `json:"overview_earnings"`
	TotalWithdrawals    int64               `json:"total_withdrawals"`
	PendingWithdrawals  int64               `json:"pending_withdrawals"`
	TotalBalance        float64             `json:"total_balance"`
	TypeTransactions    TypeTransactions    `json:"type_transactions"`
	LastTransactions    []TransactionDetail `json:"last_transactions"`
}

func GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	db := database.DB

	// initialize slices to ensure empty arrays are returned (not null)
	stats.GrowthSellers = make([]DailyGrowth, 0)
	stats.OverviewEarnings = make([]DailyEarnings, 0)
	stats.LastTransactions = make([]TransactionDetail, 0)

	// Get total sellers count
	db.Model(&models.User{}).Count(&stats.TotalSellers)

	// Get active sellers count
	db.Model(&models.User{}).
		Where("status = ?", "Active").
		Count(&stats.ActiveSellers)

	// Get growth sellers count by day (sellers created in the last 7 days)
	growthMap := map[string]int64{}
	rows, err := db.Model(&models.User{}).
		Select("DATE_FORMAT(created_at, '%W') as day, COUNT(*) as count").
		Where("created_at >= NOW() - INTERVAL 7 DAY").
		Group("DATE_FORMAT(created_at, '%W')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var count int64
			if scanErr := rows.Scan(&day, &count); scanErr == nil {
				growthMap[strings.TrimSpace(day)] = count
			}
		}
	}
	// Build last 7 days list (from 6 days ago to today)
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dayName := d.Format("Monday")
		if val, ok := growthMap[dayName]; ok {
			v := val
			stats.GrowthSellers = append(stats.GrowthSellers, DailyGrowth{Day: dayName, Count: &v})
		} else {
			stats.GrowthSellers = append(stats.GrowthSellers, DailyGrowth{Day: dayName, Count: nil})
		}
	}

	// Get overview earnings amount by day (completed ORDER_EARNING entries)
	earningsMap := map[string]float64{}
	rows, err = db.Model(&models.TransactionLog{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as day, COALESCE(SUM(amount), 0) as amount").
		Where("type = ? AND status = ? AND created_at >= CURDATE() - INTERVAL 6 DAY", models.TxOrderEarning, models.TxStatusCompleted).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var day string
			var amount float64
			if scanErr := rows.Scan(&day, &amount); scanErr == nil {
				earningsMap[strings.TrimSpace(day)] = amount
			}
		}
	}
	// Build last 7 days list for earnings using date keys (YYYY-MM-DD)
	for i := 6; i >= 0; i-- {
		d := time.Now().AddDate(0, 0, -i)
		dateKey := d.Format("2006-01-02") // matches SQL grouping
		dayName := d.Format("Monday")
		if val, ok := earningsMap[dateKey]; ok {
			v := val
			stats.OverviewEarnings = append(stats.OverviewEarnings, DailyEarnings{Day: dayName, Amount: &v})
		} else {
			stats.OverviewEarnings = append(stats.OverviewEarnings, DailyEarnings{Day: dayName, Amount: nil})
		}
	}

	// Get pending withdrawals count
	db.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalPending).
		Count(&stats.PendingWithdrawals)

	// Get total withdrawals count
	db.Model(&models.WithdrawalRequest{}).Count(&stats.TotalWithdrawals)

	// Get total available balance across all seller wallets
	type Result struct {
		TotalBalance float64
	}
	var result Result
	db.Model(&models.SellerWallet{}).
		Select("COALESCE(SUM(available_balance), 0) as total_balance").
		Scan(&result)
	stats.TotalBalance = result.TotalBalance

	// Type transactions counts (set to null when zero)
	countByType := func(txType string) *int64 {
		var cnt int64
		db.Model(&models.TransactionLog{}).
			Where("type = ? AND status = ?", txType, models.TxStatusCompleted).
			Count(&cnt)
		if cnt > 0 {
			return &cnt
		}
		return nil
	}
	stats.TypeTransactions.OrderEarning = countByType(models.TxOrderEarning)
	stats.TypeTransactions.Refund = countByType(models.TxRefund)
	stats.TypeTransactions.Penalty = countByType(models.TxPenalty)
	stats.TypeTransactions.DepositRefund = countByType(models.TxDepositRefund)
	stats.TypeTransactions.SellerPayout = countByType(models.TxSellerPayout)

	// Get last 10 transactions (join with users table to get seller name)
	rows, err = db.Model(&models.TransactionLog{}).
		Select("users.name as seller_name, transaction_logs.amount, transaction_logs.type, transaction_logs.created_at").
		Joins("JOIN users ON transaction_logs.seller_id = users.id").
		Order("transaction_logs.created_at DESC").
		Limit(10).
		Rows()
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var td TransactionDetail
			if scanErr := rows.Scan(&td.SellerName, &td.Amount, &td.Type, &td.CreatedAt); scanErr == nil {
				stats.LastTransactions = append(stats.LastTransactions, td)
			}
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
