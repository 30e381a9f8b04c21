package admins

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"opeec/database"
	"opeec/models"
	"opeec/utils"

	"gorm.io/gorm"
)

// Response models
type serverStatus struct {
	Status   bool `json:"status"`
	Database bool `json:"database"`
	Security bool `json:"security"`
}

type applicationsStatus struct {
	PendingWithdrawals  int64 `json:"pending_withdrawals"`
	ApprovedWithdrawals int64 `json:"approved_withdrawals"`
}

type notificationItem struct {
	Notificated bool   `json:"notifycated"`
	Message     string `json:"message"`
	Time        string `json:"time"`
}

type notificationsPayload struct {
	PendingWithdrawals  *[]notificationItem `json:"pending_withdrawals"`
	ApprovedWithdrawals *[]notificationItem `json:"approved_withdrawals"`
	NewSellers          *[]notificationItem `json:"new_sellers"`
}

type adminInfoResponse struct {
	Servers       serverStatus         `json:"servers"`
	Applications  applicationsStatus   `json:"applications"`
	Notifications notificationsPayload `json:"notifications"`
}

// GET /admin/info
func GetAdminInfo(w http.ResponseWriter, r *http.Request) {
	db := database.DB

	// Servers health
	serverOK := true   // If this handler runs, server is up
	dbOK := pingDB(db) // Check DB connectivity with timeout
	securityOK := true

	// Applications: counts
	var pendingWithdrawals int64
	db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.WithdrawalPending).Count(&pendingWithdrawals)

	// Approved but not yet paid out
	var approvedWithdrawals int64
	db.Model(&models.WithdrawalRequest{}).Where("status = ?", models.WithdrawalApproved).Count(&approvedWithdrawals)

	// New sellers today
	now := time.Now()
	loc := now.Location()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)

	var newSellersToday int64
	db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&newSellersToday)

	// Notifications: null when count is 0; otherwise provide a single item
	var notifs notificationsPayload

	if pendingWithdrawals > 0 {
		msg := fmt.Sprintf("%d withdrawal requests awaiting review", pendingWithdrawals)
		items := []notificationItem{
			{Notificated: true, Message: msg, Time: time.Now().Format(time.RFC3339)},
		}
		notifs.PendingWithdrawals = &items
	}

	if approvedWithdrawals > 0 {
		msg := fmt.Sprintf("%d approved withdrawals awaiting payout", approvedWithdrawals)
		items := []notificationItem{
			{Notificated: true, Message: msg, Time: time.Now().Format(time.RFC3339)},
		}
		notifs.ApprovedWithdrawals = &items
	}

	if newSellersToday > 0 {
		msg := fmt.Sprintf("%d new sellers registered today", newSellersToday)
		items := []notificationItem{
			{Notificated: false, Message: msg, Time: time.Now().Format(time.RFC3339)},
		}
		notifs.NewSellers = &items
	}

	resp := adminInfoResponse{
		Servers: serverStatus{
			Status:   serverOK,
			Database: dbOK,
			Security: securityOK,
		},
		Applications: applicationsStatus{
			PendingWithdrawals:  pendingWithdrawals,
			ApprovedWithdrawals: approvedWithdrawals,
		},
		Notifications: notifs,
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    resp,
	})
}

func pingDB(gdb *gorm.DB) bool {
	if gdb == nil {
		return false
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return false
	}
	return true
}
