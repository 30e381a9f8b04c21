package controllers

import (
	"errors"
	"net/http"
	"os"

	"opeec/database"
	"opeec/middleware"
	"opeec/models"
	"opeec/services/wallet"
	"opeec/utils"

	"gorm.io/gorm"
)

type SettlementRequest struct {
	OrderID uint   `json:"order_id" validate:"required"`
	Event   string `json:"event" validate:"required"`
}

var knownEvents = map[string]bool{
	wallet.EventCompleted:             true,
	wallet.EventCancelledBeforeCutoff: true,
	wallet.EventCancelledAfterCutoff:  true,
	wallet.EventLateReturnWithPenalty: true,
	wallet.EventDepositRefund:         true,
}

// POST /api/internal/settlements (protected via X-CRON-KEY header)
//
// Called by the order service when a rental reaches a lifecycle event that
// moves money. Booking is idempotent per (order, entry type), so the caller
// may safely retry on timeouts.
func ProcessSettlementHandler(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-CRON-KEY")
	if key == "" || key != os.Getenv("CRON_KEY") {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	var req SettlementRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if !knownEvents[req.Event] {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Unknown settlement event"})
		return
	}

	db := database.DB
	var order models.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Order not found"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}

	if v := wallet.ValidateOrderForSettlement(&order); !v.IsValid {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.APIResponse{
			Success: false,
			Message: "Order is not eligible for settlement",
			Data:    map[string]interface{}{"reason": v.Reason},
		})
		return
	}

	svc := wallet.NewService(db)
	booked, skipped, err := svc.ApplySettlement(&order, req.Event)
	if err != nil {
		utils.Log.Errorf("settlement: order %d event %s: %v", order.ID, req.Event, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Failed to process settlement"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(booked))
	for _, e := range booked {
		entries = append(entries, map[string]interface{}{
			"id":           e.ID,
			"type":         e.Type,
			"amount":       e.Amount,
			"reference_id": e.ReferenceID,
		})
	}
	if skipped == nil {
		skipped = []string{}
	}

	utils.Log.Infof("settlement: order %d event %s booked=%d skipped=%d", order.ID, req.Event, len(booked), len(skipped))
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Settlement processed",
		Data: map[string]interface{}{
			"order_id": order.ID,
			"event":    req.Event,
			"booked":   entries,
			"skipped":  skipped,
		},
	})
}
