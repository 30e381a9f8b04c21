package wallet

import (
	"fmt"

	"opeec/models"
	"opeec/utils"

	"gorm.io/gorm"
)

// Order lifecycle events that produce ledger entries.
const (
	EventCompleted             = "completed"
	EventCancelledBeforeCutoff = "cancelled_before_cutoff"
	EventCancelledAfterCutoff  = "cancelled_after_cutoff"
	EventLateReturnWithPenalty = "late_return_with_penalty"
	EventDepositRefund         = "deposit_refund"
)

// SettlementEntry is one ledger entry a settlement event derives. Callers pass
// these to CreateTransaction; DetermineSettlement itself never writes.
type SettlementEntry struct {
	Type        string
	Amount      float64
	Description string
	Metadata    *models.TxMetadata
}

// SettlementResult describes everything a lifecycle event moves: the seller
// ledger entries plus the renter-side refund amount the gateway is told to
// issue (which may not touch the seller ledger at all).
type SettlementResult struct {
	Type          string
	SellerEarning float64
	RefundAmount  float64
	Transactions  []SettlementEntry
}

// ValidationResult is the eligibility gate for settlement. Orders failing it
// must be skipped entirely; there is no partial processing.
type ValidationResult struct {
	IsValid bool
	Reason  string
}

// ValidateOrderForSettlement checks the price snapshot is usable: rental fee,
// platform fee and total must be present and the rental fee positive.
func ValidateOrderForSettlement(order *models.Order) ValidationResult {
	if order == nil {
		return ValidationResult{Reason: "order is missing"}
	}
	if order.RentalFee <= 0 {
		return ValidationResult{Reason: "order has no positive rental fee"}
	}
	if order.PlatformFee < 0 {
		return ValidationResult{Reason: "order platform fee is invalid"}
	}
	if order.TotalAmount <= 0 {
		return ValidationResult{Reason: "order has no total amount"}
	}
	return ValidationResult{IsValid: true}
}

func breakdown(order *models.Order) *models.OrderBreakdown {
	return &models.OrderBreakdown{
		RentalFee:       order.RentalFee,
		PlatformFee:     order.PlatformFee,
		TaxAmount:       order.TaxAmount,
		InsuranceAmount: order.InsuranceAmount,
		DepositAmount:   order.DepositAmount,
		TotalAmount:     order.TotalAmount,
		PenaltyAmount:   order.PenaltyAmount,
	}
}

func meta(order *models.Order, event string) *models.TxMetadata {
	return &models.TxMetadata{
		OrderBreakdown: breakdown(order),
		SettlementType: event,
	}
}

// DetermineSettlement derives the ledger entries for an order lifecycle event.
// Pure function of the stored price snapshot: same order and event always
// yield the same entries, and nothing is written here.
//
// The platform fee never enters the seller ledger; the seller earns the
// rental fee alone.
func DetermineSettlement(order *models.Order, event string) (*SettlementResult, error) {
	if order == nil {
		return nil, fmt.Errorf("determine settlement: order is nil")
	}

	rentalFee := utils.Round2(order.RentalFee)
	res := &SettlementResult{Type: event}

	switch event {
	case EventCompleted:
		res.SellerEarning = rentalFee
		res.Transactions = append(res.Transactions, SettlementEntry{
			Type:        models.TxOrderEarning,
			Amount:      rentalFee,
			Description: fmt.Sprintf("Rental earning for order #%d", order.ID),
			Metadata:    meta(order, event),
		})

	case EventCancelledBeforeCutoff:
		// Cancelled before the rental start: the seller earns nothing. The
		// completed path never ran for this order, so the lost earning is
		// written as a negative adjustment with no prior earning entry.
		res.RefundAmount = utils.Round2(order.TotalAmount)
		res.Transactions = append(res.Transactions, SettlementEntry{
			Type:        models.TxRefund,
			Amount:      -rentalFee,
			Description: fmt.Sprintf("Full refund for order #%d cancelled before rental start", order.ID),
			Metadata:    meta(order, event),
		})

	case EventCancelledAfterCutoff:
		// Cancellation policy favors sellers: the seller keeps the full
		// rental fee while the renter is refunded deposit + insurance. The
		// zero-amount REFUND entry records the partial refund against the
		// order without debiting the seller.
		res.SellerEarning = rentalFee
		res.RefundAmount = utils.Round2(order.DepositAmount + order.InsuranceAmount)
		res.Transactions = append(res.Transactions,
			SettlementEntry{
				Type:        models.TxOrderEarning,
				Amount:      rentalFee,
				Description: fmt.Sprintf("Rental earning for order #%d (cancelled after rental start)", order.ID),
				Metadata:    meta(order, event),
			},
			SettlementEntry{
				Type:        models.TxRefund,
				Amount:      0,
				Description: fmt.Sprintf("Partial renter refund recorded for order #%d", order.ID),
				Metadata:    meta(order, event),
			},
		)

	case EventLateReturnWithPenalty:
		res.SellerEarning = rentalFee
		res.Transactions = append(res.Transactions, SettlementEntry{
			Type:        models.TxOrderEarning,
			Amount:      rentalFee,
			Description: fmt.Sprintf("Rental earning for order #%d", order.ID),
			Metadata:    meta(order, event),
		})
		// The renter's deposit absorbs the penalty first; the seller only
		// carries the excess.
		if order.PenaltyAmount > order.DepositAmount {
			excess := utils.Round2(order.PenaltyAmount - order.DepositAmount)
			res.Transactions = append(res.Transactions, SettlementEntry{
				Type:        models.TxPenalty,
				Amount:      -excess,
				Description: fmt.Sprintf("Late return penalty exceeding deposit for order #%d", order.ID),
				Metadata:    meta(order, event),
			})
		}

	case EventDepositRefund:
		if order.DepositAmount > 0 {
			deposit := utils.Round2(order.DepositAmount)
			res.RefundAmount = deposit
			res.Transactions = append(res.Transactions, SettlementEntry{
				Type:        models.TxDepositRefund,
				Amount:      -deposit,
				Description: fmt.Sprintf("Deposit refund for order #%d", order.ID),
				Metadata:    meta(order, event),
			})
		}

	default:
		return nil, fmt.Errorf("determine settlement: unknown event %q", event)
	}

	return res, nil
}

// ApplySettlement books the derived entries against the seller's ledger. Each
// (order, entry type) pair is booked at most once so re-delivered lifecycle
// events do not double-book; the skipped types are reported back. All entries
// for one event commit together or not at all.
func (s *Service) ApplySettlement(order *models.Order, event string) (booked []*models.TransactionLog, skipped []string, err error) {
	if v := ValidateOrderForSettlement(order); !v.IsValid {
		return nil, nil, fmt.Errorf("order not eligible for settlement: %s", v.Reason)
	}

	res, err := DetermineSettlement(order, event)
	if err != nil {
		return nil, nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		w, err := lockWallet(tx, order.SellerID)
		if err != nil {
			return err
		}

		// Already-booked types are read under the wallet lock: a concurrent
		// retry of the same event blocks on the lock and sees the first
		// delivery's committed rows. The unique (order_id, type) index backs
		// this up at the schema level.
		var existing []string
		err = tx.Model(&models.TransactionLog{}).
			Where("order_id = ?", order.ID).
			Pluck("type", &existing).Error
		if err != nil {
			return err
		}

		toBook, skip := splitBookedTypes(existing, res.Transactions)
		skipped = skip
		if len(toBook) == 0 {
			return nil
		}

		orderID := order.ID
		for _, entry := range toBook {
			row, err := createEntry(tx, Entry{
				SellerID:    order.SellerID,
				Type:        entry.Type,
				Amount:      entry.Amount,
				OrderID:     &orderID,
				Description: entry.Description,
				Metadata:    entry.Metadata,
			})
			if err != nil {
				return err
			}
			booked = append(booked, row)
		}

		_, err = refold(tx, w)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return booked, skipped, nil
}

// splitBookedTypes partitions the derived entries into those still to book
// and the types skipped because a prior delivery already booked them for
// this order.
func splitBookedTypes(existing []string, entries []SettlementEntry) (toBook []SettlementEntry, skipped []string) {
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	for _, e := range entries {
		if seen[e.Type] {
			skipped = append(skipped, e.Type)
			continue
		}
		toBook = append(toBook, e)
	}
	return toBook, skipped
}
