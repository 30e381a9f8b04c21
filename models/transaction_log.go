package models

import "time"

// Transaction types. The sign of Amount is the only source of truth for
// balance direction: positive entries credit the seller, negative debit.
const (
	TxOrderEarning    = "ORDER_EARNING"
	TxPenalty         = "PENALTY"
	TxRefund          = "REFUND"
	TxDepositRefund   = "DEPOSIT_REFUND"
	TxSellerPayout    = "SELLER_PAYOUT"
	TxWithdrawHold    = "WITHDRAW_REQUEST_HOLD"
	TxWithdrawRelease = "WITHDRAW_REQUEST_RELEASE"
)

const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// OrderBreakdown is a snapshot of the order's price fields at the moment a
// settlement entry was written. Kept in metadata so the audit trail survives
// later order mutation.
type OrderBreakdown struct {
	RentalFee       float64 `json:"rental_fee"`
	PlatformFee     float64 `json:"platform_fee"`
	TaxAmount       float64 `json:"tax_amount"`
	InsuranceAmount float64 `json:"insurance_amount"`
	DepositAmount   float64 `json:"deposit_amount"`
	TotalAmount     float64 `json:"total_amount"`
	PenaltyAmount   float64 `json:"penalty_amount"`
}

// WithdrawalMeta carries the audit fields for hold/release/payout entries.
type WithdrawalMeta struct {
	RequestedAmount float64 `json:"requested_amount"`
	PaymentMethod   string  `json:"payment_method,omitempty"`
	AdminID         int64   `json:"admin_id,omitempty"`
	GatewayRef      string  `json:"gateway_ref,omitempty"`
	RejectionReason string  `json:"rejection_reason,omitempty"`
}

// TxMetadata is keyed by transaction type: settlement entries carry an order
// breakdown, withdrawal entries carry withdrawal audit fields. Only the
// variant matching the entry's type should be set.
type TxMetadata struct {
	OrderBreakdown *OrderBreakdown `json:"order_breakdown,omitempty"`
	Withdrawal     *WithdrawalMeta `json:"withdrawal,omitempty"`
	AdminNote      string          `json:"admin_note,omitempty"`
	SettlementType string          `json:"settlement_type,omitempty"`
}

// TransactionLog is an append-only fact. Rows are created exactly once per
// settlement/withdrawal event and never updated or deleted; corrections are
// written as new opposite entries (a RELEASE reverses a HOLD).
//
// The unique (order_id, type) index enforces one entry per order and type.
// Withdrawal entries carry a NULL order_id and are exempt.
type TransactionLog struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	SellerID            uint        `gorm:"not null;index:idx_txlog_seller_created,priority:1;index:idx_txlog_seller_status,priority:1" json:"seller_id"`
	Type                string      `gorm:"type:enum('ORDER_EARNING','PENALTY','REFUND','DEPOSIT_REFUND','SELLER_PAYOUT','WITHDRAW_REQUEST_HOLD','WITHDRAW_REQUEST_RELEASE');not null;uniqueIndex:uq_txlog_order_type,priority:2" json:"type"`
	Amount              float64     `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status              string      `gorm:"type:enum('pending','completed','failed');not null;default:'completed';index:idx_txlog_seller_status,priority:2" json:"status"`
	OrderID             *uint       `gorm:"uniqueIndex:uq_txlog_order_type,priority:1" json:"order_id,omitempty"`
	WithdrawalRequestID *uint       `gorm:"index" json:"withdrawal_request_id,omitempty"`
	ReferenceID         string      `gorm:"type:char(36);not null;uniqueIndex" json:"reference_id"`
	Description         string      `gorm:"type:varchar(255)" json:"description"`
	Metadata            *TxMetadata `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt           time.Time   `gorm:"index:idx_txlog_seller_created,priority:2" json:"created_at"`
}

func (TransactionLog) TableName() string {
	return "transaction_logs"
}

// Credits reports whether this entry increases the seller's balance.
func (t *TransactionLog) Credits() bool {
	return t.Amount > 0
}
