package models

import "time"

// Withdrawal request lifecycle: Pending -> Approved -> Paid, or Rejected from
// either non-terminal state. Paid and Rejected are terminal and the row is
// never re-opened.
const (
	WithdrawalPending  = "Pending"
	WithdrawalApproved = "Approved"
	WithdrawalPaid     = "Paid"
	WithdrawalRejected = "Rejected"
)

type WithdrawalRequest struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	SellerID            uint       `gorm:"not null;index:idx_wr_seller_status,priority:1" json:"seller_id"`
	Amount              float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status              string     `gorm:"type:enum('Pending','Approved','Paid','Rejected');not null;default:'Pending';index:idx_wr_seller_status,priority:2" json:"status"`
	PaymentMethod       string     `gorm:"type:varchar(100)" json:"payment_method"`
	ExternalReference   *string    `gorm:"type:varchar(191)" json:"external_reference,omitempty"`
	ScreenshotURL       *string    `gorm:"type:varchar(500)" json:"screenshot_url,omitempty"`
	RejectionReason     *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	ReviewedByAdminID   *int64     `json:"reviewed_by_admin_id,omitempty"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	RejectedAt          *time.Time `json:"rejected_at,omitempty"`
	HoldTransactionID   *uint      `json:"hold_transaction_id,omitempty"`
	PayoutTransactionID *uint      `json:"payout_transaction_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Seller              *User      `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

// Terminal reports whether the request can no longer transition.
func (w *WithdrawalRequest) Terminal() bool {
	return w.Status == WithdrawalPaid || w.Status == WithdrawalRejected
}
