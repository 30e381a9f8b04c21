package models

import "time"

// SellerWallet is a cached projection of the seller's transaction log. It is
// never a source of truth: dropping the row and refolding the log must
// reproduce it exactly. Only the wallet service writes these columns.
type SellerWallet struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	SellerID          uint      `gorm:"not null;uniqueIndex" json:"seller_id"`
	AvailableBalance  float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"available_balance"`
	PendingBalance    float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"pending_balance"`
	TotalBalance      float64   `gorm:"type:decimal(15,2);not null;default:0.00" json:"total_balance"`
	LastTransactionID *uint     `json:"last_transaction_id,omitempty"`
	BalanceUpdatedAt  time.Time `json:"balance_updated_at"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

func (SellerWallet) TableName() string {
	return "seller_wallets"
}
