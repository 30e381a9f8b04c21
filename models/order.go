package models

import "time"

// Order statuses the ledger cares about. The full rental lifecycle (booking,
// delivery, return inspection) is driven elsewhere; settlement only reads the
// stored price breakdown and the rental schedule.
const (
	OrderStatusBooked    = "Booked"
	OrderStatusOngoing   = "Ongoing"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// Order holds the price snapshot produced by the order-pricing subsystem.
// The wallet service reads these fields verbatim and never recomputes them.
type Order struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	SellerID        uint       `gorm:"not null;index" json:"seller_id"`
	RenterID        uint       `gorm:"not null;index" json:"renter_id"`
	EquipmentName   string     `gorm:"type:varchar(191)" json:"equipment_name"`
	RentalFee       float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"rental_fee"`
	PlatformFee     float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"platform_fee"`
	TaxAmount       float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"tax_amount"`
	InsuranceAmount float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"insurance_amount"`
	DepositAmount   float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"deposit_amount"`
	TotalAmount     float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"total_amount"`
	PenaltyAmount   float64    `gorm:"type:decimal(15,2);not null;default:0.00" json:"penalty_amount"`
	RentalStartDate time.Time  `json:"rental_start_date"`
	RentalEndDate   time.Time  `json:"rental_end_date"`
	Status          string     `gorm:"type:enum('Booked','Ongoing','Completed','Cancelled');not null;default:'Booked'" json:"status"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"-"`
}

func (Order) TableName() string {
	return "orders"
}
