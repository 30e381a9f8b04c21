package models

import "time"

// User is a marketplace account. Equipment owners ("sellers") accrue rental
// earnings in their wallet; renters only appear as order counterparties here.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Password     string    `gorm:"size:255;not null" json:"-"`
	Status       string    `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	StripeConnID *string   `gorm:"type:varchar(191)" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
