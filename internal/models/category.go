package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a user-defined spending bucket with a monthly planned amount.
type Category struct {
	Base
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string          `gorm:"size:50;not null" json:"name"`
	Essential     bool            `gorm:"not null;default:false" json:"essential"`
	PlannedAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"planned_amount"`
}

// AfterFind normalizes the planned amount to cents.
func (c *Category) AfterFind(tx *gorm.DB) error {
	c.PlannedAmount = c.PlannedAmount.Round(2)
	return nil
}
