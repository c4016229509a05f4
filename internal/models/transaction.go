package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType is the direction of a transaction. The stored codes are the
// ones used in exports.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "E"
	TransactionTypeExpense TransactionType = "S"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Label returns "Entrada" or "Saída".
func (t TransactionType) Label() string {
	switch t {
	case TransactionTypeIncome:
		return "Entrada"
	case TransactionTypeExpense:
		return "Saída"
	}
	return ""
}

// Transaction represents a single income or expense posted to an account.
// Amount is always positive; Type carries the direction.
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID   string          `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Type        TransactionType `gorm:"size:1;not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null;index" json:"date"`

	// Relationships
	Account  *Account  `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"account,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// BeforeSave truncates Date to a calendar day in UTC so range filters and
// month grouping behave the same on every driver.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.Date = DateOnly(t.Date)
	return nil
}

// AfterFind normalizes the amount to cents and the date to UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) error {
	t.Amount = t.Amount.Round(2)
	t.Date = t.Date.UTC()
	return nil
}

// DateOnly returns midnight UTC of the calendar day of ts.
func DateOnly(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
