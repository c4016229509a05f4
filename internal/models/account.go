package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bank identifies the institution an account belongs to.
type Bank string

const (
	BankNubank        Bank = "NU"
	BankCaixa         Bank = "CE"
	BankSantander     Bank = "ST"
	BankBancoDoBrasil Bank = "BB"
)

var bankLabels = map[Bank]string{
	BankNubank:        "Nubank",
	BankCaixa:         "Caixa econômica",
	BankSantander:     "Santander",
	BankBancoDoBrasil: "Banco do Brasil",
}

// Valid reports whether b is one of the supported banks.
func (b Bank) Valid() bool {
	_, ok := bankLabels[b]
	return ok
}

// Label returns the display name of the bank.
func (b Bank) Label() string {
	return bankLabels[b]
}

// AccountKind distinguishes personal from business accounts.
type AccountKind string

const (
	AccountKindPersonal AccountKind = "pf"
	AccountKindBusiness AccountKind = "pj"
)

// Valid reports whether k is pf or pj.
func (k AccountKind) Valid() bool {
	return k == AccountKindPersonal || k == AccountKindBusiness
}

// Label returns the display name of the kind.
func (k AccountKind) Label() string {
	switch k {
	case AccountKindPersonal:
		return "Pessoa física"
	case AccountKindBusiness:
		return "Pessoa jurídica"
	}
	return ""
}

// Account is a bank account whose Balance is a running total kept in sync
// with the transactions posted against it.
type Account struct {
	Base
	UserID   string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Nickname string          `gorm:"size:50;not null" json:"nickname"`
	Bank     Bank            `gorm:"size:2;not null" json:"bank"`
	Kind     AccountKind     `gorm:"size:2;not null" json:"kind"`
	Balance  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"`
	IconKey  string          `json:"icon_key,omitempty"`
}

// AfterFind normalizes the balance to cents; SQLite hands back floats.
func (a *Account) AfterFind(tx *gorm.DB) error {
	a.Balance = a.Balance.Round(2)
	return nil
}
