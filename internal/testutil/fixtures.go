package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"carteira/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// CreateTestUser creates a user with a hashed password and unique username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWith(t, db, fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWith creates a user with the given username and email.
func CreateTestUserWith(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// Amount parses a decimal literal, failing the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad amount %q: %v", s, err)
	}
	return d
}

// CreateTestAccount creates a Nubank personal account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, decimal.Zero)
}

// CreateTestAccountWithBalance creates an account with the given opening balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, balance decimal.Decimal) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Nickname: fmt.Sprintf("Conta %d", nextID()),
		Bank:     models.BankNubank,
		Kind:     models.AccountKindPersonal,
		Balance:  balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category with the given planned amount.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, planned decimal.Decimal, essential bool) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:        userID,
		Name:          fmt.Sprintf("Categoria %d", nextID()),
		Essential:     essential,
		PlannedAmount: planned,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// TxOption customizes a fixture transaction.
type TxOption func(*models.Transaction)

// WithCategory assigns the transaction to a category.
func WithCategory(categoryID string) TxOption {
	return func(tx *models.Transaction) { tx.CategoryID = &categoryID }
}

// WithDate sets the transaction date.
func WithDate(date time.Time) TxOption {
	return func(tx *models.Transaction) { tx.Date = date }
}

// WithDescription sets the transaction description.
func WithDescription(desc string) TxOption {
	return func(tx *models.Transaction) { tx.Description = desc }
}

// CreateTestTransaction inserts a transaction row directly, without touching
// the account balance. The date defaults to today.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount decimal.Decimal, opts ...TxOption) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:    userID,
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Date:      time.Now(),
	}
	for _, opt := range opts {
		opt(tx)
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
