package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
)

// AssertAppError checks that err unwraps to an *AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *apperrors.AppError
	switch {
	case err == nil:
		t.Fatalf("expected %s, got nil", code)
	case !errors.As(err, &appErr):
		t.Fatalf("expected *AppError %s, got %T: %v", code, err, err)
	case appErr.Code != code:
		t.Errorf("expected %s, got %s (%d: %s)", code, appErr.Code, appErr.StatusCode, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertAmount compares a money value numerically, so "7.5" matches 7.50.
func AssertAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(Amount(t, want)) {
		t.Errorf("expected amount %s, got %s", want, got.StringFixed(2))
	}
}

// AssertAccountBalance reloads the account and compares its stored balance.
func AssertAccountBalance(t *testing.T, db *gorm.DB, accountID, want string) {
	t.Helper()

	var account models.Account
	if err := db.Select("balance").First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to reload account %s: %v", accountID, err)
	}
	if !account.Balance.Equal(Amount(t, want)) {
		t.Errorf("expected balance %s for account %s, got %s", want, accountID, account.Balance.StringFixed(2))
	}
}
