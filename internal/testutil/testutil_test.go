package testutil_test

import (
	"fmt"
	"testing"
	"time"

	"carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "user_profiles", "accounts", "categories", "transactions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	db1 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db1)
	db2 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db2)

	testutil.CreateTestUser(t, db1)

	var count int64
	db2.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, testutil.Amount(t, "50.00"))
	if !account.Balance.Equal(testutil.Amount(t, "50")) {
		t.Errorf("expected balance 50, got %s", account.Balance)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, testutil.Amount(t, "200"), true)
	if !category.Essential {
		t.Error("expected essential category")
	}

	date := time.Date(2024, time.March, 5, 15, 30, 0, 0, time.UTC)
	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, testutil.Amount(t, "10"),
		testutil.WithCategory(category.ID), testutil.WithDate(date))
	if tx.CategoryID == nil || *tx.CategoryID != category.ID {
		t.Errorf("expected category %s, got %v", category.ID, tx.CategoryID)
	}
	if !tx.Date.Equal(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected date truncated to midnight, got %s", tx.Date)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	testutil.AssertAppError(t, fmt.Errorf("create: %w", errors.ErrInvalidTransactionType), "INVALID_TRANSACTION_TYPE")
}

func TestAssertAmounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, testutil.Amount(t, "7.5"))

	testutil.AssertAmount(t, account.Balance, "7.50")
	testutil.AssertAccountBalance(t, db, account.ID, "7.5")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
