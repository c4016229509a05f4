package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"carteira/internal/models"
	"carteira/internal/pagination"
	"carteira/internal/testutil"
)

func fixedPeriod(yearScoped bool, now time.Time) Period {
	return Period{YearScoped: yearScoped, Now: func() time.Time { return now }}
}

func newTxServices(db *gorm.DB, period Period) (AccountServicer, TransactionServicer) {
	acctSvc := NewAccountService(db)
	return acctSvc, NewTransactionService(db, acctSvc, period)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateTransaction(t *testing.T) {
	today := time.Now()

	t.Run("balance follows expense then income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, dec("100"))

		_, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeExpense, dec("30"), "Mercado", today)
		require.NoError(t, err)
		testutil.AssertAccountBalance(t, db, account.ID, "70")

		_, err = txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeIncome, dec("20"), "Pix", today)
		require.NoError(t, err)
		testutil.AssertAccountBalance(t, db, account.ID, "90")
	})

	t.Run("returned account carries new balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, dec("10.50"))

		tx, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeIncome, dec("0.25"), "", today)
		require.NoError(t, err)
		require.NotNil(t, tx.Account)
		testutil.AssertAmount(t, tx.Account.Balance, "10.75")
		assert.NotEmpty(t, tx.ID)
	})

	t.Run("zero and negative amounts rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, dec("100"))

		_, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeIncome, decimal.Zero, "", today)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeIncome, dec("-5"), "", today)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		testutil.AssertAccountBalance(t, db, account.ID, "100")
	})

	t.Run("missing account id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})

		_, err := txSvc.CreateTransaction("u", "", nil, models.TransactionTypeIncome, dec("1"), "", today)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeIncome, dec("1"), "", time.Time{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		_, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionType("X"), dec("1"), "", today)
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("other user's account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)

		_, err := txSvc.CreateTransaction(other.ID, account.ID, nil, models.TransactionTypeIncome, dec("1"), "", today)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("other user's category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		category := testutil.CreateTestCategory(t, db, other.ID, decimal.Zero, false)

		_, err := txSvc.CreateTransaction(user.ID, account.ID, &category.ID, models.TransactionTypeExpense, dec("1"), "", today)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("empty category id means uncategorized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		empty := ""

		tx, err := txSvc.CreateTransaction(user.ID, account.ID, &empty, models.TransactionTypeIncome, dec("1"), "", today)
		require.NoError(t, err)
		assert.Nil(t, tx.CategoryID)
	})
}

func TestDeleteTransaction(t *testing.T) {
	t.Run("reverses expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		acctSvc, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccountWithBalance(t, db, user.ID, dec("100"))

		tx, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeExpense, dec("40"), "", time.Now())
		require.NoError(t, err)
		require.NoError(t, txSvc.DeleteTransaction(user.ID, tx.ID))

		updated, err := acctSvc.GetAccountByID(user.ID, account.ID)
		require.NoError(t, err)
		assert.True(t, updated.Balance.Equal(dec("100")), "got %s", updated.Balance)

		_, err = txSvc.GetTransactionByID(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("reverses income", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		acctSvc, txSvc := newTxServices(db, Period{})
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)

		tx, err := txSvc.CreateTransaction(user.ID, account.ID, nil, models.TransactionTypeIncome, dec("15.5"), "", time.Now())
		require.NoError(t, err)
		require.NoError(t, txSvc.DeleteTransaction(user.ID, tx.ID))

		updated, err := acctSvc.GetAccountByID(user.ID, account.ID)
		require.NoError(t, err)
		assert.True(t, updated.Balance.IsZero(), "got %s", updated.Balance)
	})

	t.Run("other user's transaction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, Period{})
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, owner.ID)
		tx := testutil.CreateTestTransaction(t, db, owner.ID, account.ID, models.TransactionTypeIncome, dec("1"))

		err := txSvc.DeleteTransaction(other.ID, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestListTransactions(t *testing.T) {
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T) (*gorm.DB, TransactionServicer, *models.User, *models.Account, *models.Account, *models.Category) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		_, txSvc := newTxServices(db, fixedPeriod(false, now))
		user := testutil.CreateTestUser(t, db)
		a1 := testutil.CreateTestAccount(t, db, user.ID)
		a2 := testutil.CreateTestAccount(t, db, user.ID)
		cat := testutil.CreateTestCategory(t, db, user.ID, decimal.Zero, false)

		at := func(day int) testutil.TxOption {
			return testutil.WithDate(time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC))
		}
		testutil.CreateTestTransaction(t, db, user.ID, a1.ID, models.TransactionTypeExpense, dec("10"), at(1), testutil.WithDescription("Padaria"), testutil.WithCategory(cat.ID))
		testutil.CreateTestTransaction(t, db, user.ID, a1.ID, models.TransactionTypeExpense, dec("50"), at(5), testutil.WithDescription("Mercado Extra"))
		testutil.CreateTestTransaction(t, db, user.ID, a2.ID, models.TransactionTypeIncome, dec("30"), at(10), testutil.WithDescription("Salário"), testutil.WithCategory(cat.ID))
		testutil.CreateTestTransaction(t, db, user.ID, a2.ID, models.TransactionTypeExpense, dec("20"), at(15), testutil.WithDescription("mercadinho"))
		// Outside the current month.
		testutil.CreateTestTransaction(t, db, user.ID, a1.ID, models.TransactionTypeExpense, dec("99"),
			testutil.WithDate(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)))
		return db, txSvc, user, a1, a2, cat
	}

	descriptions := func(rows []models.Transaction) []string {
		out := make([]string, len(rows))
		for i, r := range rows {
			out[i] = r.Description
		}
		return out
	}

	t.Run("defaults to current month date descending", func(t *testing.T) {
		db, txSvc, user, _, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)

		page, err := txSvc.ListTransactions(user.ID, TransactionFilter{}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.TotalItems)
		assert.Equal(t, []string{"mercadinho", "Salário", "Mercado Extra", "Padaria"}, descriptions(page.Data))
		assert.NotNil(t, page.Data[0].Account)
	})

	t.Run("unknown sort falls back to date descending", func(t *testing.T) {
		db, txSvc, user, _, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)

		page, err := txSvc.ListTransactions(user.ID, TransactionFilter{Sort: "xyz"}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"mercadinho", "Salário", "Mercado Extra", "Padaria"}, descriptions(page.Data))
	})

	t.Run("sort by amount", func(t *testing.T) {
		db, txSvc, user, _, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)

		page, err := txSvc.ListTransactions(user.ID, TransactionFilter{Sort: "-valor"}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Mercado Extra", "Salário", "mercadinho", "Padaria"}, descriptions(page.Data))

		page, err = txSvc.ListTransactions(user.ID, TransactionFilter{Sort: "valor"}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Padaria", "mercadinho", "Salário", "Mercado Extra"}, descriptions(page.Data))
	})

	t.Run("case insensitive search", func(t *testing.T) {
		db, txSvc, user, _, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)

		page, err := txSvc.ListTransactions(user.ID, TransactionFilter{Search: "MERCAD"}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"mercadinho", "Mercado Extra"}, descriptions(page.Data))
	})

	t.Run("inclusive date range", func(t *testing.T) {
		db, txSvc, user, _, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)

		start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		page, err := txSvc.ListTransactions(user.ID, TransactionFilter{StartDate: &start, EndDate: &end, Sort: "date"}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Mercado Extra", "Salário"}, descriptions(page.Data))
	})

	t.Run("filters are conjunctive", func(t *testing.T) {
		db, txSvc, user, a1, a2, cat := seed(t)
		defer testutil.TeardownTestDB(t, db)

		page, err := txSvc.ListTransactions(user.ID, TransactionFilter{AccountID: &a1.ID, CategoryID: &cat.ID}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Padaria"}, descriptions(page.Data))

		page, err = txSvc.ListTransactions(user.ID, TransactionFilter{AccountID: &a2.ID, Search: "mercad"}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Equal(t, []string{"mercadinho"}, descriptions(page.Data))
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		db, txSvc, user, a1, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)
		at := testutil.WithDate(time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, user.ID, a1.ID, models.TransactionTypeExpense, dec("5"), at, testutil.WithDescription("desconto 50% loja"))
		testutil.CreateTestTransaction(t, db, user.ID, a1.ID, models.TransactionTypeExpense, dec("5"), at, testutil.WithDescription("conta_luz"))
		testutil.CreateTestTransaction(t, db, user.ID, a1.ID, models.TransactionTypeExpense, dec("5"), at, testutil.WithDescription(`pasta c:\dados`))

		tests := []struct {
			search string
			want   []string
		}{
			{search: "%", want: []string{"desconto 50% loja"}},
			{search: "_", want: []string{"conta_luz"}},
			{search: `\`, want: []string{`pasta c:\dados`}},
			{search: "50%", want: []string{"desconto 50% loja"}},
			{search: "a_l", want: []string{"conta_luz"}},
		}
		for _, tt := range tests {
			page, err := txSvc.ListTransactions(user.ID, TransactionFilter{Search: tt.search}, pagination.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, descriptions(page.Data), "search %q", tt.search)
		}
	})

	t.Run("scoped to user", func(t *testing.T) {
		db, txSvc, _, _, _, _ := seed(t)
		defer testutil.TeardownTestDB(t, db)
		stranger := testutil.CreateTestUser(t, db)

		page, err := txSvc.ListTransactions(stranger.ID, TransactionFilter{}, pagination.PageRequest{})
		require.NoError(t, err)
		assert.Empty(t, page.Data)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("pages of twenty with clamping", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		_, txSvc := newTxServices(db, fixedPeriod(true, now))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID)
		for i := 0; i < 45; i++ {
			testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeIncome, dec("1"),
				testutil.WithDate(time.Date(2024, time.March, 1+i%28, 0, 0, 0, 0, time.UTC)))
		}

		first, err := txSvc.ListTransactions(user.ID, TransactionFilter{}, pagination.PageRequest{Page: "abc"})
		require.NoError(t, err)
		assert.Equal(t, 1, first.Page)
		assert.Len(t, first.Data, 20)
		assert.Equal(t, 3, first.TotalPages)

		last, err := txSvc.ListTransactions(user.ID, TransactionFilter{}, pagination.PageRequest{Page: "99"})
		require.NoError(t, err)
		assert.Equal(t, 3, last.Page)
		assert.Len(t, last.Data, 5)
	})
}

func TestListTransactions_MonthScope(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name       string
		yearScoped bool
		want       int64
	}{
		{"month number any year", false, 2},
		{"year scoped", true, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			_, txSvc := newTxServices(db, fixedPeriod(tc.yearScoped, now))
			user := testutil.CreateTestUser(t, db)
			account := testutil.CreateTestAccount(t, db, user.ID)
			testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, dec("5"),
				testutil.WithDate(time.Date(2023, time.March, 3, 0, 0, 0, 0, time.UTC)))
			testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, dec("5"),
				testutil.WithDate(time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)))

			page, err := txSvc.ListTransactions(user.ID, TransactionFilter{}, pagination.PageRequest{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, page.TotalItems)
		})
	}
}

func TestExportTransactions(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	_, txSvc := newTxServices(db, fixedPeriod(true, now))
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	for i := 0; i < 25; i++ {
		testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeExpense, dec("2"),
			testutil.WithDate(time.Date(2024, time.March, 1+i%20, 0, 0, 0, 0, time.UTC)))
	}

	rows, err := txSvc.ExportTransactions(user.ID, TransactionFilter{Sort: "date"})
	require.NoError(t, err)
	assert.Len(t, rows, 25)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].Date.Before(rows[i-1].Date), "rows out of order at %d", i)
	}
	assert.NotNil(t, rows[0].Account)
}

func TestGetAllTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	_, txSvc := newTxServices(db, Period{})
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeIncome, dec("1"),
		testutil.WithDate(time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)), testutil.WithDescription("old"))
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, models.TransactionTypeIncome, dec("1"),
		testutil.WithDate(time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)), testutil.WithDescription("new"))

	rows, err := txSvc.GetAllTransactions(user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "new", rows[0].Description)
}
