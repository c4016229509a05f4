package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/models"
	"carteira/internal/pagination"
)

// sortOrders maps accepted sort keys to ORDER BY clauses. Every clause ends
// with the primary key so pages are stable.
var sortOrders = map[string]string{
	"date":   "date ASC, created_at ASC, id ASC",
	"-date":  "date DESC, created_at DESC, id DESC",
	"valor":  "amount ASC, date DESC, id DESC",
	"-valor": "amount DESC, date DESC, id DESC",
}

const defaultSort = "-date"

// transactionService handles transaction-related business logic.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	period         Period
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, period Period) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
		period:         period,
	}
}

// CreateTransaction records an income or expense and applies it to the
// account balance in the same database transaction.
func (s *transactionService) CreateTransaction(
	userID string,
	accountID string,
	categoryID *string,
	transactionType models.TransactionType,
	amount decimal.Decimal,
	description string,
	date time.Time,
) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if accountID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if !transactionType.Valid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	account, err := s.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}
	if categoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).
			Where("id = ? AND user_id = ?", *categoryID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrCategoryNotFound
		}
	}

	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   account.ID,
		CategoryID:  categoryID,
		Type:        transactionType,
		Amount:      amount.Round(2),
		Description: strings.TrimSpace(description),
		Date:        date,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.UpdateAccountBalance(tx, account, transactionType, transaction.Amount)
	})
	if err != nil {
		return nil, err
	}

	transaction.Account = account
	logger.Get().Infow("transaction created",
		"user_id", userID,
		"transaction_id", transaction.ID,
		"account_id", account.ID,
		"type", transactionType,
		"amount", transaction.Amount.String(),
		"balance", account.Balance.String(),
	)
	return transaction, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Account").Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// ListTransactions returns one page of the user's current-month transactions
// after filtering and sorting.
func (s *transactionService) ListTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.filtered(userID, filter)

	var totalItems int64
	if err := base.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	current := page.Resolve(totalItems)

	var transactions []models.Transaction
	if err := base.Session(&gorm.Session{}).
		Preload("Account").Preload("Category").
		Order(orderFor(filter.Sort)).
		Scopes(pagination.Paginate(current, page.PageSize)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, current, page.PageSize, totalItems)
	return &result, nil
}

// ExportTransactions returns every row ListTransactions would page through,
// in the same order.
func (s *transactionService) ExportTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.filtered(userID, filter).
		Preload("Account").Preload("Category").
		Order(orderFor(filter.Sort)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// GetAllTransactions returns every transaction of the user, newest first.
func (s *transactionService) GetAllTransactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.Preload("Account").Preload("Category").
		Where("user_id = ?", userID).
		Order(sortOrders[defaultSort]).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// DeleteTransaction deletes a transaction and reverses its effect on the
// account balance.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	account, err := s.accountService.GetAccountByID(userID, transaction.AccountID)
	if err != nil {
		return err
	}

	var reverseType models.TransactionType
	switch transaction.Type {
	case models.TransactionTypeIncome:
		reverseType = models.TransactionTypeExpense
	case models.TransactionTypeExpense:
		reverseType = models.TransactionTypeIncome
	default:
		return apperrors.ErrInvalidTransactionType
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Transaction{}, "id = ?", transaction.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.accountService.UpdateAccountBalance(tx, account, reverseType, transaction.Amount)
	})
}

// filtered builds the user-scoped, current-month query with the optional
// filters applied in order: account, category, start, end, search.
func (s *transactionService) filtered(userID string, f TransactionFilter) *gorm.DB {
	q := s.db.Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Scopes(s.period.CurrentMonth("date"))

	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.StartDate != nil {
		q = q.Where("date >= ?", models.DateOnly(*f.StartDate))
	}
	if f.EndDate != nil {
		q = q.Where("date < ?", models.DateOnly(*f.EndDate).AddDate(0, 0, 1))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where(`LOWER(description) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(search))+"%")
	}
	return q
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func orderFor(sort string) string {
	if order, ok := sortOrders[sort]; ok {
		return order
	}
	return sortOrders[defaultSort]
}
