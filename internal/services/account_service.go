package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount registers a bank account with its opening balance.
func (s *accountService) CreateAccount(userID, nickname string, bank models.Bank, kind models.AccountKind, balance decimal.Decimal, iconKey string) (*models.Account, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Preencha todos os campos!")
	}
	if !bank.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Banco inválido.")
	}
	if !kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Tipo de conta inválido.")
	}

	account := &models.Account{
		UserID:   userID,
		Nickname: nickname,
		Bank:     bank,
		Kind:     kind,
		Balance:  balance.Round(2),
		IconKey:  iconKey,
	}

	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return account, nil
}

// GetUserAccounts lists the user's accounts ordered by nickname.
func (s *accountService) GetUserAccounts(userID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("nickname ASC, id ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount applies the non-nil descriptive fields.
func (s *accountService) UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if fields.Nickname != nil {
		nickname := strings.TrimSpace(*fields.Nickname)
		if nickname == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nickname cannot be empty")
		}
		updates["nickname"] = nickname
	}
	if fields.Bank != nil {
		if !fields.Bank.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Banco inválido.")
		}
		updates["bank"] = *fields.Bank
	}
	if fields.Kind != nil {
		if !fields.Kind.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Tipo de conta inválido.")
		}
		updates["kind"] = *fields.Kind
	}
	if fields.IconKey != nil {
		updates["icon_key"] = *fields.IconKey
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return account, nil
}

// DeleteAccount removes an account together with every transaction posted
// to it. The deleted account is returned so callers can clean up its icon.
func (s *accountService) DeleteAccount(userID, accountID string) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("account_id = ? AND user_id = ?", account.ID, userID).Delete(&models.Transaction{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("account deleted",
			"user_id", userID,
			"account_id", account.ID,
			"transactions_removed", res.RowsAffected,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// TotalBalance sums the balances of every account the user owns.
func (s *accountService) TotalBalance(userID string) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	if err := s.db.Model(&models.Account{}).
		Select("COALESCE(SUM(balance), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&row).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total.Round(2), nil
}

// UpdateAccountBalance applies a transaction's effect to the account inside
// tx. The column is incremented in SQL so concurrent posts cannot lose updates.
func (s *accountService) UpdateAccountBalance(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal) error {
	var expr clause.Expr
	switch transactionType {
	case models.TransactionTypeIncome:
		expr = gorm.Expr("balance + ?", amount)
	case models.TransactionTypeExpense:
		expr = gorm.Expr("balance - ?", amount)
	default:
		return apperrors.ErrInvalidTransactionType
	}

	if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).Update("balance", expr).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var fresh models.Account
	if err := tx.Select("balance").Where("id = ?", account.ID).First(&fresh).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Balance = fresh.Balance
	return nil
}
