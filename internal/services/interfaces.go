package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"carteira/internal/models"
	"carteira/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password, passwordConfirm, firstName, lastName string) (*models.User, error)
	GetUserByLogin(login string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(login, password string) (*models.User, error)
	UpdateUser(userID string, fields UserUpdateFields) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// UserUpdateFields holds the optional user columns editable from the profile page.
type UserUpdateFields struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// ProfileServicer defines the contract for profile and preference management.
type ProfileServicer interface {
	GetProfile(userID string) (*models.UserProfile, error)
	UpdateProfile(userID string, fields ProfileUpdateFields) (*models.UserProfile, error)
	UpdateSettings(userID string, fields SettingsUpdateFields) (*models.UserProfile, error)
	SetPhoto(userID, key string) (previousKey string, profile *models.UserProfile, err error)
}

// ProfileUpdateFields holds the optional personal details of a profile.
type ProfileUpdateFields struct {
	Phone     *string
	BirthDate *time.Time
	CPF       *string
	Address   *string
	City      *string
	State     *string
	Bio       *string
}

// SettingsUpdateFields holds the optional display preferences of a profile.
type SettingsUpdateFields struct {
	Language           *string
	Currency           *string
	DateFormat         *string
	EmailNotifications *bool
	Theme              *string
	AutoCategory       *bool
	DashboardLayout    *string
	TwoFactorEnabled   *bool
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, nickname string, bank models.Bank, kind models.AccountKind, balance decimal.Decimal, iconKey string) (*models.Account, error)
	GetUserAccounts(userID string) ([]models.Account, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) (*models.Account, error)
	TotalBalance(userID string) (decimal.Decimal, error)
	UpdateAccountBalance(tx *gorm.DB, account *models.Account, transactionType models.TransactionType, amount decimal.Decimal) error
}

// AccountUpdateFields holds the optional editable account columns. The
// balance is only ever changed by transactions.
type AccountUpdateFields struct {
	Nickname *string
	Bank     *models.Bank
	Kind     *models.AccountKind
	IconKey  *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, essential bool) (*models.Category, error)
	GetUserCategories(userID string) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error)
	ToggleEssential(userID, categoryID string) (*models.Category, error)
	SetPlannedAmount(userID, categoryID string, amount decimal.Decimal) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// CategoryUpdateFields holds the optional editable category columns.
type CategoryUpdateFields struct {
	Name          *string
	PlannedAmount *decimal.Decimal
	Essential     *bool
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID  *string
	CategoryID *string
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	Sort       string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, accountID string, categoryID *string, transactionType models.TransactionType, amount decimal.Decimal, description string, date time.Time) (*models.Transaction, error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	ListTransactions(userID string, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	ExportTransactions(userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetAllTransactions(userID string) ([]models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// CategoryBudget is a category with its spend in the current month.
type CategoryBudget struct {
	Category    models.Category `json:"category"`
	Spent       decimal.Decimal `json:"spent"`
	PercentUsed int             `json:"percent_used"`
}

// EvolutionSeries holds one year of monthly income and expense totals.
type EvolutionSeries struct {
	Year     int               `json:"year"`
	Labels   []string          `json:"labels"`
	Income   []decimal.Decimal `json:"income"`
	Expenses []decimal.Decimal `json:"expenses"`
}

// CategorySpend holds chart-ready expense totals per category.
type CategorySpend struct {
	Labels []string          `json:"labels"`
	Values []decimal.Decimal `json:"values"`
	Colors []string          `json:"colors"`
}

// MonthTotals holds the income and expense totals for the current month.
type MonthTotals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

// EssentialSplit is the share of current-month expenses spent in essential
// categories versus everything else.
type EssentialSplit struct {
	EssentialTotal      decimal.Decimal `json:"essential_total"`
	NonEssentialTotal   decimal.Decimal `json:"non_essential_total"`
	EssentialPercent    int             `json:"essential_percent"`
	NonEssentialPercent int             `json:"non_essential_percent"`
}

// ReportServicer defines the contract for aggregations behind the dashboards.
type ReportServicer interface {
	CategoryBudgets(userID string) ([]CategoryBudget, error)
	Evolution(userID string, year int) (*EvolutionSeries, error)
	CategorySpend(userID string, year int, month time.Month) (*CategorySpend, error)
	MonthTotals(userID string) (*MonthTotals, error)
	EssentialSplit(userID string) (*EssentialSplit, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
