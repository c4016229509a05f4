package services

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"carteira/internal/logger"
	"carteira/internal/models"
)

// Audit actions.
const (
	AuditRegister         = "REGISTER"
	AuditLogin            = "LOGIN"
	AuditLogout           = "LOGOUT"
	AuditUpdateProfile    = "UPDATE_PROFILE"
	AuditUpdatePhoto      = "UPDATE_PHOTO"
	AuditUpdateSettings   = "UPDATE_SETTINGS"
	AuditCreateAccount    = "CREATE_ACCOUNT"
	AuditUpdateAccount    = "UPDATE_ACCOUNT"
	AuditDeleteAccount    = "DELETE_ACCOUNT"
	AuditCreateCategory   = "CREATE_CATEGORY"
	AuditUpdateCategory   = "UPDATE_CATEGORY"
	AuditToggleEssential  = "TOGGLE_ESSENTIAL"
	AuditSetPlannedAmount = "SET_PLANNED_AMOUNT"
	AuditDeleteCategory   = "DELETE_CATEGORY"
	AuditCreateTx         = "CREATE_TRANSACTION"
	AuditDeleteTx         = "DELETE_TRANSACTION"
)

// Audited resource types.
const (
	AuditResourceUser        = "user"
	AuditResourceAccount     = "account"
	AuditResourceCategory    = "category"
	AuditResourceTransaction = "transaction"
)

// auditService handles audit log recording.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Money values in changes are stored with two
// decimals and dates as YYYY-MM-DD. Failures are logged and swallowed.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(auditChanges(changes))
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      changesJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
		return
	}
	logger.Get().Debugw("audit", "action", action, "resource_type", resourceType, "resource_id", resourceID)
}

// TransactionAuditChanges describes a new transaction and the signed effect
// it had on its account balance.
func TransactionAuditChanges(tx *models.Transaction) map[string]any {
	delta := tx.Amount
	if tx.Type == models.TransactionTypeExpense {
		delta = delta.Neg()
	}
	changes := map[string]any{
		"account_id":    tx.AccountID,
		"type":          tx.Type,
		"amount":        tx.Amount,
		"balance_delta": delta,
		"date":          tx.Date,
	}
	if tx.CategoryID != nil {
		changes["category_id"] = *tx.CategoryID
	}
	return changes
}

func auditChanges(changes map[string]any) map[string]any {
	out := make(map[string]any, len(changes))
	for k, v := range changes {
		out[k] = auditValue(v)
	}
	return out
}

func auditValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.StringFixed(2)
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.StringFixed(2)
	case time.Time:
		return val.Format("2006-01-02")
	case models.TransactionType:
		return string(val)
	default:
		return v
	}
}
