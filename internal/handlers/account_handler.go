package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "carteira/internal/errors"
	"carteira/internal/logger"
	"carteira/internal/models"
	"carteira/internal/services"
	"carteira/internal/uploads"
)

// AccountHandler handles account-related requests
type AccountHandler struct {
	accountService services.AccountServicer
	store          uploads.Store
	auditService   services.AuditServicer
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService services.AccountServicer, store uploads.Store, auditService services.AuditServicer) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		store:          store,
		auditService:   auditService,
	}
}

// CreateAccountRequest represents the account creation payload. It binds
// from JSON or from a multipart form carrying an optional "icon" file.
type CreateAccountRequest struct {
	Nickname string `json:"nickname" form:"nickname" binding:"max=50"`
	Bank     string `json:"bank" form:"bank" binding:"omitempty,bank_code"`
	Kind     string `json:"kind" form:"kind" binding:"omitempty,account_kind"`
	Balance  Amount `json:"balance" form:"balance"`
}

// UpdateAccountRequest holds the editable account fields. The balance is
// only changed by transactions.
type UpdateAccountRequest struct {
	Nickname *string `json:"nickname" form:"nickname" binding:"omitempty,max=50"`
	Bank     *string `json:"bank" form:"bank" binding:"omitempty,bank_code"`
	Kind     *string `json:"kind" form:"kind" binding:"omitempty,account_kind"`
}

// AccountResponse is an account with its display labels and icon location.
type AccountResponse struct {
	models.Account
	BankLabel string `json:"bank_label"`
	KindLabel string `json:"kind_label"`
	IconURL   string `json:"icon_url,omitempty"`
}

// AccountListResponse lists the accounts with their combined balance.
type AccountListResponse struct {
	Accounts     []AccountResponse `json:"accounts"`
	TotalBalance decimal.Decimal   `json:"total_balance"`
}

func (h *AccountHandler) toResponse(c *gin.Context, a models.Account) AccountResponse {
	return toAccountResponse(c, h.store, a)
}

func toAccountResponse(c *gin.Context, store uploads.Store, a models.Account) AccountResponse {
	iconURL, err := store.URL(c.Request.Context(), a.IconKey)
	if err != nil {
		logger.Get().Warnw("icon url unavailable", "account_id", a.ID, "error", err)
	}
	return AccountResponse{
		Account:   a,
		BankLabel: a.Bank.Label(),
		KindLabel: a.Kind.Label(),
		IconURL:   iconURL,
	}
}

func toAccountResponses(c *gin.Context, store uploads.Store, accounts []models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(c, store, a))
	}
	return out
}

// CreateAccount handles account creation
// @Summary     Create an account
// @Description Register a bank account with its opening balance and an optional icon
// @Tags        accounts
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account data"
// @Param       icon formData file false "Icon image"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Missing fields or invalid values"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if strings.TrimSpace(req.Nickname) == "" || !req.Balance.Present {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Preencha todos os campos!"))
		return
	}
	if !req.Balance.Valid {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Valor inválido."))
		return
	}

	iconKey, err := saveUpload(c, h.store, "icon", uploads.PrefixAccountIcons)
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.CreateAccount(userID, req.Nickname, models.Bank(req.Bank), models.AccountKind(req.Kind), req.Balance.Value, iconKey)
	if err != nil {
		removeUpload(c, h.store, iconKey)
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateAccount, services.AuditResourceAccount, account.ID, c.ClientIP(), map[string]any{
		"nickname": account.Nickname,
		"bank":     account.Bank,
		"balance":  account.Balance,
	})

	c.JSON(http.StatusCreated, h.toResponse(c, *account))
}

// ListAccounts lists the user's accounts
// @Summary     List accounts
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AccountListResponse "Accounts and total balance"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.accountService.GetUserAccounts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	total, err := h.accountService.TotalBalance(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountListResponse{
		Accounts:     toAccountResponses(c, h.store, accounts),
		TotalBalance: total,
	})
}

// GetAccount returns one account
// @Summary     Get an account
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse "Account"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toResponse(c, *account))
}

// UpdateAccount updates an account's descriptive fields and icon
// @Summary     Update an account
// @Tags        accounts
// @Accept      json,mpfd
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Param       request body UpdateAccountRequest true "Fields to change"
// @Param       icon formData file false "New icon image"
// @Success     200 {object} AccountResponse "Updated account"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	existing, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fields := services.AccountUpdateFields{Nickname: req.Nickname}
	if req.Bank != nil {
		bank := models.Bank(*req.Bank)
		fields.Bank = &bank
	}
	if req.Kind != nil {
		kind := models.AccountKind(*req.Kind)
		fields.Kind = &kind
	}

	iconKey, err := saveUpload(c, h.store, "icon", uploads.PrefixAccountIcons)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if iconKey != "" {
		fields.IconKey = &iconKey
	}

	account, err := h.accountService.UpdateAccount(userID, accountID, fields)
	if err != nil {
		removeUpload(c, h.store, iconKey)
		respondWithError(c, err)
		return
	}
	if iconKey != "" {
		removeUpload(c, h.store, existing.IconKey)
	}

	h.auditService.Log(userID, services.AuditUpdateAccount, services.AuditResourceAccount, account.ID, c.ClientIP(), map[string]any{
		"nickname": account.Nickname,
		"bank":     account.Bank,
		"kind":     account.Kind,
	})

	c.JSON(http.StatusOK, h.toResponse(c, *account))
}

// DeleteAccount deletes an account and its transactions
// @Summary     Delete an account
// @Description Delete an account, every transaction posted to it and its icon
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} MessageResponse "Account deleted"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	accountID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.DeleteAccount(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	removeUpload(c, h.store, account.IconKey)

	h.auditService.Log(userID, services.AuditDeleteAccount, services.AuditResourceAccount, account.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Conta excluída."})
}
