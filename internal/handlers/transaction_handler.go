package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/pagination"
	"carteira/internal/services"
	"carteira/internal/uuid"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
	}
}

// CreateTransactionRequest represents the payload of a new income or
// expense. The account may be sent as conta_id or account_id.
type CreateTransactionRequest struct {
	ContaID     string `json:"conta_id" form:"conta_id"`
	AccountID   string `json:"account_id" form:"account_id"`
	CategoryID  string `json:"categoria_id" form:"categoria_id"`
	Type        string `json:"tipo" form:"tipo" binding:"required"`
	Amount      Amount `json:"valor" form:"valor"`
	Description string `json:"descricao" form:"descricao" binding:"max=255"`
	Date        string `json:"data" form:"data"`
}

func (r CreateTransactionRequest) account() string {
	if r.ContaID != "" {
		return r.ContaID
	}
	return r.AccountID
}

// CreateTransaction handles transaction creation
// @Summary     Create a transaction
// @Description Record an income (E) or expense (S) and apply it to the account balance
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction data"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	accountID := strings.TrimSpace(req.account())
	if !req.Amount.Present || accountID == "" || strings.TrimSpace(req.Date) == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Preencha todos os campos obrigatórios!"))
		return
	}
	if !req.Amount.Valid {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Valor inválido."))
		return
	}

	if accountID, err = uuid.Parse(accountID); err != nil {
		respondWithError(c, apperrors.ErrAccountNotFound)
		return
	}

	var categoryID *string
	if raw := strings.TrimSpace(req.CategoryID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondWithError(c, apperrors.ErrCategoryNotFound)
			return
		}
		categoryID = &id
	}

	date, err := parseFlexibleTime(strings.TrimSpace(req.Date))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	date = models.DateOnly(date)

	transaction, err := h.transactionService.CreateTransaction(
		userID,
		accountID,
		categoryID,
		models.TransactionType(strings.ToUpper(req.Type)),
		req.Amount.Value,
		req.Description,
		date,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateTx, services.AuditResourceTransaction, transaction.ID, c.ClientIP(), services.TransactionAuditChanges(transaction))

	c.JSON(http.StatusCreated, transaction)
}

// ListTransactions lists one page of the current month's transactions
// @Summary     List transactions
// @Description Filter by account, category, date range and description; sort by date or valor
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       conta      query string false "Account ID"
// @Param       categoria  query string false "Category ID"
// @Param       start_date query string false "First day, YYYY-MM-DD"
// @Param       end_date   query string false "Last day, YYYY-MM-DD"
// @Param       search     query string false "Description contains"
// @Param       sort       query string false "date, -date, valor or -valor"
// @Param       page       query string false "Page number"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Page of transactions"
// @Failure     400 {object} ErrorResponse "Malformed filter"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, page, err := parseListingQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(userID, filter, pagination.PageRequest{Page: page})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetTransaction returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// DeleteTransaction deletes a transaction and reverses its balance effect
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteTx, services.AuditResourceTransaction, transactionID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Movimentação excluída."})
}
