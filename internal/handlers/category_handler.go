package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	reportService   services.ReportServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, reportService services.ReportServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		reportService:   reportService,
		auditService:    auditService,
	}
}

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name      string `json:"name" form:"name" binding:"required,max=50"`
	Essential bool   `json:"essential" form:"essential"`
}

// UpdateCategoryRequest holds the editable category fields
type UpdateCategoryRequest struct {
	Name          *string `json:"name" form:"name" binding:"omitempty,max=50"`
	PlannedAmount Amount  `json:"planned_amount" form:"planned_amount"`
	Essential     *bool   `json:"essential" form:"essential"`
}

// CreateCategory handles category creation
// @Summary     Create a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category data"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name, req.Essential)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateCategory, services.AuditResourceCategory, category.ID, c.ClientIP(), map[string]any{
		"name":      category.Name,
		"essential": category.Essential,
	})
	c.JSON(http.StatusCreated, category)
}

// ListCategories lists categories with their current-month budget usage
// @Summary     List categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.CategoryBudget "Categories with spend and percent used"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.reportService.CategoryBudgets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, budgets)
}

// GetCategory returns one category
// @Summary     Get a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory updates a category
// @Summary     Update a category
// @Description A malformed planned_amount is stored as 0
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to change"
// @Success     200 {object} models.Category "Updated category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fields := services.CategoryUpdateFields{Name: req.Name, Essential: req.Essential}
	if req.PlannedAmount.Present {
		planned := req.PlannedAmount.OrZero()
		fields.PlannedAmount = &planned
	}

	category, err := h.categoryService.UpdateCategory(userID, categoryID, fields)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateCategory, services.AuditResourceCategory, category.ID, c.ClientIP(), map[string]any{
		"name":           category.Name,
		"planned_amount": category.PlannedAmount,
		"essential":      category.Essential,
	})
	c.JSON(http.StatusOK, category)
}

// ToggleEssential flips the essential flag of a category
// @Summary     Toggle essential
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Updated category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id}/toggle-essential [post]
func (h *CategoryHandler) ToggleEssential(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.ToggleEssential(userID, categoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditToggleEssential, services.AuditResourceCategory, category.ID, c.ClientIP(), map[string]any{
		"essential": category.Essential,
	})
	c.JSON(http.StatusOK, category)
}

// DeleteCategory deletes a category
// @Summary     Delete a category
// @Description Transactions in the category are kept and become uncategorized
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categoryID, err := parseIDParam(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteCategory, services.AuditResourceCategory, categoryID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Categoria excluída."})
}
