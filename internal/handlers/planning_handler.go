package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "carteira/internal/errors"
	"carteira/internal/services"
	"carteira/internal/uuid"
)

// PlanningHandler serves the monthly budget planning page.
type PlanningHandler struct {
	categoryService services.CategoryServicer
	reportService   services.ReportServicer
	auditService    services.AuditServicer
}

// NewPlanningHandler creates a new PlanningHandler
func NewPlanningHandler(categoryService services.CategoryServicer, reportService services.ReportServicer, auditService services.AuditServicer) *PlanningHandler {
	return &PlanningHandler{
		categoryService: categoryService,
		reportService:   reportService,
		auditService:    auditService,
	}
}

// PlannedAmountRequest carries a new planned amount. Non-numeric values
// are stored as 0.
type PlannedAmountRequest struct {
	NewValue Amount `json:"novo_valor" form:"novo_valor"`
}

// SetPlanRequest selects the category whose plan is set.
type SetPlanRequest struct {
	CategoryID string `json:"categoria_id" form:"categoria_id"`
	NewValue   Amount `json:"novo_valor" form:"novo_valor"`
}

// GetPlanning returns every category with planned, spent and percent used
// @Summary     Planning overview
// @Tags        planning
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.CategoryBudget "Budgets"
// @Router      /planning [get]
func (h *PlanningHandler) GetPlanning(c *gin.Context) {
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

// UpdatePlannedAmount sets the planned amount of one category
// @Summary     Set planned amount
// @Description Accepts JSON or a form field novo_valor; malformed or negative values become 0
// @Tags        planning
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body PlannedAmountRequest true "New planned amount"
// @Success     200 {object} models.Category "Updated category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /planning/categories/{id} [put]
func (h *PlanningHandler) UpdatePlannedAmount(c *gin.Context) {
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

	var req PlannedAmountRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	h.setPlanned(c, userID, categoryID, req.NewValue)
}

// SetPlan sets the planned amount of the selected category
// @Summary     Set plan for a selected category
// @Tags        planning
// @Accept      json,x-www-form-urlencoded
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetPlanRequest true "Category and planned amount"
// @Success     200 {object} models.Category "Updated category"
// @Failure     400 {object} ErrorResponse "No category selected"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /planning [post]
func (h *PlanningHandler) SetPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetPlanRequest
	if err := c.ShouldBind(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if strings.TrimSpace(req.CategoryID) == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Selecione uma categoria."))
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		respondWithError(c, apperrors.ErrCategoryNotFound)
		return
	}

	h.setPlanned(c, userID, categoryID, req.NewValue)
}

func (h *PlanningHandler) setPlanned(c *gin.Context, userID, categoryID string, value Amount) {
	category, err := h.categoryService.SetPlannedAmount(userID, categoryID, value.OrZero())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditSetPlannedAmount, services.AuditResourceCategory, category.ID, c.ClientIP(), map[string]any{
		"planned_amount": category.PlannedAmount,
	})
	c.JSON(http.StatusOK, category)
}

// DeletePlannedCategory deletes a category from the planning page
// @Summary     Delete a planned category
// @Tags        planning
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} MessageResponse "Category deleted"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /planning/categories/{id} [delete]
func (h *PlanningHandler) DeletePlannedCategory(c *gin.Context) {
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
