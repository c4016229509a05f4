package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
)

func setupPlanningRouter(handler *PlanningHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/planning", handler.GetPlanning)
	auth.POST("/planning", handler.SetPlan)
	auth.PUT("/planning/categories/:id", handler.UpdatePlannedAmount)
	auth.DELETE("/planning/categories/:id", handler.DeletePlannedCategory)
	return r
}

func capturePlanned(got *decimal.Decimal) *mockCategoryService {
	return &mockCategoryService{
		setPlannedAmountFn: func(_, id string, amount decimal.Decimal) (*models.Category, error) {
			*got = amount
			return &models.Category{Base: models.Base{ID: id}, PlannedAmount: amount}, nil
		},
	}
}

func TestPlanningHandler_UpdatePlannedAmount(t *testing.T) {
	tests := []struct {
		name     string
		form     bool
		body     string
		expected string
	}{
		{name: "json number", body: `{"novo_valor":800}`, expected: "800"},
		{name: "json string with comma", body: `{"novo_valor":"12,50"}`, expected: "12.5"},
		{name: "json garbage becomes zero", body: `{"novo_valor":"abc"}`, expected: "0"},
		{name: "json object becomes zero", body: `{"novo_valor":{"x":1}}`, expected: "0"},
		{name: "missing becomes zero", body: `{}`, expected: "0"},
		{name: "form value", form: true, body: "novo_valor=250.75", expected: "250.75"},
		{name: "form garbage becomes zero", form: true, body: "novo_valor=muito", expected: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decimal.NewFromInt(-1)
			r := setupPlanningRouter(NewPlanningHandler(capturePlanned(&got), &mockReportService{}, &mockAuditService{}))

			path := "/planning/categories/" + testCategoryID
			var code int
			if tt.form {
				code = doForm(r, "PUT", path, tt.body).Code
			} else {
				code = doRequest(r, "PUT", path, tt.body).Code
			}

			if code != http.StatusOK {
				t.Fatalf("expected 200, got %d", code)
			}
			if !got.Equal(decimal.RequireFromString(tt.expected)) {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestPlanningHandler_SetPlan(t *testing.T) {
	t.Run("sets the selected category", func(t *testing.T) {
		got := decimal.Zero
		audit := &mockAuditService{}
		r := setupPlanningRouter(NewPlanningHandler(capturePlanned(&got), &mockReportService{}, audit))

		rec := doForm(r, "POST", "/planning", "categoria_id="+testCategoryID+"&novo_valor=400")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Equal(decimal.NewFromInt(400)) {
			t.Errorf("expected 400, got %s", got)
		}
		if len(audit.actions) != 1 || audit.actions[0] != "SET_PLANNED_AMOUNT" {
			t.Errorf("unexpected audit %v", audit.actions)
		}
	})

	t.Run("requires a category", func(t *testing.T) {
		r := setupPlanningRouter(NewPlanningHandler(&mockCategoryService{}, &mockReportService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/planning", `{"novo_valor":10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "INVALID_INPUT")
		assertErrorMessage(t, result, "Selecione uma categoria.")
	})

	t.Run("returns 404 for an unknown category", func(t *testing.T) {
		catSvc := &mockCategoryService{
			setPlannedAmountFn: func(_, _ string, _ decimal.Decimal) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupPlanningRouter(NewPlanningHandler(catSvc, &mockReportService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/planning", `{"categoria_id":"`+testCategoryID+`","novo_valor":10}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})

	t.Run("returns 404 for a malformed category id", func(t *testing.T) {
		r := setupPlanningRouter(NewPlanningHandler(&mockCategoryService{}, &mockReportService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/planning", `{"categoria_id":"42","novo_valor":10}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestPlanningHandler_DeletePlannedCategory(t *testing.T) {
	deleted := ""
	catSvc := &mockCategoryService{
		deleteCategoryFn: func(_, id string) error {
			deleted = id
			return nil
		},
	}
	r := setupPlanningRouter(NewPlanningHandler(catSvc, &mockReportService{}, &mockAuditService{}))

	rec := doRequest(r, "DELETE", "/planning/categories/"+testCategoryID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != testCategoryID {
		t.Errorf("expected %s deleted, got %q", testCategoryID, deleted)
	}
}
