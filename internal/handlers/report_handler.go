package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "carteira/internal/errors"
	"carteira/internal/export"
	"carteira/internal/models"
	"carteira/internal/pagination"
	"carteira/internal/services"
	"carteira/internal/uploads"
)

// ReportHandler serves the read-only pages: home, dashboard, manage,
// reports and the downloadable exports.
type ReportHandler struct {
	accountService     services.AccountServicer
	categoryService    services.CategoryServicer
	transactionService services.TransactionServicer
	reportService      services.ReportServicer
	store              uploads.Store
	period             services.Period
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	accountService services.AccountServicer,
	categoryService services.CategoryServicer,
	transactionService services.TransactionServicer,
	reportService services.ReportServicer,
	store uploads.Store,
	period services.Period,
) *ReportHandler {
	return &ReportHandler{
		accountService:     accountService,
		categoryService:    categoryService,
		transactionService: transactionService,
		reportService:      reportService,
		store:              store,
		period:             period,
	}
}

// HomeResponse is the landing page summary.
type HomeResponse struct {
	Accounts       []AccountResponse         `json:"accounts"`
	TotalBalance   decimal.Decimal           `json:"total_balance"`
	MonthIncome    decimal.Decimal           `json:"month_income"`
	MonthExpenses  decimal.Decimal           `json:"month_expenses"`
	OverallBalance decimal.Decimal           `json:"overall_balance"`
	EssentialSplit *services.EssentialSplit  `json:"essential_split"`
	Evolution      *services.EvolutionSeries `json:"evolution"`
	CategorySpend  *services.CategorySpend   `json:"category_spend"`
	Budgets        []services.CategoryBudget `json:"budgets"`
}

// DashboardResponse holds the charts of one month and its year.
type DashboardResponse struct {
	Month         int                       `json:"month"`
	Year          int                       `json:"year"`
	CategorySpend *services.CategorySpend   `json:"category_spend"`
	Evolution     *services.EvolutionSeries `json:"evolution"`
}

// ManageResponse lists everything the user can edit.
type ManageResponse struct {
	Accounts     []AccountResponse    `json:"accounts"`
	TotalBalance decimal.Decimal      `json:"total_balance"`
	Categories   []models.Category    `json:"categories"`
	Transactions []models.Transaction `json:"transactions"`
}

// ReportsResponse is one listing page plus the filter choices.
type ReportsResponse struct {
	*pagination.PageResponse[models.Transaction]
	Accounts   []AccountResponse `json:"accounts"`
	Categories []models.Category `json:"categories"`
}

// Home returns the landing page summary
// @Summary     Home summary
// @Description Balances, current-month totals, essential split, charts and budgets
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} HomeResponse "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /home [get]
func (h *ReportHandler) Home(c *gin.Context) {
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
	totals, err := h.reportService.MonthTotals(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	split, err := h.reportService.EssentialSplit(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := h.period.Reference()
	evolution, err := h.reportService.Evolution(userID, now.Year())
	if err != nil {
		respondWithError(c, err)
		return
	}
	spend, err := h.reportService.CategorySpend(userID, now.Year(), now.Month())
	if err != nil {
		respondWithError(c, err)
		return
	}
	budgets, err := h.reportService.CategoryBudgets(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, HomeResponse{
		Accounts:       toAccountResponses(c, h.store, accounts),
		TotalBalance:   total,
		MonthIncome:    totals.Income,
		MonthExpenses:  totals.Expenses,
		OverallBalance: total.Add(totals.Income).Sub(totals.Expenses).Round(2),
		EssentialSplit: split,
		Evolution:      evolution,
		CategorySpend:  spend,
		Budgets:        budgets,
	})
}

// Dashboard returns the charts for the requested month and year
// @Summary     Dashboard charts
// @Description Missing or invalid month and year fall back to the current ones
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       month query int false "Month, 1-12"
// @Param       year  query int false "Year"
// @Success     200 {object} DashboardResponse "Charts"
// @Router      /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := h.period.Reference()
	month := int(now.Month())
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		month = m
	}
	year := now.Year()
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y >= 1 && y <= 9999 {
		year = y
	}

	spend, err := h.reportService.CategorySpend(userID, year, time.Month(month))
	if err != nil {
		respondWithError(c, err)
		return
	}
	evolution, err := h.reportService.Evolution(userID, year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Month:         month,
		Year:          year,
		CategorySpend: spend,
		Evolution:     evolution,
	})
}

// Manage returns accounts, categories and every transaction
// @Summary     Management overview
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} ManageResponse "Everything editable"
// @Router      /manage [get]
func (h *ReportHandler) Manage(c *gin.Context) {
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
	categories, err := h.categoryService.GetUserCategories(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactions, err := h.transactionService.GetAllTransactions(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ManageResponse{
		Accounts:     toAccountResponses(c, h.store, accounts),
		TotalBalance: total,
		Categories:   categories,
		Transactions: transactions,
	})
}

// Reports returns one filtered listing page with the filter choices
// @Summary     Reports page
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       conta      query string false "Account ID"
// @Param       categoria  query string false "Category ID"
// @Param       start_date query string false "First day, YYYY-MM-DD"
// @Param       end_date   query string false "Last day, YYYY-MM-DD"
// @Param       search     query string false "Description contains"
// @Param       sort       query string false "date, -date, valor or -valor"
// @Param       page       query string false "Page number"
// @Success     200 {object} ReportsResponse "Listing page"
// @Failure     400 {object} ErrorResponse "Malformed filter"
// @Router      /reports [get]
func (h *ReportHandler) Reports(c *gin.Context) {
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
	accounts, err := h.accountService.GetUserAccounts(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	categories, err := h.categoryService.GetUserCategories(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReportsResponse{
		PageResponse: result,
		Accounts:     toAccountResponses(c, h.store, accounts),
		Categories:   categories,
	})
}

// ExportCSV downloads the filtered listing as CSV
// @Summary     Export CSV
// @Tags        reports
// @Produce     text/csv
// @Security    BearerAuth
// @Param       conta      query string false "Account ID"
// @Param       categoria  query string false "Category ID"
// @Param       start_date query string false "First day, YYYY-MM-DD"
// @Param       end_date   query string false "Last day, YYYY-MM-DD"
// @Param       search     query string false "Description contains"
// @Param       sort       query string false "date, -date, valor or -valor"
// @Success     200 {file} file "relatorios.csv"
// @Failure     400 {object} ErrorResponse "Malformed filter"
// @Router      /reports/export/csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	report, ok := h.buildReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, report); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	attachment(c, export.CSVContentType, export.CSVFilename, buf.Bytes())
}

// ExportPDF downloads the filtered listing as PDF
// @Summary     Export PDF
// @Tags        reports
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       conta      query string false "Account ID"
// @Param       categoria  query string false "Category ID"
// @Param       start_date query string false "First day, YYYY-MM-DD"
// @Param       end_date   query string false "Last day, YYYY-MM-DD"
// @Param       search     query string false "Description contains"
// @Param       sort       query string false "date, -date, valor or -valor"
// @Success     200 {file} file "relatorios.pdf"
// @Failure     400 {object} ErrorResponse "Malformed filter"
// @Router      /reports/export/pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	report, ok := h.buildReport(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, report); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	attachment(c, export.PDFContentType, export.PDFFilename, buf.Bytes())
}

// buildReport runs the listing filters without pagination. It writes the
// error response itself and reports false on failure.
func (h *ReportHandler) buildReport(c *gin.Context) (*export.Report, bool) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}

	filter, _, err := parseListingQuery(c)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}

	transactions, err := h.transactionService.ExportTransactions(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return nil, false
	}
	return export.Build(transactions, h.period.LocalNow()), true
}

func attachment(c *gin.Context, contentType, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
