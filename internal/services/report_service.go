package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "carteira/internal/errors"
	"carteira/internal/models"
	"carteira/internal/money"
)

// MonthLabels are the short month names used on every chart axis.
var MonthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// ChartPalette is cycled through by position when coloring category charts.
var ChartPalette = []string{"#10B981", "#06b6d4", "#f97316", "#ef4444", "#60a5fa", "#7c3aed", "#f59e0b", "#14b8a6"}

// UncategorizedLabel names the bucket for transactions with no category.
const UncategorizedLabel = "Sem categoria"

// reportService computes the read-only aggregations behind the dashboards.
type reportService struct {
	db     *gorm.DB
	period Period
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, period Period) ReportServicer {
	return &reportService{db: db, period: period}
}

type categoryTotal struct {
	CategoryID *string
	Total      decimal.Decimal
}

// CategoryBudgets returns every category with its current-month expense
// total and the truncated percentage of the planned amount used.
func (s *reportService) CategoryBudgets(userID string) ([]CategoryBudget, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("name ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals, err := s.expenseByCategory(s.db.Scopes(s.period.CurrentMonth("date")), userID)
	if err != nil {
		return nil, err
	}
	spent := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		if t.CategoryID != nil {
			spent[*t.CategoryID] = t.Total
		}
	}

	budgets := make([]CategoryBudget, 0, len(categories))
	for _, c := range categories {
		total := spent[c.ID].Round(2)
		pct, _ := money.PercentOf(total, c.PlannedAmount)
		budgets = append(budgets, CategoryBudget{
			Category:    c,
			Spent:       total,
			PercentUsed: pct,
		})
	}
	return budgets, nil
}

// Evolution returns the twelve monthly income and expense totals of year.
func (s *reportService) Evolution(userID string, year int) (*EvolutionSeries, error) {
	start, end := yearRange(year)

	var rows []struct {
		Month int
		Type  models.TransactionType
		Total decimal.Decimal
	}
	if err := s.db.Model(&models.Transaction{}).
		Select(monthExpr(s.db, "date")+" AS month, type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date >= ? AND date < ?", userID, start, end).
		Group("month, type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	series := &EvolutionSeries{
		Year:     year,
		Labels:   append([]string(nil), MonthLabels[:]...),
		Income:   make([]decimal.Decimal, 12),
		Expenses: make([]decimal.Decimal, 12),
	}
	for i := 0; i < 12; i++ {
		series.Income[i] = decimal.Zero
		series.Expenses[i] = decimal.Zero
	}
	for _, r := range rows {
		if r.Month < 1 || r.Month > 12 {
			continue
		}
		switch r.Type {
		case models.TransactionTypeIncome:
			series.Income[r.Month-1] = r.Total.Round(2)
		case models.TransactionTypeExpense:
			series.Expenses[r.Month-1] = r.Total.Round(2)
		}
	}
	return series, nil
}

// CategorySpend groups one month's expenses by category, largest first.
func (s *reportService) CategorySpend(userID string, year int, month time.Month) (*CategorySpend, error) {
	start, end := monthRange(year, month)
	totals, err := s.expenseByCategory(s.db.Where("date >= ? AND date < ?", start, end), userID)
	if err != nil {
		return nil, err
	}

	names, err := s.categoryNames(userID)
	if err != nil {
		return nil, err
	}

	type entry struct {
		label string
		total decimal.Decimal
	}
	entries := make([]entry, 0, len(totals))
	for _, t := range totals {
		label := UncategorizedLabel
		if t.CategoryID != nil {
			if name, ok := names[*t.CategoryID]; ok {
				label = name
			}
		}
		entries = append(entries, entry{label: label, total: t.Total.Round(2)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if c := entries[i].total.Cmp(entries[j].total); c != 0 {
			return c > 0
		}
		return entries[i].label < entries[j].label
	})

	out := &CategorySpend{
		Labels: make([]string, len(entries)),
		Values: make([]decimal.Decimal, len(entries)),
		Colors: make([]string, len(entries)),
	}
	for i, e := range entries {
		out.Labels[i] = e.label
		out.Values[i] = e.total
		out.Colors[i] = ChartPalette[i%len(ChartPalette)]
	}
	return out, nil
}

// MonthTotals returns current-month income and expense sums.
func (s *reportService) MonthTotals(userID string) (*MonthTotals, error) {
	var rows []struct {
		Type  models.TransactionType
		Total decimal.Decimal
	}
	if err := s.db.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ?", userID).
		Scopes(s.period.CurrentMonth("date")).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := &MonthTotals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, r := range rows {
		switch r.Type {
		case models.TransactionTypeIncome:
			totals.Income = r.Total.Round(2)
		case models.TransactionTypeExpense:
			totals.Expenses = r.Total.Round(2)
		}
	}
	return totals, nil
}

// EssentialSplit divides current-month expenses between essential categories
// and the rest. Uncategorized spend counts as non-essential.
func (s *reportService) EssentialSplit(userID string) (*EssentialSplit, error) {
	totals, err := s.expenseByCategory(s.db.Scopes(s.period.CurrentMonth("date")), userID)
	if err != nil {
		return nil, err
	}

	var essentialIDs []string
	if err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND essential = ?", userID, true).
		Pluck("id", &essentialIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	essential := make(map[string]bool, len(essentialIDs))
	for _, id := range essentialIDs {
		essential[id] = true
	}

	split := &EssentialSplit{EssentialTotal: decimal.Zero, NonEssentialTotal: decimal.Zero}
	for _, t := range totals {
		if t.CategoryID != nil && essential[*t.CategoryID] {
			split.EssentialTotal = split.EssentialTotal.Add(t.Total)
		} else {
			split.NonEssentialTotal = split.NonEssentialTotal.Add(t.Total)
		}
	}
	split.EssentialTotal = split.EssentialTotal.Round(2)
	split.NonEssentialTotal = split.NonEssentialTotal.Round(2)

	whole := money.Sum(split.EssentialTotal, split.NonEssentialTotal)
	split.EssentialPercent, _ = money.PercentOf(split.EssentialTotal, whole)
	split.NonEssentialPercent, _ = money.PercentOf(split.NonEssentialTotal, whole)
	return split, nil
}

// expenseByCategory sums expense amounts per category id on top of scoped,
// which carries the date window.
func (s *reportService) expenseByCategory(scoped *gorm.DB, userID string) ([]categoryTotal, error) {
	var totals []categoryTotal
	if err := scoped.Model(&models.Transaction{}).
		Select("category_id, COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Group("category_id").
		Scan(&totals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return totals, nil
}

func (s *reportService) categoryNames(userID string) (map[string]string, error) {
	var rows []struct {
		ID   string
		Name string
	}
	if err := s.db.Model(&models.Category{}).
		Select("id, name").
		Where("user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Name
	}
	return names, nil
}
