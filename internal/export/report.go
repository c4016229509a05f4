// Package export renders filtered transaction listings as downloadable
// CSV and PDF reports.
package export

import (
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/models"
	"carteira/internal/money"
)

const (
	// UncategorizedLabel is shown for transactions without a category.
	UncategorizedLabel = "Sem categoria"
	// EmptyPlaceholder fills the description column of an empty PDF table.
	EmptyPlaceholder = "Nenhuma movimentação encontrada"

	descriptionLimit = 30
)

// Header is the column row shared by both formats.
var Header = []string{"Conta", "Categoria", "Data", "Tipo", "Valor", "Descrição"}

// Row is one transaction flattened for output.
type Row struct {
	Account     string
	Category    string
	Date        time.Time
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
}

// Report is the table model both renderers consume.
type Report struct {
	GeneratedAt time.Time
	Rows        []Row
}

// Build flattens transactions into a Report. Account and Category should be
// preloaded; missing associations render as empty or uncategorized.
func Build(transactions []models.Transaction, generatedAt time.Time) *Report {
	rows := make([]Row, 0, len(transactions))
	for _, tx := range transactions {
		row := Row{
			Category:    UncategorizedLabel,
			Date:        tx.Date,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: tx.Description,
		}
		if tx.Account != nil {
			row.Account = tx.Account.Nickname
		}
		if tx.Category != nil {
			row.Category = tx.Category.Name
		}
		rows = append(rows, row)
	}
	return &Report{GeneratedAt: generatedAt, Rows: rows}
}

// CSVRecord returns the row as CSV fields: ISO date, type code and the
// amount with two decimals.
func (r Row) CSVRecord() []string {
	return []string{
		r.Account,
		r.Category,
		r.Date.Format("2006-01-02"),
		string(r.Type),
		r.Amount.StringFixed(2),
		r.Description,
	}
}

// PDFCells returns the row as displayed in the PDF table.
func (r Row) PDFCells() []string {
	return []string{
		r.Account,
		r.Category,
		r.Date.Format("02/01/2006"),
		r.Type.Label(),
		money.FormatBRL(r.Amount),
		truncate(r.Description, descriptionLimit),
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
