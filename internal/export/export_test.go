package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carteira/internal/models"
)

func sampleTransactions() []models.Transaction {
	nubank := &models.Account{Nickname: "Nubank"}
	food := &models.Category{Name: "Alimentação"}
	return []models.Transaction{
		{
			Account:     nubank,
			Category:    food,
			Type:        models.TransactionTypeExpense,
			Amount:      decimal.RequireFromString("30"),
			Description: "Feira de domingo com a família toda reunida",
			Date:        time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			Account:     nubank,
			Type:        models.TransactionTypeIncome,
			Amount:      decimal.RequireFromString("1500.5"),
			Description: "Salário",
			Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestBuild(t *testing.T) {
	generated := time.Date(2024, time.March, 10, 14, 7, 0, 0, time.UTC)
	report := Build(sampleTransactions(), generated)

	require.Len(t, report.Rows, 2)
	assert.Equal(t, generated, report.GeneratedAt)
	assert.Equal(t, "Alimentação", report.Rows[0].Category)
	assert.Equal(t, UncategorizedLabel, report.Rows[1].Category)
	assert.Equal(t, "Nubank", report.Rows[1].Account)
}

func TestBuild_MissingAccount(t *testing.T) {
	report := Build([]models.Transaction{{Type: models.TransactionTypeIncome, Amount: decimal.NewFromInt(1)}}, time.Now())
	require.Len(t, report.Rows, 1)
	assert.Empty(t, report.Rows[0].Account)
}

func TestRowPDFCells(t *testing.T) {
	rows := Build(sampleTransactions(), time.Now()).Rows

	cells := rows[0].PDFCells()
	assert.Equal(t, "03/03/2024", cells[2])
	assert.Equal(t, "Saída", cells[3])
	assert.Equal(t, "R$ 30.00", cells[4])
	assert.Equal(t, 30, len([]rune(cells[5])))
	assert.Equal(t, "Feira de domingo com a família", cells[5])

	cells = rows[1].PDFCells()
	assert.Equal(t, "Entrada", cells[3])
	assert.Equal(t, "R$ 1500.50", cells[4])
	assert.Equal(t, "Salário", cells[5])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Build(sampleTransactions(), time.Now())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"Nubank", "Alimentação", "2024-03-03", "S", "30.00", "Feira de domingo com a família toda reunida"}, records[1])
	assert.Equal(t, []string{"Nubank", "Sem categoria", "2024-03-05", "E", "1500.50", "Salário"}, records[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Build(nil, time.Now())))
	assert.Equal(t, "Conta,Categoria,Data,Tipo,Valor,Descrição\n", buf.String())
}

func TestWritePDF(t *testing.T) {
	for _, tc := range []struct {
		name string
		txs  []models.Transaction
	}{
		{"with rows", sampleTransactions()},
		{"empty", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WritePDF(&buf, Build(tc.txs, time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC))))
			out := buf.String()
			assert.True(t, strings.HasPrefix(out, "%PDF-"), "missing PDF signature")
			assert.Contains(t, out, "%%EOF")
		})
	}
}

func TestWritePDF_ManyRowsPaginates(t *testing.T) {
	base := sampleTransactions()[0]
	txs := make([]models.Transaction, 120)
	for i := range txs {
		txs[i] = base
	}

	var many, one bytes.Buffer
	require.NoError(t, WritePDF(&many, Build(txs, time.Now())))
	require.NoError(t, WritePDF(&one, Build(txs[:1], time.Now())))
	assert.Greater(t, many.Len(), one.Len())
}
