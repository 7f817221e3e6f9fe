package xlsxexport_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"shopbooks/internal/domain"
	"shopbooks/internal/xlsxexport"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestWriteDocuments(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	docs := []domain.Document{
		{
			Number: "INV-20260830-0001",
			Type:   domain.DocTypeSale,
			Date:   time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
			Status: domain.DocStatusCompleted,
			Totals: domain.Totals{
				Subtotal:           dec("200"),
				TotalTaxableAmount: dec("200"),
				TotalTax:           dec("36"),
				FinalTotal:         dec("236"),
			},
			Payment: domain.PaymentInfo{
				Status:        domain.PaymentStatusPartial,
				PaidAmount:    dec("100"),
				PendingAmount: dec("136"),
				DueDate:       &due,
			},
			Items: []domain.LineItem{{Name: "Basmati Rice 5kg"}},
			Notes: "counter sale",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, xlsxexport.WriteDocuments(&buf, docs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Documents", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Number", get("A1"))
	assert.Equal(t, "Final Total", get("J1"))
	assert.Equal(t, "Created At", get("Q1"))

	assert.Equal(t, "INV-20260830-0001", get("A2"))
	assert.Equal(t, "sale", get("B2"))
	assert.Equal(t, "2026-08-30", get("C2"))
	assert.Equal(t, "236", get("J2"))
	assert.Equal(t, "partial", get("K2"))
	assert.Equal(t, "2026-09-15", get("N2"))
	assert.Equal(t, "1", get("O2"))
	assert.Equal(t, "counter sale", get("P2"))
}

func TestWriteDocuments_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, xlsxexport.WriteDocuments(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	assert.Len(t, rows, 1) // header only
}
