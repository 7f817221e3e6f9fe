package gst_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shopbooks/internal/domain"
	"shopbooks/internal/gst"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestCalculateLine_ExclusiveTax(t *testing.T) {
	r, err := gst.CalculateLine(0, gst.LineInput{
		Quantity:     dec("2"),
		PricePerUnit: dec("100"),
		TaxRate:      dec("18"),
		TaxMode:      domain.TaxModeExclusive,
	}, true)

	assert.NoError(t, err)
	assert.Equal(t, "200.00", r.BaseAmount.StringFixed(2))
	assert.Equal(t, "200.00", r.TaxableAmount.StringFixed(2))
	assert.Equal(t, "18.00", r.CGST.StringFixed(2))
	assert.Equal(t, "18.00", r.SGST.StringFixed(2))
	assert.Equal(t, "0.00", r.IGST.StringFixed(2))
	assert.Equal(t, "236.00", r.LineTotal.StringFixed(2))
}

func TestCalculateLine_InclusiveTax(t *testing.T) {
	r, err := gst.CalculateLine(0, gst.LineInput{
		Quantity:     dec("2"),
		PricePerUnit: dec("100"),
		TaxRate:      dec("18"),
		TaxMode:      domain.TaxModeInclusive,
	}, true)

	assert.NoError(t, err)
	// Taxable base is backed out of the tax-inclusive price; total is unchanged.
	assert.Equal(t, "169.49", r.TaxableAmount.Round(2).StringFixed(2))
	assert.Equal(t, "15.25", r.CGST.Round(2).StringFixed(2))
	assert.Equal(t, "15.25", r.SGST.Round(2).StringFixed(2))
	assert.Equal(t, "200.00", r.LineTotal.StringFixed(2))

	// taxable + cgst + sgst reassembles the inclusive price.
	sum := r.TaxableAmount.Add(r.CGST).Add(r.SGST)
	assert.Equal(t, "200.00", sum.Round(2).StringFixed(2))
}

func TestCalculateLine_GSTDisabled(t *testing.T) {
	r, err := gst.CalculateLine(0, gst.LineInput{
		Quantity:     dec("3"),
		PricePerUnit: dec("50"),
		TaxRate:      dec("18"),
		TaxMode:      domain.TaxModeExclusive,
	}, false)

	assert.NoError(t, err)
	assert.True(t, r.CGST.IsZero())
	assert.True(t, r.SGST.IsZero())
	assert.Equal(t, "150.00", r.LineTotal.StringFixed(2))
}

func TestCalculateLine_AbsoluteDiscountWins(t *testing.T) {
	r, err := gst.CalculateLine(0, gst.LineInput{
		Quantity:        dec("1"),
		PricePerUnit:    dec("100"),
		DiscountPercent: dec("10"),
		DiscountAmount:  dec("25"),
		TaxMode:         domain.TaxModeExclusive,
	}, false)

	assert.NoError(t, err)
	assert.Equal(t, "25.00", r.Discount.StringFixed(2))
	assert.Equal(t, "75.00", r.LineTotal.StringFixed(2))
}

func TestCalculateLine_PercentDiscount(t *testing.T) {
	r, err := gst.CalculateLine(0, gst.LineInput{
		Quantity:        dec("4"),
		PricePerUnit:    dec("250"),
		DiscountPercent: dec("10"),
		TaxRate:         dec("12"),
		TaxMode:         domain.TaxModeExclusive,
	}, true)

	assert.NoError(t, err)
	assert.Equal(t, "100.00", r.Discount.StringFixed(2))
	assert.Equal(t, "900.00", r.TaxableAmount.StringFixed(2))
	assert.Equal(t, "54.00", r.CGST.StringFixed(2))
	assert.Equal(t, "1008.00", r.LineTotal.StringFixed(2))
}

func TestCalculateLine_ZeroTaxRateInclusive(t *testing.T) {
	r, err := gst.CalculateLine(0, gst.LineInput{
		Quantity:     dec("1"),
		PricePerUnit: dec("99.99"),
		TaxRate:      dec("0"),
		TaxMode:      domain.TaxModeInclusive,
	}, true)

	assert.NoError(t, err)
	assert.True(t, r.CGST.IsZero())
	assert.Equal(t, "99.99", r.TaxableAmount.StringFixed(2))
	assert.Equal(t, "99.99", r.LineTotal.StringFixed(2))
}

func TestCalculateLine_Guards(t *testing.T) {
	cases := []struct {
		name  string
		in    gst.LineInput
		field string
	}{
		{"zero quantity", gst.LineInput{Quantity: dec("0"), PricePerUnit: dec("10")}, "quantity"},
		{"negative price", gst.LineInput{Quantity: dec("1"), PricePerUnit: dec("-1")}, "price_per_unit"},
		{"tax rate above 100", gst.LineInput{Quantity: dec("1"), PricePerUnit: dec("10"), TaxRate: dec("101")}, "tax_rate"},
		{"negative discount", gst.LineInput{Quantity: dec("1"), PricePerUnit: dec("10"), DiscountAmount: dec("-5")}, "discount"},
		{"discount exceeds amount", gst.LineInput{Quantity: dec("1"), PricePerUnit: dec("10"), DiscountAmount: dec("15")}, "discount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gst.CalculateLine(3, tc.in, true)
			assert.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, 3, verr.Line)
		})
	}
}

func TestCalculateLines_FailsOnFirstBadLine(t *testing.T) {
	inputs := []gst.LineInput{
		{Quantity: dec("1"), PricePerUnit: dec("10")},
		{Quantity: dec("0"), PricePerUnit: dec("10")},
	}
	_, err := gst.CalculateLines(inputs, true)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, 1, verr.Line)
}
