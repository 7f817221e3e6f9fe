// Package gst implements the pure line-item tax math and document totals
// for intra-state GST: tax splits evenly into CGST and SGST, with IGST
// reserved for inter-state transactions and always zero here.
package gst

import (
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// LineInput is the raw client input for a single document line.
type LineInput struct {
	Quantity        decimal.Decimal
	PricePerUnit    decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxRate         decimal.Decimal
	TaxMode         domain.TaxMode
}

// LineResult holds the unrounded monetary outcome of one line. Values stay
// unrounded so the aggregator can sum before rounding once; call Rounded
// before storing.
type LineResult struct {
	BaseAmount    decimal.Decimal
	Discount      decimal.Decimal
	TaxableAmount decimal.Decimal
	CGST          decimal.Decimal
	SGST          decimal.Decimal
	IGST          decimal.Decimal
	LineTotal     decimal.Decimal
}

// Rounded returns a copy with all monetary fields rounded to 2 decimal places.
func (r LineResult) Rounded() LineResult {
	return LineResult{
		BaseAmount:    r.BaseAmount.Round(2),
		Discount:      r.Discount.Round(2),
		TaxableAmount: r.TaxableAmount.Round(2),
		CGST:          r.CGST.Round(2),
		SGST:          r.SGST.Round(2),
		IGST:          r.IGST.Round(2),
		LineTotal:     r.LineTotal.Round(2),
	}
}

// CalculateLine computes taxable amount, CGST/SGST split, and line total for a
// single line. line is the zero-based index reported in validation errors.
//
// An absolute discount wins over a percentage one when both are supplied.
// In exclusive mode tax is added on top of the discounted amount; in inclusive
// mode the discounted amount already contains tax and the taxable base is
// backed out of it, leaving the line total unchanged.
func CalculateLine(line int, in LineInput, gstEnabled bool) (LineResult, error) {
	if !in.Quantity.IsPositive() {
		return LineResult{}, domain.NewLineValidationError(line, "quantity", "must be greater than zero")
	}
	if in.PricePerUnit.IsNegative() {
		return LineResult{}, domain.NewLineValidationError(line, "price_per_unit", "must not be negative")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return LineResult{}, domain.NewLineValidationError(line, "tax_rate", "must be between 0 and 100")
	}
	if in.DiscountAmount.IsNegative() || in.DiscountPercent.IsNegative() {
		return LineResult{}, domain.NewLineValidationError(line, "discount", "must not be negative")
	}

	base := in.Quantity.Mul(in.PricePerUnit)

	discount := in.DiscountAmount
	if !discount.IsPositive() {
		discount = base.Mul(in.DiscountPercent).Div(hundred)
	}
	if discount.GreaterThan(base) {
		return LineResult{}, domain.NewLineValidationError(line, "discount", "exceeds line amount")
	}

	afterDiscount := base.Sub(discount)

	res := LineResult{
		BaseAmount: base,
		Discount:   discount,
		IGST:       decimal.Zero,
	}

	if gstEnabled && in.TaxRate.IsPositive() {
		halfRate := in.TaxRate.Div(two).Div(hundred)
		switch in.TaxMode {
		case domain.TaxModeInclusive:
			res.TaxableAmount = afterDiscount.Div(decimal.NewFromInt(1).Add(in.TaxRate.Div(hundred)))
			res.CGST = res.TaxableAmount.Mul(halfRate)
			res.SGST = res.CGST
			res.LineTotal = afterDiscount
		default:
			res.TaxableAmount = afterDiscount
			res.CGST = afterDiscount.Mul(halfRate)
			res.SGST = res.CGST
			res.LineTotal = afterDiscount.Add(res.CGST).Add(res.SGST)
		}
		return res, nil
	}

	res.TaxableAmount = afterDiscount
	res.CGST = decimal.Zero
	res.SGST = decimal.Zero
	res.LineTotal = afterDiscount
	return res, nil
}

// CalculateLines runs CalculateLine over a whole document, failing on the
// first invalid line.
func CalculateLines(inputs []LineInput, gstEnabled bool) ([]LineResult, error) {
	results := make([]LineResult, 0, len(inputs))
	for i, in := range inputs {
		r, err := CalculateLine(i, in, gstEnabled)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
