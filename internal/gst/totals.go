package gst

import (
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
)

// perLineTolerance absorbs the per-line storage rounding when re-checking a
// document's totals against its rounded lines.
var perLineTolerance = decimal.NewFromFloat(0.01)

// Aggregate folds unrounded line results into document totals, rounding each
// total once at the end. RoundOff is applied only when explicitly enabled.
// The fold is always a full re-run over every line; totals are never patched
// incrementally.
func Aggregate(results []LineResult, roundOff decimal.Decimal, roundOffEnabled bool) domain.Totals {
	var subtotal, discount, tax, taxable, lineSum decimal.Decimal
	for _, r := range results {
		subtotal = subtotal.Add(r.BaseAmount)
		discount = discount.Add(r.Discount)
		tax = tax.Add(r.CGST).Add(r.SGST).Add(r.IGST)
		taxable = taxable.Add(r.TaxableAmount)
		lineSum = lineSum.Add(r.LineTotal)
	}

	if !roundOffEnabled {
		roundOff = decimal.Zero
	}

	return domain.Totals{
		Subtotal:           subtotal.Round(2),
		TotalDiscount:      discount.Round(2),
		TotalTax:           tax.Round(2),
		TotalTaxableAmount: taxable.Round(2),
		RoundOff:           roundOff.Round(2),
		FinalTotal:         lineSum.Add(roundOff).Round(2),
	}
}

// CheckTotals verifies the final-total invariant against stored (rounded)
// line items: finalTotal == sum(lineTotal) + roundOff within tolerance.
// A mismatch means internal state is corrupt and the operation must abort.
func CheckTotals(items []domain.LineItem, totals domain.Totals) error {
	var lineSum decimal.Decimal
	for _, it := range items {
		lineSum = lineSum.Add(it.LineTotal)
	}
	expected := lineSum.Add(totals.RoundOff)
	tolerance := perLineTolerance.Mul(decimal.NewFromInt(int64(len(items) + 1)))
	if totals.FinalTotal.Sub(expected).Abs().GreaterThan(tolerance) {
		return domain.ErrTotalsMismatch
	}
	return nil
}
