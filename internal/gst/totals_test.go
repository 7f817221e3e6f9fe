package gst_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shopbooks/internal/domain"
	"shopbooks/internal/gst"
)

func calcLines(t *testing.T, inputs []gst.LineInput, gstEnabled bool) []gst.LineResult {
	t.Helper()
	results, err := gst.CalculateLines(inputs, gstEnabled)
	assert.NoError(t, err)
	return results
}

func TestAggregate_SumsUnroundedAndRoundsOnce(t *testing.T) {
	results := calcLines(t, []gst.LineInput{
		{Quantity: dec("2"), PricePerUnit: dec("100"), TaxRate: dec("18"), TaxMode: domain.TaxModeExclusive},
		{Quantity: dec("1"), PricePerUnit: dec("333.33"), TaxRate: dec("18"), TaxMode: domain.TaxModeInclusive},
	}, true)

	totals := gst.Aggregate(results, decimal.Zero, false)

	assert.Equal(t, "533.33", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "236.00", results[0].LineTotal.StringFixed(2))
	// Exclusive line adds tax on top; inclusive line keeps its quoted price.
	assert.Equal(t, "569.33", totals.FinalTotal.StringFixed(2))

	lineSum := results[0].LineTotal.Add(results[1].LineTotal)
	assert.Equal(t, totals.FinalTotal.StringFixed(2), lineSum.Round(2).StringFixed(2))
}

func TestAggregate_RoundOffOnlyWhenEnabled(t *testing.T) {
	results := calcLines(t, []gst.LineInput{
		{Quantity: dec("1"), PricePerUnit: dec("99.49"), TaxMode: domain.TaxModeExclusive},
	}, false)

	ignored := gst.Aggregate(results, dec("0.51"), false)
	assert.Equal(t, "0.00", ignored.RoundOff.StringFixed(2))
	assert.Equal(t, "99.49", ignored.FinalTotal.StringFixed(2))

	applied := gst.Aggregate(results, dec("0.51"), true)
	assert.Equal(t, "0.51", applied.RoundOff.StringFixed(2))
	assert.Equal(t, "100.00", applied.FinalTotal.StringFixed(2))
}

func TestAggregate_Idempotent(t *testing.T) {
	results := calcLines(t, []gst.LineInput{
		{Quantity: dec("3"), PricePerUnit: dec("33.33"), TaxRate: dec("5"), TaxMode: domain.TaxModeExclusive},
		{Quantity: dec("7"), PricePerUnit: dec("14.29"), TaxRate: dec("12"), TaxMode: domain.TaxModeInclusive},
	}, true)

	first := gst.Aggregate(results, decimal.Zero, false)
	second := gst.Aggregate(results, decimal.Zero, false)
	assert.Equal(t, first, second)
}

func TestCheckTotals_AcceptsStoredRoundedLines(t *testing.T) {
	results := calcLines(t, []gst.LineInput{
		{Quantity: dec("1"), PricePerUnit: dec("100"), TaxRate: dec("18"), TaxMode: domain.TaxModeInclusive},
		{Quantity: dec("2"), PricePerUnit: dec("47.5"), TaxRate: dec("18"), TaxMode: domain.TaxModeInclusive},
	}, true)
	totals := gst.Aggregate(results, decimal.Zero, false)

	items := make([]domain.LineItem, len(results))
	for i, r := range results {
		rr := r.Rounded()
		items[i] = domain.LineItem{LineTotal: rr.LineTotal}
	}

	assert.NoError(t, gst.CheckTotals(items, totals))
}

func TestCheckTotals_RejectsCorruptTotals(t *testing.T) {
	items := []domain.LineItem{
		{LineTotal: dec("100.00")},
		{LineTotal: dec("50.00")},
	}
	totals := domain.Totals{FinalTotal: dec("175.00"), RoundOff: decimal.Zero}

	assert.ErrorIs(t, gst.CheckTotals(items, totals), domain.ErrTotalsMismatch)
}
