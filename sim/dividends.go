package sim

import (
	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
)

// monthlyDividend returns the gross cash dividend for the calendar month of
// day: the per-share amounts with ex-dates in that month, times the current
// share count. The count is taken now, so shares bought later in the same
// month earn nothing retroactively. divs must already be filtered to the
// simulation window.
func monthlyDividend(divs market.DividendSeries, day market.Date, shares decimal.Decimal) decimal.Decimal {
	perShare := decimal.Decimal{}
	for _, dv := range divs.Between(day.FirstOfMonth(), day.LastOfMonth()) {
		perShare = perShare.Add(dv.Amount)
	}
	return perShare.Mul(shares)
}
