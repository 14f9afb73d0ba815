package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Calendar resolves arbitrary dates against the trading days of one price
// series. A trading day is any date present in the series; everything else
// (weekends, holidays, halts) simply isn't there.
type Calendar struct {
	series PriceSeries
}

// NewCalendar wraps an already validated price series.
func NewCalendar(s PriceSeries) *Calendar { return &Calendar{series: s} }

// Localize maps a timestamp onto the series' calendar: time of day and zone
// are dropped, leaving a plain Date.
func (c *Calendar) Localize(t time.Time) Date { return DateOf(t) }

// BarOn returns the bar traded exactly on d.
func (c *Calendar) BarOn(d Date) (Bar, bool) { return c.series.BarOn(d) }

// PriceOnOrAfter returns the first trading day at or after d and its close.
// ok is false when the series ends before d.
func (c *Calendar) PriceOnOrAfter(d Date) (Date, decimal.Decimal, bool) {
	b, ok := c.series.OnOrAfter(d)
	if !ok {
		return Date{}, decimal.Decimal{}, false
	}
	return b.Date, b.Close, true
}

// NextMonthFirstTradingDay returns the first trading day on or after the
// first calendar day of the month following d. ok=false means the series
// ends before that day; that is the simulation's termination signal.
func (c *Calendar) NextMonthFirstTradingDay(d Date) (Date, bool) {
	b, ok := c.series.OnOrAfter(d.FirstOfMonth().AddMonths(1))
	if !ok {
		return Date{}, false
	}
	return b.Date, true
}
