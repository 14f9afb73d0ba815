package market

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Bar is one trading day of a daily price history.
type Bar struct {
	Date   Date
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// PriceSeries is a daily price history ordered by strictly increasing date.
// It is produced by the data layer and read-only to the simulator.
type PriceSeries []Bar

// Validate checks the ordering and pricing invariants the simulator relies on.
func (s PriceSeries) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("price series is empty")
	}
	for i, b := range s {
		if i > 0 && !s[i-1].Date.Before(b.Date) {
			return fmt.Errorf("price series dates not strictly increasing at %s", b.Date)
		}
		if !b.Close.IsPositive() {
			return fmt.Errorf("non-positive close %s on %s", b.Close, b.Date)
		}
		if b.Volume < 0 {
			return fmt.Errorf("negative volume %d on %s", b.Volume, b.Date)
		}
	}
	return nil
}

// searchFrom returns the index of the first bar on or after d.
func (s PriceSeries) searchFrom(d Date) int {
	return sort.Search(len(s), func(i int) bool { return !s[i].Date.Before(d) })
}

// BarOn returns the bar traded exactly on d.
func (s PriceSeries) BarOn(d Date) (Bar, bool) {
	i := s.searchFrom(d)
	if i < len(s) && s[i].Date.Equal(d) {
		return s[i], true
	}
	return Bar{}, false
}

// OnOrAfter returns the first bar on or after d, ok=false when the series is
// exhausted before d.
func (s PriceSeries) OnOrAfter(d Date) (Bar, bool) {
	i := s.searchFrom(d)
	if i < len(s) {
		return s[i], true
	}
	return Bar{}, false
}

// Dividend is a single per-share dividend event keyed by its ex-date.
type Dividend struct {
	ExDate Date
	Amount decimal.Decimal
}

// DividendSeries is an ordered list of dividend events. Multiple events on
// the same ex-date are allowed; dates must not decrease.
type DividendSeries []Dividend

// Validate rejects out-of-order dates and negative amounts.
func (s DividendSeries) Validate() error {
	for i, dv := range s {
		if dv.Amount.IsNegative() {
			return fmt.Errorf("negative dividend %s on %s", dv.Amount, dv.ExDate)
		}
		if i > 0 && s[i-1].ExDate.After(dv.ExDate) {
			return fmt.Errorf("dividend dates out of order at %s", dv.ExDate)
		}
	}
	return nil
}

// Between returns the sub-series with ex-dates in [from, to]. The result
// aliases the receiver; callers must not mutate it.
func (s DividendSeries) Between(from, to Date) DividendSeries {
	lo := sort.Search(len(s), func(i int) bool { return !s[i].ExDate.Before(from) })
	hi := sort.Search(len(s), func(i int) bool { return s[i].ExDate.After(to) })
	if lo >= hi {
		return nil
	}
	return s[lo:hi]
}
