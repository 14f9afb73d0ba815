package sim

import (
	"fmt"

	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
)

// executor fills one buy order against a single trading day's close price and
// volume. It is stateless between calls; all position bookkeeping belongs to
// the engine.
type executor struct {
	cal *market.Calendar
	cfg Config
}

// fill is the outcome of one executed order.
type fill struct {
	shares decimal.Decimal
	cost   decimal.Decimal // shares * price, fee excluded
	fee    decimal.Decimal
	price  decimal.Decimal
}

func (f fill) empty() bool { return !f.shares.IsPositive() }

// execute buys with cash on day. The fee comes off the top, then the order is
// capped at VolumeCap of the day's volume and rounded to SharePrecision.
// A zero fill is returned (and no fee is owed) when the fee consumes the cash
// or the cap rounds the order away; the caller records no transaction then.
func (x executor) execute(day market.Date, cash decimal.Decimal) (fill, error) {
	bar, ok := x.cal.BarOn(day)
	if !ok {
		return fill{}, fmt.Errorf("%w: %s", ErrMissingPrice, day)
	}

	fee := x.cfg.Fees.TransactionFee(cash)
	available := cash.Sub(fee)
	if !available.IsPositive() {
		return fill{}, nil
	}

	byVolume := decimal.NewFromInt(bar.Volume).Mul(x.cfg.VolumeCap)
	byCash := available.Div(bar.Close)
	shares := decimal.Min(byVolume, byCash).Round(x.cfg.SharePrecision)
	if !shares.IsPositive() {
		return fill{}, nil
	}

	return fill{
		shares: shares,
		cost:   shares.Mul(bar.Close),
		fee:    fee,
		price:  bar.Close,
	}, nil
}
