package sim

import (
	"fmt"

	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
)

// Params are the caller-supplied inputs for one run.
type Params struct {
	InitialInvestment decimal.Decimal

	// MonthlyInvestment is accepted and reported but not applied during
	// stepping: only the initial lump sum and dividend reinvestment change
	// the position.
	MonthlyInvestment decimal.Decimal

	Start market.Date
	End   market.Date

	ReinvestDividends bool
}

// state is the mutable snapshot owned by exactly one run.
type state struct {
	shares    decimal.Decimal
	invested  decimal.Decimal
	dividends decimal.Decimal // net of tax, reinvested or not
	fees      decimal.Decimal
	taxes     decimal.Decimal
	ledger    []Transaction
}

// Engine drives the month-stepped simulation over one security's history.
// Every Run starts from a clean state, so two runs with identical params
// yield identical results. An Engine is not safe for concurrent Run calls;
// use one Engine per goroutine.
type Engine struct {
	cal  *market.Calendar
	divs market.DividendSeries
	cfg  Config

	st state
}

// NewEngine validates the input series once and returns an engine bound to
// them. The series are read-only from here on.
func NewEngine(prices market.PriceSeries, divs market.DividendSeries, cfg Config) (*Engine, error) {
	if err := prices.Validate(); err != nil {
		return nil, &ValidationError{Field: "prices", Reason: err.Error()}
	}
	if err := divs.Validate(); err != nil {
		return nil, &ValidationError{Field: "dividends", Reason: err.Error()}
	}
	return &Engine{cal: market.NewCalendar(prices), divs: divs, cfg: cfg}, nil
}

// Run executes one simulation: an initial buy at the first trading day on or
// after Start, then one step per calendar month from Start that accrues
// dividends and, when enabled, reinvests the net amount through the executor.
// The loop ends when the series has no trading day in the next month or the
// step passes End. Errors abort the run; no partial result is returned.
func (e *Engine) Run(p Params) (*Result, error) {
	if !p.Start.Before(p.End) {
		return nil, &ValidationError{
			Field:  "dates",
			Reason: fmt.Sprintf("start %s must be before end %s", p.Start, p.End),
		}
	}
	if !p.InitialInvestment.IsPositive() {
		return nil, &ValidationError{Field: "initial_investment", Reason: "must be positive"}
	}

	e.st = state{}
	divs := e.divs.Between(p.Start, p.End)
	x := executor{cal: e.cal, cfg: e.cfg}

	// Initial buy: the whole lump sum converts at the first close on or
	// after Start. The fee is charged on top of the lump sum rather than
	// shrinking the lot.
	day, price, ok := e.cal.PriceOnOrAfter(p.Start)
	if !ok {
		return nil, fmt.Errorf("%w: on or after %s", ErrNoTradingData, p.Start)
	}
	initialShares := p.InitialInvestment.Div(price).Round(e.cfg.SharePrecision)
	fee := e.cfg.Fees.TransactionFee(p.InitialInvestment)

	e.st.shares = initialShares
	e.st.invested = p.InitialInvestment
	e.st.fees = fee
	e.st.ledger = append(e.st.ledger, Transaction{
		Date:   day,
		Kind:   TxInitialBuy,
		Shares: initialShares,
		Price:  price,
		Amount: p.InitialInvestment,
		Fee:    fee,
	})

	// Stepping starts at the requested start, not the buy day: ex-dates in
	// the start month that precede the first trading day still accrue.
	// Fills always happen on a trading day, so the execution day trails the
	// accrual month until stepping catches up with the calendar.
	execDay := day
	for current := p.Start; !current.After(p.End); {
		gross := monthlyDividend(divs, current, e.st.shares)
		if gross.IsPositive() {
			tax := e.cfg.Fees.DividendTax(gross)
			net := gross.Sub(tax)
			e.st.taxes = e.st.taxes.Add(tax)
			e.st.dividends = e.st.dividends.Add(net)

			if p.ReinvestDividends && net.GreaterThan(e.cfg.ReinvestMin) {
				f, err := x.execute(execDay, net)
				if err != nil {
					return nil, err
				}
				if !f.empty() {
					e.st.shares = e.st.shares.Add(f.shares)
					e.st.fees = e.st.fees.Add(f.fee)
					e.st.ledger = append(e.st.ledger, Transaction{
						Date:   execDay,
						Kind:   TxReinvest,
						Shares: f.shares,
						Price:  f.price,
						Amount: f.cost,
						Fee:    f.fee,
					})
				}
			}
		}

		next, ok := e.cal.NextMonthFirstTradingDay(current)
		if !ok {
			break
		}
		current, execDay = next, next
	}

	_, finalPrice, ok := e.cal.PriceOnOrAfter(p.End)
	if !ok {
		return nil, fmt.Errorf("%w: on or after %s", ErrNoTradingData, p.End)
	}

	return newResult(p, e.st, initialShares, finalPrice), nil
}
