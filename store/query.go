package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/quantfold/dripsim/market"
	"github.com/quantfold/dripsim/pkg/id"
	"github.com/quantfold/dripsim/sim"
	"github.com/shopspring/decimal"
)

// SavePrices upserts daily bars for a ticker, stamping each row with now so
// freshness checks can tell cached data apart from stale data.
func (s *SQLite) SavePrices(ticker string, bars market.PriceSeries, now time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO prices (ticker, date, open, high, low, close, volume, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume, updated_at=excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(ticker, b.Date.String(),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(),
			b.Volume, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveDividends upserts per-share dividend events for a ticker. One row per
// ex-date: when the series carries several events on the same date, the last
// one wins (see Schema).
func (s *SQLite) SaveDividends(ticker string, divs market.DividendSeries, now time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO dividends (ticker, date, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET
			amount=excluded.amount, updated_at=excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range divs {
		if _, err := stmt.Exec(ticker, d.ExDate.String(), d.Amount.String(), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PriceSeries reads the cached bars for ticker with dates in [from, to],
// ordered by date.
func (s *SQLite) PriceSeries(ticker string, from, to market.Date) (market.PriceSeries, error) {
	rows, err := s.db.Query(`
		SELECT date, open, high, low, close, volume
		FROM prices
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, ticker, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out market.PriceSeries
	for rows.Next() {
		var (
			b      market.Bar
			date   string
			fields [4]string
		)
		if err := rows.Scan(&date, &fields[0], &fields[1], &fields[2], &fields[3], &b.Volume); err != nil {
			return nil, err
		}
		if b.Date, err = market.ParseDate(date); err != nil {
			return nil, err
		}
		decs := [...]*decimal.Decimal{&b.Open, &b.High, &b.Low, &b.Close}
		for i, raw := range fields {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("prices %s %s: bad decimal %q: %w", ticker, date, raw, err)
			}
			*decs[i] = d
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DividendSeries reads the cached dividend events for ticker with ex-dates in
// [from, to], ordered by date.
func (s *SQLite) DividendSeries(ticker string, from, to market.Date) (market.DividendSeries, error) {
	rows, err := s.db.Query(`
		SELECT date, amount
		FROM dividends
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, ticker, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out market.DividendSeries
	for rows.Next() {
		var (
			dv           market.Dividend
			date, amount string
		)
		if err := rows.Scan(&date, &amount); err != nil {
			return nil, err
		}
		if dv.ExDate, err = market.ParseDate(date); err != nil {
			return nil, err
		}
		if dv.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		out = append(out, dv)
	}
	return out, rows.Err()
}

// LastPriceDate returns the most recent cached trading date for ticker,
// ok=false when nothing is cached.
func (s *SQLite) LastPriceDate(ticker string) (market.Date, bool, error) {
	var date sql.NullString
	err := s.db.QueryRow(`SELECT MAX(date) FROM prices WHERE ticker = ?`, ticker).Scan(&date)
	if err != nil {
		return market.Date{}, false, err
	}
	if !date.Valid {
		return market.Date{}, false, nil
	}
	d, err := market.ParseDate(date.String)
	if err != nil {
		return market.Date{}, false, err
	}
	return d, true, nil
}

// LastUpdated returns when the ticker's price cache was last written,
// ok=false when nothing is cached.
func (s *SQLite) LastUpdated(ticker string) (time.Time, bool, error) {
	var updated sql.NullTime
	err := s.db.QueryRow(`SELECT MAX(updated_at) FROM prices WHERE ticker = ?`, ticker).Scan(&updated)
	if err != nil {
		return time.Time{}, false, err
	}
	if !updated.Valid {
		return time.Time{}, false, nil
	}
	return updated.Time, true, nil
}

// RecordRun persists a completed simulation with its full transaction ledger
// and returns the generated run id.
func (s *SQLite) RecordRun(ticker string, r *sim.Result) (string, error) {
	runID := id.New()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	reinvest := 0
	for _, t := range r.Transactions {
		if t.Kind == sim.TxReinvest {
			reinvest = 1
			break
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO runs
		(run_id, ticker, created, start_date, end_date,
		 initial_investment, monthly_investment, reinvest,
		 total_invested, total_shares, final_price, final_value, total_gain,
		 dividends_received, taxes_paid, fees_paid, annualized_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, ticker, time.Now().UTC(), r.Start.String(), r.End.String(),
		r.InitialInvestment.String(), r.MonthlyInvestment.String(), reinvest,
		r.TotalInvested.String(), r.TotalShares.String(),
		r.FinalSharePrice.String(), r.FinalValue.String(), r.TotalGain.String(),
		r.TotalDividendsReceived.String(), r.TotalTaxesPaid.String(),
		r.TotalFeesPaid.String(), r.AnnualizedReturnPct,
	); err != nil {
		return "", err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_transactions (run_id, seq, date, kind, shares, price, amount, fee)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, t := range r.Transactions {
		if _, err := stmt.Exec(runID, i, t.Date.String(), string(t.Kind),
			t.Shares.String(), t.Price.String(), t.Amount.String(), t.Fee.String()); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// RunRecord is a persisted run header: identity, parameters, and the
// aggregate results, without the transaction ledger.
type RunRecord struct {
	RunID   string
	Ticker  string
	Created time.Time
	Result  sim.Result
}

// GetRun reads one run header. The ledger is loaded separately via
// RunTransactions.
func (s *SQLite) GetRun(runID string) (*RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT ticker, created, start_date, end_date,
		       initial_investment, monthly_investment,
		       total_invested, total_shares, final_price, final_value, total_gain,
		       dividends_received, taxes_paid, fees_paid, annualized_pct
		FROM runs WHERE run_id = ?`, runID)

	rec := RunRecord{RunID: runID}
	var (
		start, end string
		fields     [10]string
	)
	err := row.Scan(&rec.Ticker, &rec.Created, &start, &end,
		&fields[0], &fields[1], &fields[2], &fields[3], &fields[4],
		&fields[5], &fields[6], &fields[7], &fields[8], &fields[9],
		&rec.Result.AnnualizedReturnPct)
	if err != nil {
		return nil, err
	}

	if rec.Result.Start, err = market.ParseDate(start); err != nil {
		return nil, err
	}
	if rec.Result.End, err = market.ParseDate(end); err != nil {
		return nil, err
	}
	decs := [...]*decimal.Decimal{
		&rec.Result.InitialInvestment, &rec.Result.MonthlyInvestment,
		&rec.Result.TotalInvested, &rec.Result.TotalShares,
		&rec.Result.FinalSharePrice, &rec.Result.FinalValue, &rec.Result.TotalGain,
		&rec.Result.TotalDividendsReceived, &rec.Result.TotalTaxesPaid,
		&rec.Result.TotalFeesPaid,
	}
	for i, raw := range fields {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad decimal %q: %w", runID, raw, err)
		}
		*decs[i] = d
	}
	return &rec, nil
}

// RunTransactions returns a run's ledger in its original append order.
func (s *SQLite) RunTransactions(runID string) ([]sim.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT date, kind, shares, price, amount, fee
		FROM run_transactions
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sim.Transaction
	for rows.Next() {
		var (
			t          sim.Transaction
			date, kind string
			fields     [4]string
		)
		if err := rows.Scan(&date, &kind, &fields[0], &fields[1], &fields[2], &fields[3]); err != nil {
			return nil, err
		}
		if t.Date, err = market.ParseDate(date); err != nil {
			return nil, err
		}
		t.Kind = sim.TxKind(kind)
		decs := [...]*decimal.Decimal{&t.Shares, &t.Price, &t.Amount, &t.Fee}
		for i, raw := range fields {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("run %s: bad decimal %q: %w", runID, raw, err)
			}
			*decs[i] = d
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
