package store

// Schema creates the history cache and the run journal. Monetary columns are
// TEXT holding decimal strings so values round-trip exactly.
//
// The dividends table keys on (ticker, date): the cache holds at most one
// event per ex-date, the shape the chart API delivers. A series carrying
// several events on one date collapses to the last on save.
const Schema = `
CREATE TABLE IF NOT EXISTS prices (
	ticker TEXT NOT NULL,
	date TEXT NOT NULL,
	open TEXT NOT NULL,
	high TEXT NOT NULL,
	low TEXT NOT NULL,
	close TEXT NOT NULL,
	volume INTEGER NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS dividends (
	ticker TEXT NOT NULL,
	date TEXT NOT NULL,
	amount TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (ticker, date)
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	ticker TEXT NOT NULL,
	created DATETIME NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	initial_investment TEXT NOT NULL,
	monthly_investment TEXT NOT NULL,
	reinvest INTEGER NOT NULL,
	total_invested TEXT NOT NULL,
	total_shares TEXT NOT NULL,
	final_price TEXT NOT NULL,
	final_value TEXT NOT NULL,
	total_gain TEXT NOT NULL,
	dividends_received TEXT NOT NULL,
	taxes_paid TEXT NOT NULL,
	fees_paid TEXT NOT NULL,
	annualized_pct REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS run_transactions (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	date TEXT NOT NULL,
	kind TEXT NOT NULL,
	shares TEXT NOT NULL,
	price TEXT NOT NULL,
	amount TEXT NOT NULL,
	fee TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker, created);
`
