package sim

import (
	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
)

// TxKind tells an initial purchase apart from a dividend reinvestment.
type TxKind string

const (
	TxInitialBuy TxKind = "INITIAL_BUY"
	TxReinvest   TxKind = "REINVEST"
)

// Transaction is one immutable ledger entry. Entries are appended in step
// order; the append order is the ledger's temporal order.
type Transaction struct {
	Date   market.Date     `json:"date"`
	Kind   TxKind          `json:"kind"`
	Shares decimal.Decimal `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	// Amount is the cash that became shares: the full lump sum for an
	// initial buy, shares*price for a reinvestment (less than the net
	// dividend when the fee or the volume cap bites).
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
}
