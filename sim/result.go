package sim

import (
	"fmt"
	"io"
	"math"

	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
)

// Result is the immutable outcome of one run. All monetary figures are exact
// decimals; the annualized rate is the only float, computed once at the
// boundary.
type Result struct {
	InitialInvestment decimal.Decimal `json:"initial_investment"`
	MonthlyInvestment decimal.Decimal `json:"monthly_investment"`
	TotalInvested     decimal.Decimal `json:"total_invested"`

	TotalShares     decimal.Decimal `json:"total_shares"`
	FinalSharePrice decimal.Decimal `json:"final_share_price"`
	FinalValue      decimal.Decimal `json:"final_value"`

	PureCapitalGain    decimal.Decimal `json:"pure_capital_gain"`
	PureCapitalGainPct decimal.Decimal `json:"pure_capital_gain_pct"`
	ReinvestmentGain   decimal.Decimal `json:"reinvestment_gain"`
	TotalGain          decimal.Decimal `json:"total_gain"`
	TotalGainPct       decimal.Decimal `json:"total_gain_pct"`

	TotalDividendsReceived decimal.Decimal `json:"total_dividends_received"`
	TotalTaxesPaid         decimal.Decimal `json:"total_taxes_paid"`
	TotalFeesPaid          decimal.Decimal `json:"total_fees_paid"`

	AnnualizedReturnPct float64 `json:"annualized_return_pct"`

	Start market.Date `json:"start"`
	End   market.Date `json:"end"`

	Transactions []Transaction `json:"transactions"`
}

var hundred = decimal.NewFromInt(100)

// newResult derives the terminal metrics from the run's final state.
// initialShares isolates the original lot so price appreciation and
// reinvestment-funded growth can be reported separately.
func newResult(p Params, st state, initialShares, finalPrice decimal.Decimal) *Result {
	finalValue := st.shares.Mul(finalPrice)
	initialValue := initialShares.Mul(finalPrice)
	pure := initialValue.Sub(p.InitialInvestment)
	totalGain := finalValue.Sub(st.invested)

	return &Result{
		InitialInvestment: p.InitialInvestment,
		MonthlyInvestment: p.MonthlyInvestment,
		TotalInvested:     st.invested,

		TotalShares:     st.shares,
		FinalSharePrice: finalPrice,
		FinalValue:      finalValue,

		PureCapitalGain:    pure,
		PureCapitalGainPct: pure.Div(p.InitialInvestment).Mul(hundred),
		ReinvestmentGain:   finalValue.Sub(initialValue),
		TotalGain:          totalGain,
		TotalGainPct:       totalGain.Div(st.invested).Mul(hundred),

		TotalDividendsReceived: st.dividends,
		TotalTaxesPaid:         st.taxes,
		TotalFeesPaid:          st.fees,

		AnnualizedReturnPct: annualizedPct(p.Start, p.End, p.InitialInvestment, finalValue),

		Start: p.Start,
		End:   p.End,

		Transactions: st.ledger,
	}
}

// annualizedPct converts the run into a compound yearly rate:
// (finalValue/initial)^(365.25/days) - 1, as a percentage. Defined as 0 for a
// degenerate window or stake, where the power would blow up.
func annualizedPct(start, end market.Date, initial, finalValue decimal.Decimal) float64 {
	days := start.DaysUntil(end)
	if days <= 0 || !initial.IsPositive() {
		return 0
	}
	ratio := finalValue.InexactFloat64() / initial.InexactFloat64()
	return (math.Pow(ratio, 365.25/float64(days)) - 1) * 100
}

// Print writes a human-readable report of the run.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Simulation Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Period:            %s -> %s\n", r.Start, r.End)
	fmt.Fprintf(w, "Initial Invested:  $%s\n", r.InitialInvestment.StringFixed(2))
	fmt.Fprintf(w, "Total Invested:    $%s\n", r.TotalInvested.StringFixed(2))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Position")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Shares Held:       %s\n", r.TotalShares.StringFixed(6))
	fmt.Fprintf(w, "Final Price:       $%s\n", r.FinalSharePrice.StringFixed(2))
	fmt.Fprintf(w, "Portfolio Value:   $%s\n", r.FinalValue.StringFixed(2))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Returns")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Capital Gain:      $%s (%s%%)\n",
		r.PureCapitalGain.StringFixed(2), r.PureCapitalGainPct.StringFixed(2))
	fmt.Fprintf(w, "Reinvestment Gain: $%s\n", r.ReinvestmentGain.StringFixed(2))
	fmt.Fprintf(w, "Total Gain:        $%s (%s%%)\n",
		r.TotalGain.StringFixed(2), r.TotalGainPct.StringFixed(2))
	fmt.Fprintf(w, "Annualized:        %.2f%%\n", r.AnnualizedReturnPct)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Dividends & Costs")
	fmt.Fprintln(w, "--------------------------------------------------")
	gross := r.TotalDividendsReceived.Add(r.TotalTaxesPaid)
	fmt.Fprintf(w, "Dividends (gross): $%s\n", gross.StringFixed(2))
	fmt.Fprintf(w, "Withholding Tax:   $%s\n", r.TotalTaxesPaid.StringFixed(2))
	fmt.Fprintf(w, "Dividends (net):   $%s\n", r.TotalDividendsReceived.StringFixed(2))
	fmt.Fprintf(w, "Fees Paid:         $%s\n", r.TotalFeesPaid.StringFixed(2))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Transactions")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, tx := range r.Transactions {
		fmt.Fprintf(w, "%s  %-11s %s shares @ $%s (fee $%s)\n",
			tx.Date, tx.Kind, tx.Shares.StringFixed(6),
			tx.Price.StringFixed(2), tx.Fee.StringFixed(2))
	}
	fmt.Fprintln(w)
}
