package sim

import "github.com/shopspring/decimal"

// FeePolicy computes transaction fees and dividend withholding tax. It is
// pure: no state, no side effects, safe to share across runs.
type FeePolicy struct {
	FeeRate decimal.Decimal // rate applied to the order amount
	MinFee  decimal.Decimal // per-transaction fee floor
	TaxRate decimal.Decimal // withholding rate on gross dividends
}

// DefaultFeePolicy carries the reference frictions: 0.25% commission with a
// $0.50 floor, 15.4% dividend withholding.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{
		FeeRate: decimal.NewFromFloat(0.0025),
		MinFee:  decimal.NewFromFloat(0.50),
		TaxRate: decimal.NewFromFloat(0.154),
	}
}

// TransactionFee is max(MinFee, FeeRate*cash).
func (p FeePolicy) TransactionFee(cash decimal.Decimal) decimal.Decimal {
	fee := cash.Mul(p.FeeRate)
	if fee.LessThan(p.MinFee) {
		return p.MinFee
	}
	return fee
}

// DividendTax is the withholding on a gross dividend amount.
func (p FeePolicy) DividendTax(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(p.TaxRate)
}

// Config carries the trading frictions and fill constraints for a run.
type Config struct {
	Fees FeePolicy

	// VolumeCap is the maximum fraction of a day's traded volume a single
	// order may consume.
	VolumeCap decimal.Decimal

	// ReinvestMin is the smallest net dividend worth sending to the executor.
	ReinvestMin decimal.Decimal

	// SharePrecision is the number of fractional digits a fill is rounded to
	// (half-up).
	SharePrecision int32
}

// DefaultConfig returns the reference configuration: 10% volume
// participation, $5 reinvestment threshold, 6-decimal fractional shares.
func DefaultConfig() Config {
	return Config{
		Fees:           DefaultFeePolicy(),
		VolumeCap:      decimal.NewFromFloat(0.10),
		ReinvestMin:    decimal.NewFromInt(5),
		SharePrecision: 6,
	}
}
