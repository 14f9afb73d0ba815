package sim

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionFeeRate(t *testing.T) {
	t.Parallel()

	p := DefaultFeePolicy()

	// 0.25% of $10,000 is $25, well above the floor.
	fee := p.TransactionFee(decimal.NewFromInt(10000))
	assert.True(t, fee.Equal(decimal.NewFromInt(25)), "got %s", fee)
}

func TestTransactionFeeFloor(t *testing.T) {
	t.Parallel()

	p := DefaultFeePolicy()

	// 0.25% of $84.60 is $0.2115, so the $0.50 floor applies.
	fee := p.TransactionFee(decimal.NewFromFloat(84.60))
	assert.True(t, fee.Equal(decimal.NewFromFloat(0.50)), "got %s", fee)
}

func TestTransactionFeeAtBreakEven(t *testing.T) {
	t.Parallel()

	p := DefaultFeePolicy()

	// $200 * 0.25% == $0.50 exactly; either side of the max is the floor.
	fee := p.TransactionFee(decimal.NewFromInt(200))
	assert.True(t, fee.Equal(decimal.NewFromFloat(0.50)), "got %s", fee)
}

func TestDividendTax(t *testing.T) {
	t.Parallel()

	p := DefaultFeePolicy()

	tax := p.DividendTax(decimal.NewFromInt(100))
	assert.True(t, tax.Equal(decimal.NewFromFloat(15.4)), "got %s", tax)
}
