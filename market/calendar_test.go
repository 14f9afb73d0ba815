package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalendar() *Calendar {
	return NewCalendar(PriceSeries{
		testBar("2024-01-02", 100, 10),
		testBar("2024-01-31", 101, 10),
		testBar("2024-02-05", 102, 10),
		testBar("2024-04-01", 103, 10), // March has no trading days
	})
}

func TestCalendarLocalize(t *testing.T) {
	t.Parallel()

	cal := testCalendar()
	tokyo := time.FixedZone("JST", 9*60*60)
	got := cal.Localize(time.Date(2024, time.January, 2, 9, 0, 0, 0, tokyo))
	assert.Equal(t, MustParseDate("2024-01-02"), got)
}

func TestCalendarPriceOnOrAfter(t *testing.T) {
	t.Parallel()

	cal := testCalendar()

	d, px, ok := cal.PriceOnOrAfter(MustParseDate("2024-01-01"))
	require.True(t, ok)
	assert.Equal(t, MustParseDate("2024-01-02"), d)
	assert.True(t, px.Equal(decimal.NewFromInt(100)))

	d, px, ok = cal.PriceOnOrAfter(MustParseDate("2024-02-05"))
	require.True(t, ok)
	assert.Equal(t, MustParseDate("2024-02-05"), d)
	assert.True(t, px.Equal(decimal.NewFromInt(102)))

	_, _, ok = cal.PriceOnOrAfter(MustParseDate("2024-04-02"))
	assert.False(t, ok, "series exhausted")
}

func TestCalendarNextMonthFirstTradingDay(t *testing.T) {
	t.Parallel()

	cal := testCalendar()

	// from any January day, the next step is the first February trading day
	d, ok := cal.NextMonthFirstTradingDay(MustParseDate("2024-01-02"))
	require.True(t, ok)
	assert.Equal(t, MustParseDate("2024-02-05"), d)

	d, ok = cal.NextMonthFirstTradingDay(MustParseDate("2024-01-31"))
	require.True(t, ok)
	assert.Equal(t, MustParseDate("2024-02-05"), d)

	// March is empty, so stepping from February lands in April
	d, ok = cal.NextMonthFirstTradingDay(MustParseDate("2024-02-05"))
	require.True(t, ok)
	assert.Equal(t, MustParseDate("2024-04-01"), d)

	// no trading day after the series end: termination signal
	_, ok = cal.NextMonthFirstTradingDay(MustParseDate("2024-04-01"))
	assert.False(t, ok)
}
