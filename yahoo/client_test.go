package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) market.Date { return market.MustParseDate(s) }

func ts(s string) int64 { return day(s).Time().Unix() }

func f(v float64) *float64 { return &v }

func i(v int64) *int64 { return &v }

func chartJSON(res apiResult) []byte {
	var resp chartResponse
	resp.Chart.Result = []apiResult{res}
	b, _ := json.Marshal(resp)
	return b
}

func TestHistorySuccess(t *testing.T) {
	t.Parallel()

	res := apiResult{
		Timestamp: []int64{ts("2024-01-02"), ts("2024-01-03"), ts("2024-01-04")},
	}
	res.Indicators.Quote = []apiQuote{{
		Open:   []*float64{f(100.5), f(101), nil},
		High:   []*float64{f(102), f(103), nil},
		Low:    []*float64{f(99), f(100), nil},
		Close:  []*float64{f(101.25), f(102.5), nil},
		Volume: []*int64{i(150000), i(160000), nil},
	}}
	res.Events.Dividends = map[string]apiDividend{
		fmt.Sprint(ts("2024-01-03")): {Amount: 0.55, Date: ts("2024-01-03")},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/TSLY", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "div", r.URL.Query().Get("events"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.WriteHeader(http.StatusOK)
		w.Write(chartJSON(res))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	bars, divs, err := client.History(context.Background(),
		"TSLY", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)

	// the null-close day is dropped
	require.Len(t, bars, 2)
	assert.Equal(t, day("2024-01-02"), bars[0].Date)
	assert.True(t, bars[0].Close.Equal(decimal.NewFromFloat(101.25)))
	assert.Equal(t, int64(160000), bars[1].Volume)

	require.Len(t, divs, 1)
	assert.Equal(t, day("2024-01-03"), divs[0].ExDate)
	assert.True(t, divs[0].Amount.Equal(decimal.NewFromFloat(0.55)))
}

func TestHistorySortsDividends(t *testing.T) {
	t.Parallel()

	res := apiResult{Timestamp: []int64{ts("2024-01-02")}}
	res.Indicators.Quote = []apiQuote{{
		Open: []*float64{f(100)}, High: []*float64{f(100)},
		Low: []*float64{f(100)}, Close: []*float64{f(100)},
		Volume: []*int64{i(1)},
	}}
	res.Events.Dividends = map[string]apiDividend{
		"b": {Amount: 0.60, Date: ts("2024-02-15")},
		"a": {Amount: 0.55, Date: ts("2024-01-15")},
		"c": {Amount: 0.65, Date: ts("2024-03-15")},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(chartJSON(res))
	}))
	defer server.Close()

	_, divs, err := NewClientWithURL(server.URL).History(context.Background(),
		"TSLY", day("2024-01-01"), day("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, divs, 3)
	assert.NoError(t, divs.Validate())
	assert.Equal(t, day("2024-01-15"), divs[0].ExDate)
	assert.Equal(t, day("2024-03-15"), divs[2].ExDate)
}

func TestHistoryChartError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer server.Close()

	_, _, err := NewClientWithURL(server.URL).History(context.Background(),
		"NOPE", day("2024-01-01"), day("2024-01-31"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not Found")
}

func TestHistoryRetriesServerErrors(t *testing.T) {
	t.Parallel()

	res := apiResult{Timestamp: []int64{ts("2024-01-02")}}
	res.Indicators.Quote = []apiQuote{{
		Open: []*float64{f(100)}, High: []*float64{f(100)},
		Low: []*float64{f(100)}, Close: []*float64{f(100)},
		Volume: []*int64{i(1)},
	}}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(chartJSON(res))
	}))
	defer server.Close()

	bars, _, err := NewClientWithURL(server.URL).History(context.Background(),
		"TSLY", day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHistoryDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, _, err := NewClientWithURL(server.URL).History(context.Background(),
		"TSLY", day("2024-01-01"), day("2024-01-31"))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHistoryHonorsContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := NewClientWithURL(server.URL).History(ctx,
		"TSLY", day("2024-01-01"), day("2024-01-31"))
	require.Error(t, err)
}

func TestHistoryRequiresSymbol(t *testing.T) {
	t.Parallel()

	_, _, err := NewClient().History(context.Background(),
		"", day("2024-01-01"), day("2024-01-31"))
	require.Error(t, err)
}
