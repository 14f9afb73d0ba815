// Package yahoo fetches daily price and dividend history from the Yahoo
// Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/quantfold/dripsim/market"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the public Yahoo Finance query endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const (
	maxAttempts = 3
	retryDelay  = 500 * time.Millisecond
	userAgent   = "dripsim/1.0"
)

// Client talks to the Yahoo Finance v8 chart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Yahoo Finance client against the public endpoint.
func NewClient() *Client {
	return NewClientWithURL(DefaultBaseURL)
}

// NewClientWithURL creates a client against a custom endpoint, mainly for
// tests.
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiQuote holds the per-field arrays of the chart response. Yahoo uses JSON
// null for days it has no data, hence the pointer elements.
type apiQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type apiDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type apiResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []apiQuote `json:"quote"`
	} `json:"indicators"`
	Events struct {
		Dividends map[string]apiDividend `json:"dividends"`
	} `json:"events"`
}

type chartResponse struct {
	Chart struct {
		Result []apiResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches daily bars and dividend events for symbol with dates in
// [from, to].
func (c *Client) History(ctx context.Context, symbol string, from, to market.Date) (market.PriceSeries, market.DividendSeries, error) {
	if symbol == "" {
		return nil, nil, fmt.Errorf("symbol is required")
	}

	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("events", "div")
	params.Set("period1", fmt.Sprintf("%d", from.Time().Unix()))
	// period2 is exclusive, push it past the last requested day
	params.Set("period2", fmt.Sprintf("%d", to.AddDays(1).Time().Unix()))

	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		c.baseURL, url.PathEscape(symbol), params.Encode())

	body, err := c.get(ctx, apiURL)
	if err != nil {
		return nil, nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, nil, fmt.Errorf("chart API error %s: %s",
			resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil, fmt.Errorf("chart API returned no result for %s", symbol)
	}

	return convert(resp.Chart.Result[0])
}

// get executes the request, retrying transient failures with a growing delay.
func (c *Client) get(ctx context.Context, apiURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("execute request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		lastErr = fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		// client errors will not heal on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// convert maps the chart payload to series values, skipping days Yahoo
// reports with a null close.
func convert(res apiResult) (market.PriceSeries, market.DividendSeries, error) {
	if len(res.Indicators.Quote) == 0 {
		return nil, nil, fmt.Errorf("chart API returned no quote data")
	}
	q := res.Indicators.Quote[0]

	bars := make(market.PriceSeries, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		b := market.Bar{
			Date:  market.DateOf(time.Unix(ts, 0).UTC()),
			Close: decimal.NewFromFloat(*q.Close[i]),
		}
		b.Open, b.High, b.Low = b.Close, b.Close, b.Close
		if i < len(q.Open) && q.Open[i] != nil {
			b.Open = decimal.NewFromFloat(*q.Open[i])
		}
		if i < len(q.High) && q.High[i] != nil {
			b.High = decimal.NewFromFloat(*q.High[i])
		}
		if i < len(q.Low) && q.Low[i] != nil {
			b.Low = decimal.NewFromFloat(*q.Low[i])
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	// an incremental fetch can legitimately cover zero trading days
	if len(bars) > 0 {
		if err := bars.Validate(); err != nil {
			return nil, nil, fmt.Errorf("price history for chart result: %w", err)
		}
	}

	divs := make(market.DividendSeries, 0, len(res.Events.Dividends))
	for _, d := range res.Events.Dividends {
		divs = append(divs, market.Dividend{
			ExDate: market.DateOf(time.Unix(d.Date, 0).UTC()),
			Amount: decimal.NewFromFloat(d.Amount),
		})
	}
	// the events map has no order
	sort.Slice(divs, func(i, j int) bool { return divs[i].ExDate.Before(divs[j].ExDate) })
	if err := divs.Validate(); err != nil {
		return nil, nil, fmt.Errorf("dividend history for chart result: %w", err)
	}

	return bars, divs, nil
}
