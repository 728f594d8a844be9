package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"AssetSentinel/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// yahooRanges maps a lookback in days to the smallest chart range covering it.
var yahooRanges = []struct {
	days int
	rng  string
}{
	{5, "5d"},
	{30, "1mo"},
	{90, "3mo"},
	{180, "6mo"},
	{365, "1y"},
	{730, "2y"},
	{1825, "5y"},
}

// YahooFetcher prices assets that carry a ticker symbol using the public
// Yahoo Finance chart endpoint.
type YahooFetcher struct {
	BaseURL string
	Client  *http.Client
	// Aliases rewrites common index and commodity names to Yahoo tickers.
	Aliases map[string]string
}

// NewYahooFetcher creates a Yahoo fetcher, optionally through a proxy.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		Aliases: map[string]string{
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"SPX500": "^GSPC",
			"NDX":    "^NDX",
			"GOLD":   "GC=F",
			"XAU":    "GC=F",
			"SILVER": "SI=F",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) ticker(symbol string) string {
	if t, ok := f.Aliases[strings.ToUpper(symbol)]; ok {
		return t
	}
	return symbol
}

// chartResponse holds the parts of the chart payload we read. Quote values
// are null on market holidays.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func (f *YahooFetcher) chart(ctx context.Context, symbol, rng string) (*chartResponse, error) {
	q := url.Values{"interval": {"1d"}, "range": {rng}}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.ticker(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// the endpoint rejects requests without a browser-like agent
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo %s: status %d: %s", symbol, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("yahoo %s: decode: %w", symbol, err)
	}
	if e := out.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: empty result", symbol)
	}
	return &out, nil
}

func barsFromChart(c *chartResponse) []model.OHLCV {
	res := c.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]

	bars := make([]model.OHLCV, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closePrice, ok := valueAt(q.Close, i)
		if !ok || closePrice <= 0 {
			continue
		}
		bar := model.OHLCV{Time: time.Unix(ts, 0), Open: closePrice, High: closePrice, Low: closePrice, Close: closePrice}
		if v, ok := valueAt(q.Open, i); ok {
			bar.Open = v
		}
		if v, ok := valueAt(q.High, i); ok {
			bar.High = v
		}
		if v, ok := valueAt(q.Low, i); ok {
			bar.Low = v
		}
		bar.Volume, _ = valueAt(q.Volume, i)
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	rng := "max"
	for _, r := range yahooRanges {
		if days <= r.days {
			rng = r.rng
			break
		}
	}
	c, err := f.chart(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}
	bars := barsFromChart(c)
	if len(bars) == 0 {
		return nil, fmt.Errorf("yahoo %s: no bars", symbol)
	}
	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// FetchCurrentPrice prefers the live market price and falls back to the
// last daily close.
func (f *YahooFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	c, err := f.chart(ctx, symbol, "5d")
	if err != nil {
		return 0, err
	}
	if p := c.Chart.Result[0].Meta.RegularMarketPrice; p != nil && *p > 0 {
		return *p, nil
	}
	bars := barsFromChart(c)
	if len(bars) == 0 {
		return 0, errors.New("yahoo: no price data")
	}
	return bars[len(bars)-1].Close, nil
}
