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

const coinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoFetcher implements Fetcher using the CoinGecko REST API. Symbols
// are CoinGecko coin ids such as "bitcoin".
type CoinGeckoFetcher struct {
	BaseURL  string
	APIKey   string
	Currency string
	Client   *http.Client
}

// NewCoinGeckoFetcher creates a new fetcher with optional proxy support.
func NewCoinGeckoFetcher(baseURL, apiKey, proxyURL string) *CoinGeckoFetcher {
	if baseURL == "" {
		baseURL = coinGeckoBaseURL
	}
	return &CoinGeckoFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Currency: "usd",
		Client:   newHTTPClient(proxyURL),
	}
}

func (f *CoinGeckoFetcher) Name() string { return "coingecko" }

// marketChart is the response of /coins/{id}/market_chart. Each entry is a
// [unix-ms, value] pair.
type marketChart struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (f *CoinGeckoFetcher) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("coingecko decode: %w", err)
	}
	return nil
}

func (f *CoinGeckoFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=%s&days=%d&interval=daily",
		f.BaseURL, url.PathEscape(symbol), url.QueryEscape(f.Currency), days)

	var chart marketChart
	if err := f.get(ctx, endpoint, &chart); err != nil {
		return nil, err
	}
	if len(chart.Prices) == 0 {
		return nil, errors.New("coingecko: no data returned")
	}

	volumes := make(map[int64]float64, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		volumes[int64(v[0])] = v[1]
	}

	bars := make([]model.OHLCV, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		ms, price := int64(p[0]), p[1]
		if price <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   time.UnixMilli(ms),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: volumes[ms],
		})
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *CoinGeckoFetcher) FetchCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		f.BaseURL, url.QueryEscape(symbol), url.QueryEscape(f.Currency))

	var result map[string]map[string]float64
	if err := f.get(ctx, endpoint, &result); err != nil {
		return 0, fmt.Errorf("fetch current price: %w", err)
	}
	price, ok := result[symbol][f.Currency]
	if !ok || price <= 0 {
		return 0, fmt.Errorf("coingecko: no %s price for %s", f.Currency, symbol)
	}
	return price, nil
}
