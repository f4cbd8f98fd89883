package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StreakRadar/internal/model"
)

const defaultKuCoinBaseURL = "https://api-futures.kucoin.com"

// timeframeDurations maps the supported timeframe labels to candle
// durations. Labels outside this map are unknown to the provider.
var timeframeDurations = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"8h":  8 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// timeframeGranularity maps timeframe labels to the kline granularity
// (in minutes) the futures API expects.
var timeframeGranularity = map[string]int{
	"15m": 15,
	"30m": 30,
	"1h":  60,
	"2h":  120,
	"4h":  240,
	"8h":  480,
	"1d":  1440,
	"1w":  10080,
}

// KuCoinProvider implements Provider against the KuCoin Futures public
// API. Symbols are presented in unified base/quote:settle form (e.g.
// "BTC/USDT:USDT"); the contract code the API wants is kept internally.
type KuCoinProvider struct {
	BaseURL string
	Client  *http.Client

	contracts map[string]string // unified symbol -> contract code
}

// NewKuCoinProvider creates a provider with optional proxy support.
func NewKuCoinProvider(baseURL, proxyURL string) *KuCoinProvider {
	if baseURL == "" {
		baseURL = defaultKuCoinBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &KuCoinProvider{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		contracts: make(map[string]string),
	}
}

func (p *KuCoinProvider) Name() string { return "kucoin-futures" }

func (p *KuCoinProvider) TimeframeDuration(timeframe string) (time.Duration, bool) {
	d, ok := timeframeDurations[timeframe]
	return d, ok
}

// contractsResponse is the /api/v1/contracts/active payload. Numeric
// fields arrive untyped, so they are decoded tolerantly and validated
// into typed records in one place.
type contractsResponse struct {
	Code string `json:"code"`
	Data []struct {
		Symbol         string      `json:"symbol"`
		BaseCurrency   string      `json:"baseCurrency"`
		QuoteCurrency  string      `json:"quoteCurrency"`
		SettleCurrency string      `json:"settleCurrency"`
		TurnoverOf24h  interface{} `json:"turnoverOf24h"`
		Status         string      `json:"status"`
	} `json:"data"`
}

type klineResponse struct {
	Code string          `json:"code"`
	Data [][]interface{} `json:"data"`
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (p *KuCoinProvider) get(path string, query url.Values, target interface{}) error {
	u := p.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("kucoin fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kucoin read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("kucoin: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("kucoin decode: %w", err)
	}
	return nil
}

// ListTickers fetches all active contracts and returns a snapshot keyed
// by unified symbol. Contracts without a 24h turnover are reported with
// HasQuoteVolume false so the ranker can exclude them.
func (p *KuCoinProvider) ListTickers() (map[string]model.TickerStats, error) {
	var cr contractsResponse
	if err := p.get("/api/v1/contracts/active", nil, &cr); err != nil {
		return nil, err
	}
	if cr.Code != "200000" {
		return nil, fmt.Errorf("kucoin api error: code %s", cr.Code)
	}

	tickers := make(map[string]model.TickerStats, len(cr.Data))
	for _, c := range cr.Data {
		if c.Symbol == "" || c.BaseCurrency == "" || c.QuoteCurrency == "" {
			continue
		}
		if c.Status != "" && c.Status != "Open" {
			continue
		}
		settle := c.SettleCurrency
		if settle == "" {
			settle = c.QuoteCurrency
		}
		unified := fmt.Sprintf("%s/%s:%s", c.BaseCurrency, c.QuoteCurrency, settle)
		p.contracts[unified] = c.Symbol

		stats := model.TickerStats{QuoteCurrency: c.QuoteCurrency}
		if vol, ok := toFloat(c.TurnoverOf24h); ok {
			stats.QuoteVolume = vol
			stats.HasQuoteVolume = true
		}
		tickers[unified] = stats
	}
	return tickers, nil
}

// ListCandles fetches up to limit most recent candles for the unified
// symbol at the given timeframe, oldest first. Malformed kline rows are
// skipped rather than propagated.
func (p *KuCoinProvider) ListCandles(symbol, timeframe string, limit int) ([]model.Candle, error) {
	granularity, ok := timeframeGranularity[timeframe]
	if !ok {
		return nil, fmt.Errorf("kucoin: unknown timeframe %q", timeframe)
	}
	contract, ok := p.contracts[symbol]
	if !ok {
		// The snapshot may not have been fetched yet in this process.
		if _, err := p.ListTickers(); err != nil {
			return nil, err
		}
		if contract, ok = p.contracts[symbol]; !ok {
			return nil, fmt.Errorf("kucoin: unknown symbol %q", symbol)
		}
	}

	duration := timeframeDurations[timeframe]
	from := time.Now().Add(-time.Duration(limit+1) * duration).UnixMilli()
	query := url.Values{}
	query.Set("symbol", contract)
	query.Set("granularity", fmt.Sprintf("%d", granularity))
	query.Set("from", fmt.Sprintf("%d", from))

	var kr klineResponse
	if err := p.get("/api/v1/kline/query", query, &kr); err != nil {
		return nil, err
	}
	if kr.Code != "200000" {
		return nil, fmt.Errorf("kucoin api error: code %s", kr.Code)
	}

	candles := make([]model.Candle, 0, len(kr.Data))
	for _, row := range kr.Data {
		if len(row) < 6 {
			continue
		}
		ts, ok1 := toFloat(row[0])
		open, ok2 := toFloat(row[1])
		high, ok3 := toFloat(row[2])
		low, ok4 := toFloat(row[3])
		closePrice, ok5 := toFloat(row[4])
		volume, ok6 := toFloat(row[5])
		if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
			continue
		}
		candles = append(candles, model.Candle{
			OpenTime: time.UnixMilli(int64(ts)),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime.Before(candles[j].OpenTime) })
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}
