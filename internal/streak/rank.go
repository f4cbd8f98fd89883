package streak

import (
	"sort"

	"StreakRadar/internal/model"
)

// RankByVolume returns up to limit symbols quoted in quoteCurrency,
// ordered by 24h quote volume descending. Instruments without a reported
// quote volume are excluded rather than defaulted to zero, which would
// distort the ranking. Ties fall back to lexical symbol order so that
// ranking the same snapshot twice gives the same sequence; tie order
// itself is not a contract the provider specifies upstream.
func RankByVolume(tickers map[string]model.TickerStats, quoteCurrency string, limit int) []string {
	symbols := make([]string, 0, len(tickers))
	for symbol := range tickers {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	type ranked struct {
		symbol string
		volume float64
	}
	candidates := make([]ranked, 0, len(symbols))
	for _, symbol := range symbols {
		stats := tickers[symbol]
		if stats.QuoteCurrency != quoteCurrency || !stats.HasQuoteVolume {
			continue
		}
		candidates = append(candidates, ranked{symbol: symbol, volume: stats.QuoteVolume})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].volume > candidates[j].volume
	})

	if limit >= 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.symbol
	}
	return out
}
