package streak

import "StreakRadar/internal/model"

// classify returns the color of a completed candle. A doji (close ==
// open) counts as green, matching how the exchange paints it.
func classify(c model.Candle) model.StreakColor {
	if c.Close >= c.Open {
		return model.ColorGreen
	}
	return model.ColorRed
}

// Detect finds the run of same-color completed candles ending at the
// most recent completed candle. The last candle of the window is still
// forming and is discarded before anything else. Fewer than one
// completed candle yields Count 0 with no color.
func Detect(symbol, timeframe string, candles []model.Candle) model.StreakResult {
	res := model.StreakResult{Symbol: symbol, Timeframe: timeframe}
	if len(candles) < 2 {
		return res
	}
	completed := candles[:len(candles)-1]

	last := completed[len(completed)-1]
	res.LastClose = last.Close
	res.HasClose = true
	res.Color = classify(last)

	for i := len(completed) - 1; i >= 0; i-- {
		if classify(completed[i]) != res.Color {
			break
		}
		res.Count++
	}
	return res
}
