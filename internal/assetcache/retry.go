package assetcache

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"StreakRadar/internal/catalog"
	"StreakRadar/internal/model"
)

// attemptOutcome tags the result of one enrichment attempt so the retry
// driver can apply the right policy. Rate limiting gets a dedicated
// long cooldown, distinct from the generic transient backoff, and still
// consumes one of the attempts.
type attemptOutcome int

const (
	outcomeSuccess attemptOutcome = iota
	outcomeRateLimited
	outcomeTransient
)

type attemptResult struct {
	outcome attemptOutcome
	detail  model.AssetDetail
	err     error
}

// enrich fetches detail and icon for one asset with up to maxAttempts
// tries. Returns ok=false when the attempt budget is exhausted; the
// caller records the permanent fallback.
func (c *Cache) enrich(code, id string, onLog func(string)) (model.AssetDetail, bool) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.sleep(pacingDelay)

		res := c.attempt(code, id)
		switch res.outcome {
		case outcomeSuccess:
			return res.detail, true
		case outcomeRateLimited:
			onLog(fmt.Sprintf("asset cache: rate limited on %q (attempt %d/%d), cooling down %s",
				code, attempt, maxAttempts, rateLimitCooldown))
			if attempt < maxAttempts {
				c.sleep(rateLimitCooldown)
			}
		case outcomeTransient:
			onLog(fmt.Sprintf("asset cache: fetch %q failed (attempt %d/%d): %v",
				code, attempt, maxAttempts, res.err))
			if attempt < maxAttempts {
				c.sleep(time.Duration(attempt) * transientBackoff)
			}
		}
	}
	return model.AssetDetail{}, false
}

// attempt performs a single detail fetch plus icon download.
func (c *Cache) attempt(code, id string) attemptResult {
	classify := func(err error) attemptResult {
		if errors.Is(err, catalog.ErrRateLimited) {
			return attemptResult{outcome: outcomeRateLimited, err: err}
		}
		return attemptResult{outcome: outcomeTransient, err: err}
	}

	detail, err := c.catalog.GetCoinDetail(id)
	if err != nil {
		return classify(err)
	}

	entry := model.AssetDetail{Ticker: code, DisplayName: detail.Name}
	// A missing icon URL is not an error; the entry simply has no icon.
	if detail.IconURL != "" {
		dest := filepath.Join(c.iconDir, code+".png")
		if err := c.catalog.DownloadIcon(detail.IconURL, dest); err != nil {
			return classify(err)
		}
		entry.IconPath = dest
	}
	return attemptResult{outcome: outcomeSuccess, detail: entry}
}
