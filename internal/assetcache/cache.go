// Package assetcache lazily enriches base-currency codes with display
// names and icons from the asset catalog, persisting everything so a
// restart never repeats finished work. Failed enrichments are recorded
// as fallback entries and are final for the cache's lifetime.
package assetcache

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"StreakRadar/internal/catalog"
	"StreakRadar/internal/model"
	"StreakRadar/internal/store"
)

const (
	maxAttempts = 3
	// pacingDelay keeps us under the catalog's public rate limit; it is
	// applied before every attempt, not just the first.
	pacingDelay       = 1200 * time.Millisecond
	rateLimitCooldown = 61 * time.Second
	transientBackoff  = 5 * time.Second
)

// Cache holds the persisted asset-detail store and the once-per-process
// canonical-id map.
type Cache struct {
	mu sync.Mutex

	catalog catalog.Catalog
	details map[string]model.AssetDetail
	// canonical maps lowercased ticker code to catalog id. Fetched (or
	// loaded from its snapshot) at most once per process; staleness
	// within a run is an accepted tradeoff.
	canonical       map[string]string
	canonicalLoaded bool

	detailsPath   string
	canonicalPath string
	iconDir       string

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// New creates a Cache rooted at dataDir, loading the asset-detail
// snapshot if one exists. An unreadable snapshot is not fatal: the
// cache starts empty and re-enriches on the next pass. The canonical
// map is loaded lazily on the first enrichment pass that needs it.
func New(cat catalog.Catalog, dataDir string) *Cache {
	c := &Cache{
		catalog:       cat,
		details:       make(map[string]model.AssetDetail),
		canonical:     make(map[string]string),
		detailsPath:   filepath.Join(dataDir, "asset_details.msgpack"),
		canonicalPath: filepath.Join(dataDir, "canonical_ids.msgpack"),
		iconDir:       filepath.Join(dataDir, "icons"),
		sleep:         time.Sleep,
	}
	if err := store.Load(c.detailsPath, &c.details); err != nil {
		log.Printf("[WARN] asset detail snapshot unreadable, starting empty: %v", err)
		c.details = make(map[string]model.AssetDetail)
	}
	return c
}

// Get returns the cached detail for a base-currency code, if present.
func (c *Cache) Get(code string) (model.AssetDetail, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.details[strings.ToLower(code)]
	return d, ok
}

// BaseCode extracts the base-currency code from a unified symbol like
// "BTC/USDT:USDT".
func BaseCode(symbol string) string {
	if i := strings.IndexByte(symbol, '/'); i > 0 {
		return strings.ToLower(symbol[:i])
	}
	return strings.ToLower(symbol)
}

// EnsureLoaded backfills missing asset details for the given symbols.
// An entry is missing when it is absent or when its icon file has been
// deleted out from under us. With nothing missing this performs zero
// network calls; that is the primary cost-avoidance mechanism, since
// the catalog is rate-limited.
func (c *Cache) EnsureLoaded(symbols []string, onLog func(string)) {
	missing := c.missingCodes(symbols)
	if len(missing) == 0 {
		return
	}
	onLog(fmt.Sprintf("asset cache: %d assets need enrichment", len(missing)))

	if !c.ensureCanonicalMap(onLog) {
		return
	}

	for _, code := range missing {
		id, ok := c.lookupCanonical(code)
		if !ok {
			// No canonical id will ever appear for this code; record
			// the fallback so we stop asking.
			onLog(fmt.Sprintf("asset cache: no canonical id for %q, using fallback", code))
			c.put(fallbackEntry(code))
			continue
		}
		detail, ok := c.enrich(code, id, onLog)
		if !ok {
			detail = fallbackEntry(code)
			onLog(fmt.Sprintf("asset cache: enrichment failed for %q, using fallback", code))
		}
		c.put(detail)
	}

	if err := c.persistDetails(); err != nil {
		onLog(fmt.Sprintf("asset cache: persist failed: %v", err))
	}
}

func fallbackEntry(code string) model.AssetDetail {
	return model.AssetDetail{Ticker: code, DisplayName: code}
}

// missingCodes returns the base codes without a usable entry, deduped,
// in symbol enumeration order.
func (c *Cache) missingCodes(symbols []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var missing []string
	seen := make(map[string]bool)
	for _, symbol := range symbols {
		code := BaseCode(symbol)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		entry, ok := c.details[code]
		if ok && entry.IconPath != "" {
			if _, err := os.Stat(entry.IconPath); err != nil {
				ok = false // icon deleted externally, re-enrich
			}
		}
		if !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

// ensureCanonicalMap loads or fetches the ticker→id map. Failure to
// obtain the catalog is fatal to the whole enrichment pass: nothing
// partial is persisted and per-asset caches stay untouched.
func (c *Cache) ensureCanonicalMap(onLog func(string)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.canonicalLoaded {
		return true
	}

	loaded := make(map[string]string)
	if err := store.Load(c.canonicalPath, &loaded); err != nil {
		onLog(fmt.Sprintf("asset cache: canonical snapshot unreadable: %v", err))
		loaded = nil // drop anything decoded before the failure
	}
	if len(loaded) > 0 {
		c.canonical = loaded
		c.canonicalLoaded = true
		return true
	}

	listings, err := c.catalog.ListAllCoins()
	if err != nil {
		onLog(fmt.Sprintf("asset cache: catalog listing failed, skipping enrichment: %v", err))
		return false
	}
	for _, l := range listings {
		code := strings.ToLower(l.Symbol)
		if _, exists := c.canonical[code]; !exists {
			c.canonical[code] = l.ID
		}
	}
	c.canonicalLoaded = true
	if err := store.Save(c.canonicalPath, c.canonical); err != nil {
		onLog(fmt.Sprintf("asset cache: canonical snapshot save failed: %v", err))
	}
	onLog(fmt.Sprintf("asset cache: canonical map loaded with %d entries", len(c.canonical)))
	return true
}

func (c *Cache) lookupCanonical(code string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.canonical[strings.ToLower(code)]
	return id, ok
}

func (c *Cache) put(detail model.AssetDetail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[detail.Ticker] = detail
}

func (c *Cache) persistDetails() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return store.Save(c.detailsPath, c.details)
}
