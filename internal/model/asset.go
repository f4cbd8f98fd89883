package model

// AssetDetail is the cached human-readable metadata for one base
// currency. IconPath is empty when no icon was available; a fallback
// entry (DisplayName == Ticker, no icon) marks an enrichment that failed
// permanently and must not be retried for the cache's lifetime.
type AssetDetail struct {
	Ticker      string `msgpack:"ticker"`
	DisplayName string `msgpack:"display_name"`
	IconPath    string `msgpack:"icon_path"`
}
