// Package catalog talks to the CoinGecko asset catalog. The API is
// rate-limited: callers are expected to pace requests and to treat
// ErrRateLimited differently from other transient failures.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const defaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// ErrRateLimited marks an HTTP 429 from the catalog so retry policy can
// apply its long cooldown instead of the generic backoff.
var ErrRateLimited = errors.New("catalog rate limited")

// CoinListing is one row of the full catalog listing.
type CoinListing struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// CoinDetail is the displayable metadata for one canonical id. IconURL
// may be empty; that is not an error.
type CoinDetail struct {
	Name    string
	IconURL string
}

// Catalog is the capability the asset cache consumes.
type Catalog interface {
	ListAllCoins() ([]CoinListing, error)
	GetCoinDetail(id string) (CoinDetail, error)
	DownloadIcon(iconURL, destPath string) error
}

// CoinGeckoClient implements Catalog against the public CoinGecko API.
type CoinGeckoClient struct {
	BaseURL string
	Client  *http.Client
}

// NewCoinGeckoClient creates a client with optional proxy support.
func NewCoinGeckoClient(baseURL, proxyURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = defaultCoinGeckoBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &CoinGeckoClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (c *CoinGeckoClient) get(path string) ([]byte, error) {
	resp, err := c.Client.Get(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("coingecko fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coingecko read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("coingecko %s: %w", path, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// ListAllCoins fetches the full id/symbol/name listing. Rows without an
// id or symbol are dropped.
func (c *CoinGeckoClient) ListAllCoins() ([]CoinListing, error) {
	body, err := c.get("/coins/list")
	if err != nil {
		return nil, err
	}
	var listings []CoinListing
	if err := json.Unmarshal(body, &listings); err != nil {
		return nil, fmt.Errorf("coingecko decode listing: %w", err)
	}
	out := listings[:0]
	for _, l := range listings {
		if l.ID == "" || l.Symbol == "" {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// coinDetailResponse keeps only the fields the cache needs; everything
// else in the payload is ignored.
type coinDetailResponse struct {
	Name  string `json:"name"`
	Image struct {
		Small string `json:"small"`
		Thumb string `json:"thumb"`
	} `json:"image"`
}

// GetCoinDetail fetches display name and icon URL for a canonical id.
func (c *CoinGeckoClient) GetCoinDetail(id string) (CoinDetail, error) {
	path := fmt.Sprintf("/coins/%s?localization=false&tickers=false&market_data=false&community_data=false&developer_data=false",
		url.PathEscape(id))
	body, err := c.get(path)
	if err != nil {
		return CoinDetail{}, err
	}
	var dr coinDetailResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return CoinDetail{}, fmt.Errorf("coingecko decode detail: %w", err)
	}
	if dr.Name == "" {
		return CoinDetail{}, fmt.Errorf("coingecko: empty detail for %q", id)
	}
	iconURL := dr.Image.Small
	if iconURL == "" {
		iconURL = dr.Image.Thumb
	}
	return CoinDetail{Name: dr.Name, IconURL: iconURL}, nil
}

// DownloadIcon fetches iconURL and writes it to destPath, creating the
// parent directory as needed.
func (c *CoinGeckoClient) DownloadIcon(iconURL, destPath string) error {
	resp, err := c.Client.Get(iconURL)
	if err != nil {
		return fmt.Errorf("icon fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("icon %s: %w", iconURL, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("icon: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("icon read: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("icon dir: %w", err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("icon write: %w", err)
	}
	return nil
}
