package catalog

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestListAllCoins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/coins/list" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[
			{"id":"bitcoin","symbol":"btc","name":"Bitcoin"},
			{"id":"ethereum","symbol":"eth","name":"Ethereum"},
			{"id":"","symbol":"bad","name":"dropped"}
		]`))
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, "")
	coins, err := c.ListAllCoins()
	if err != nil {
		t.Fatalf("ListAllCoins: %v", err)
	}
	if len(coins) != 2 {
		t.Fatalf("expected 2 valid listings, got %d", len(coins))
	}
	if coins[0].ID != "bitcoin" || coins[0].Symbol != "btc" {
		t.Errorf("unexpected first listing: %+v", coins[0])
	}
}

func TestGetCoinDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/bitcoin":
			w.Write([]byte(`{"name":"Bitcoin","image":{"small":"https://cdn/btc-small.png","thumb":"https://cdn/btc-thumb.png"}}`))
		case "/coins/noimage":
			w.Write([]byte(`{"name":"Bare","image":{}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, "")
	detail, err := c.GetCoinDetail("bitcoin")
	if err != nil {
		t.Fatalf("GetCoinDetail: %v", err)
	}
	if detail.Name != "Bitcoin" || detail.IconURL != "https://cdn/btc-small.png" {
		t.Errorf("unexpected detail: %+v", detail)
	}

	bare, err := c.GetCoinDetail("noimage")
	if err != nil {
		t.Fatalf("GetCoinDetail without image: %v", err)
	}
	if bare.IconURL != "" {
		t.Errorf("missing icon URL should be empty, got %q", bare.IconURL)
	}
}

func TestRateLimitSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewCoinGeckoClient(srv.URL, "")
	_, err := c.GetCoinDetail("bitcoin")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	_, err = c.ListAllCoins()
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited from listing, got %v", err)
	}
}

func TestDownloadIcon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	c := NewCoinGeckoClient("http://unused", "")
	dest := filepath.Join(t.TempDir(), "icons", "btc.png")
	if err := c.DownloadIcon(srv.URL+"/btc.png", dest); err != nil {
		t.Fatalf("DownloadIcon: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read icon: %v", err)
	}
	if len(data) != 4 || data[1] != 'P' {
		t.Errorf("unexpected icon bytes: %v", data)
	}
}
