package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"StreakRadar/internal/assetcache"
	"StreakRadar/internal/catalog"
	"StreakRadar/internal/config"
	"StreakRadar/internal/exchange"
	"StreakRadar/internal/recorder"
	"StreakRadar/internal/scanner"
	"StreakRadar/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StreakRadar starting...")

	// .env is optional; real config lives in the YAML file.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init providers
	provider := exchange.NewKuCoinProvider(cfg.Exchange.BaseURL, cfg.Proxy)
	log.Printf("[INFO] market data source: %s", provider.Name())
	gecko := catalog.NewCoinGeckoClient(cfg.Catalog.BaseURL, cfg.Proxy)

	// Init asset metadata cache
	assets := assetcache.New(gecko, cfg.Cache.Dir)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init scanner and scheduler
	scn := scanner.New(provider, assets, cfg.Scan.QuoteCurrency, cfg.Scan.CandleWindow)
	sched := scheduler.New(scn, provider, rec, cfg.Cache.Dir,
		cfg.Scan.Timeframes, cfg.Scan.TopNVolume, cfg.Scan.MinStreak)
	if err := sched.Register(); err != nil {
		log.Fatalf("[FATAL] register scan tick: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, triggering initial scan")
		go sched.RunNow()
	}

	log.Println("[INFO] StreakRadar is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	log.Println("[INFO] StreakRadar stopped")
}
