package main

import (
	"context"
	"fmt"
	"os"

	"wallapop-market/config"
	"wallapop-market/scraper/wallapop"
	"wallapop-market/services"
	"wallapop-market/storage"
	"wallapop-market/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	if cfg.Keyword == "" {
		logger.Error("KEYWORD is not set. Nothing to search.")
		os.Exit(1)
	}

	logger.Info("=== Wallapop Market Analyzer starting ===")
	logger.Info("Config — keyword: %q | order: %s | target: %d | preset: %s | intent: %s | mode: %s",
		cfg.Keyword, cfg.OrderBy, cfg.TargetCount, cfg.FilterPreset, cfg.IntentMode, cfg.ScraperMode)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	store, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	req := wallapop.Request{
		Keyword:     cfg.Keyword,
		OrderBy:     cfg.OrderBy,
		TargetCount: cfg.TargetCount,
		TextFilter:  cfg.TextFilter,
		Headless:    cfg.Headless,
		Strict:      cfg.Strict,
	}
	if cfg.MinPrice >= 0 {
		min := cfg.MinPrice
		req.MinPrice = &min
	}
	if cfg.MaxPrice >= 0 {
		max := cfg.MaxPrice
		req.MaxPrice = &max
	}

	engine := wallapop.New(cfg, logger)
	rawListings, err := engine.Extract(context.Background(), req)
	if err != nil {
		logger.Error("Extraction failed: %v", err)
		os.Exit(1)
	}

	if len(rawListings) == 0 {
		logger.Error("No listings were extracted. Exiting.")
		os.Exit(1)
	}

	logger.Info("Extracted %d raw listings — writing to CSV...", len(rawListings))

	cleaner := services.NewCleaner(logger)
	cleanListings, meta := cleaner.Clean(rawListings, services.CleanOptions{
		Preset:         cfg.FilterPreset,
		ExcludeBadText: cfg.ExcludeBadText,
		IntentMode:     cfg.IntentMode,
		Keyword:        cfg.Keyword,
	})

	if len(cleanListings) == 0 {
		logger.Error("All listings were dropped during cleaning. Exiting.")
		os.Exit(1)
	}

	logger.Info("Cleaned dataset: %d/%d listings kept", meta.Kept, meta.TotalIn)

	written, scrapedAt, err := store.Save(cfg.Keyword, cleanListings)
	if err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Run stored: %d observations at %s", written, scrapedAt.Format("2006-01-02 15:04:05"))

	if err := csvWriter.WriteRaw(cfg.Keyword, rawListings, scrapedAt); err != nil {
		logger.Error("CSV write failed: %v", err)
	} else {
		logger.Info("Raw listings saved to %s", cfg.CSVOutputPath)
	}

	runs, err := store.QueryRuns(cfg.Keyword)
	if err != nil {
		logger.Error("Failed to fetch runs for analytics: %v", err)
		os.Exit(1)
	}

	var lastRunPrices []float64
	if len(runs) > 0 {
		lastRunPrices, err = store.QueryPrices(cfg.Keyword, runs[0].ScrapedAt)
		if err != nil {
			logger.Error("Failed to fetch last-run prices: %v", err)
			lastRunPrices = nil
		}
	}

	rows, err := store.QueryPriceObservations(cfg.Keyword)
	if err != nil {
		logger.Error("Failed to fetch price history: %v", err)
		rows = nil
	}

	reporter := services.NewReporter(logger)
	report := reporter.Generate(cfg.Keyword, runs, lastRunPrices, rows, cfg.FilterPreset)
	reporter.Print(report)

	fmt.Printf("  Done. Raw CSV → %s | Observations → PostgreSQL (observations table)\n\n",
		cfg.CSVOutputPath)
}
