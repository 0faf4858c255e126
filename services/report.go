package services

import (
	"fmt"
	"strings"

	"wallapop-market/models"
	"wallapop-market/utils"
)

// MarketReport is the composed analytics view for one keyword.
type MarketReport struct {
	Keyword string

	// Runs in chronological order (oldest first).
	Runs []models.RunSummary

	// LastRunStats are computed over the most recent run's prices after
	// re-applying the price preset; PriceFilterMeta is its audit trail.
	LastRunStats    *models.PriceStats
	PriceFilterMeta *models.FilterMeta

	// Trend compares the oldest and newest run's mean price.
	HasTrend     bool
	TrendDelta   float64
	TrendPct     float64
	TrendVerdict string

	SellSpeed *models.SellSpeedSummary
	Segments  []PriceSegment
	Series    []models.SeriesPoint
}

// Reporter builds and prints market reports from persisted observations.
type Reporter struct {
	logger *utils.Logger
}

// NewReporter creates a Reporter with the given logger.
func NewReporter(logger *utils.Logger) *Reporter {
	return &Reporter{logger: logger.WithComponent("report")}
}

// Generate composes the analytics for one keyword. runsDesc is the stored
// run list, newest first (the persistence contract's order); lastRunPrices
// are that newest run's prices; rows feed the temporal analytics.
func (r *Reporter) Generate(
	keyword string,
	runsDesc []models.RunSummary,
	lastRunPrices []float64,
	rows []models.PriceObservation,
	preset string,
) *MarketReport {
	report := &MarketReport{Keyword: keyword}

	runs := make([]models.RunSummary, len(runsDesc))
	for i, run := range runsDesc {
		runs[len(runsDesc)-1-i] = run
	}
	report.Runs = runs

	if len(lastRunPrices) > 0 {
		cleaned, meta := FilterPriceList(lastRunPrices, preset, 0)
		report.LastRunStats = Stats(cleaned)
		report.PriceFilterMeta = meta
	}

	if len(runs) >= 2 {
		oldest := runs[0]
		newest := runs[len(runs)-1]
		report.HasTrend = true
		report.TrendDelta = newest.AvgPrice - oldest.AvgPrice
		if oldest.AvgPrice != 0 {
			report.TrendPct = report.TrendDelta / oldest.AvgPrice * 100.0
		}
		switch {
		case report.TrendPct > -3 && report.TrendPct < 3:
			report.TrendVerdict = "stable"
		case report.TrendPct > 0:
			report.TrendVerdict = "rising"
		default:
			report.TrendVerdict = "falling"
		}
	}

	report.SellSpeed = SellSpeed(rows)
	report.Segments = SegmentByPrice(AggregateListings(rows))
	report.Series = MeanMedianSeries(rows)

	r.logger.Info("Composed report for %q: %d runs, %d observations, %d series points",
		keyword, len(runs), len(rows), len(report.Series))

	return report
}

// Print renders the report to stdout.
func (r *Reporter) Print(report *MarketReport) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  MARKET REPORT — %q\033[0m\n", report.Keyword)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Latest run — price snapshot\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if s := report.LastRunStats; s != nil {
		fmt.Printf("  Priced listings : %d\n", s.N)
		fmt.Printf("  Mean            : \033[1;32m%.2f €\033[0m\n", s.Mean)
		fmt.Printf("  Median          : \033[1;32m%.2f €\033[0m\n", s.Median)
		fmt.Printf("  Min / Max       : %.2f € / %.2f €\n", s.Min, s.Max)
		fmt.Printf("  Q1 / Q2 / Q3    : %.2f / %.2f / %.2f €\n", s.Q1, s.Q2, s.Q3)
	} else {
		fmt.Printf("  No priced data\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Runs\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(report.Runs) == 0 {
		fmt.Printf("  No runs stored\n")
	} else {
		fmt.Printf("  %-20s | %8s | %8s | %7s | %7s\n", "Scraped at", "Listings", "Mean", "Min", "Max")
		for _, run := range report.Runs {
			fmt.Printf("  %-20s | %8d | %8.2f | %7.2f | %7.2f\n",
				run.ScrapedAt.Format("2006-01-02 15:04:05"),
				run.Items, run.AvgPrice, run.MinPrice, run.MaxPrice)
		}
	}
	fmt.Println()

	if report.HasTrend {
		fmt.Printf("\033[1;33m  Trend (mean price, oldest → newest run)\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  Change : %+.2f € (%+.1f %%) — %s\n",
			report.TrendDelta, report.TrendPct, report.TrendVerdict)
		fmt.Println()
	}

	if ss := report.SellSpeed; ss != nil {
		fmt.Printf("\033[1;33m  Sell speed\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  Unique listings : %d\n", ss.Total)
		fmt.Printf("  Disappeared     : %d (%.1f %%)\n", ss.Disappeared, ss.PctDisappeared)
		fmt.Printf("  Still active    : %d\n", ss.Active)
		if ls := ss.LifetimeStats; ls != nil {
			fmt.Printf("  Lifetime (disappeared only): mean %.2f d | median %.2f d | min %.2f d | max %.2f d\n",
				ls.Mean, ls.Median, ls.Min, ls.Max)
		}
		fmt.Println()
	}

	if len(report.Series) > 1 {
		fmt.Printf("\033[1;33m  Price history (per run)\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, p := range report.Series {
			fmt.Printf("  %-20s | mean %8.2f € | median %8.2f €\n",
				p.ScrapedAt.Format("2006-01-02 15:04:05"), p.Mean, p.Median)
		}
		fmt.Println()
	}

	if len(report.Segments) > 0 {
		fmt.Printf("\033[1;33m  Price tiers (quartiles over disappeared listings)\033[0m\n")
		fmt.Printf("  %s\n", thin)
		for _, seg := range report.Segments {
			total := len(seg.Disappeared) + len(seg.Active)
			pct := 0.0
			if total > 0 {
				pct = float64(len(seg.Disappeared)) / float64(total) * 100.0
			}
			line := fmt.Sprintf("  %-9s: %3d listings, %5.1f %% disappeared", seg.Name, total, pct)
			if ls := LifetimeStats(seg.Disappeared); ls != nil {
				line += fmt.Sprintf(", median lifetime %.1f d", ls.Median)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}
