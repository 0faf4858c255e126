package services

import (
	"sort"
	"time"

	"wallapop-market/models"
)

// MeanMedianSeries groups priced observations by run timestamp and returns
// one mean/median point per run, ordered chronologically. Purely derived;
// the input is not modified.
func MeanMedianSeries(rows []models.PriceObservation) []models.SeriesPoint {
	byRun := make(map[time.Time][]float64)
	for _, row := range rows {
		byRun[row.ScrapedAt] = append(byRun[row.ScrapedAt], row.Price)
	}

	points := make([]models.SeriesPoint, 0, len(byRun))
	for scrapedAt, prices := range byRun {
		if len(prices) == 0 {
			continue
		}
		var total float64
		for _, p := range prices {
			total += p
		}
		points = append(points, models.SeriesPoint{
			ScrapedAt: scrapedAt,
			Mean:      total / float64(len(prices)),
			Median:    medianOf(prices),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].ScrapedAt.Before(points[j].ScrapedAt)
	})
	return points
}
