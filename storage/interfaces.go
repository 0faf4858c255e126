package storage

import (
	"time"

	"wallapop-market/models"
)

// ObservationStore is the append-only persistence contract for listing
// observations. Rows are never updated; every Save is a new run.
type ObservationStore interface {
	// Save appends one run of cleaned listings under the keyword. Every row
	// of the run shares the same scraped_at timestamp, assigned here.
	// Returns the number of rows written and the run timestamp.
	Save(keyword string, listings []*models.Listing) (int, time.Time, error)

	// QueryRuns returns per-run aggregates over priced rows for the keyword,
	// newest first.
	QueryRuns(keyword string) ([]models.RunSummary, error)

	// QueryPrices returns the prices recorded for the keyword in one run.
	QueryPrices(keyword string, scrapedAt time.Time) ([]float64, error)

	// QueryPriceObservations returns every priced sighting for the keyword
	// across all runs, feeding the lifecycle analytics.
	QueryPriceObservations(keyword string) ([]models.PriceObservation, error)

	// DeleteRun removes one run of the keyword and reports rows deleted.
	DeleteRun(keyword string, scrapedAt time.Time) (int, error)

	// DeleteAllForKeyword removes the keyword's entire history.
	DeleteAllForKeyword(keyword string) (int, error)

	Close() error
}

// RawListingWriter receives the unfiltered extraction output for auditing.
type RawListingWriter interface {
	WriteRaw(keyword string, listings []*models.Listing, scrapedAt time.Time) error
	Close() error
}
