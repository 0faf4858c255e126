package models

import "time"

// ListingStatus classifies a listing's lifecycle across runs.
type ListingStatus string

const (
	// StatusActive means the listing was still present in the most recent run.
	StatusActive ListingStatus = "active"
	// StatusDisappeared means the listing was absent from the most recent run
	// (sold, reserved or deleted — the data cannot tell which).
	StatusDisappeared ListingStatus = "disappeared"
)

// Listing is a normalized ad as captured from the marketplace's network API.
// Price is nil when the ad has no usable price; CreatedAt is the
// source-reported creation time, when the API provided one.
type Listing struct {
	Platform    string
	ExternalID  string
	Title       string
	Description string
	Price       *float64
	City        string
	CreatedAt   *time.Time
	URL         string
}

// Text returns the title and description joined for text matching.
func (l *Listing) Text() string {
	if l.Description == "" {
		return l.Title
	}
	return l.Title + " " + l.Description
}

// Observation is one persisted listing, tagged with the keyword and the run
// timestamp it belongs to. Immutable once written.
type Observation struct {
	Listing
	Keyword   string
	ScrapedAt time.Time
}

// PriceObservation is the slim row shape the temporal analytics read:
// one priced sighting of a listing in one run.
type PriceObservation struct {
	ExternalID string
	Price      float64
	ScrapedAt  time.Time
}

// RunSummary is one extraction run's aggregate as stored.
type RunSummary struct {
	ScrapedAt time.Time
	Items     int
	AvgPrice  float64
	MinPrice  float64
	MaxPrice  float64
}

// FilterMeta records what the cleaning pipeline did to one batch of listings.
// Bounds are nil when the median filter was skipped.
type FilterMeta struct {
	Mode           string
	ExcludeBadText bool
	IntentMode     string
	MinValidPrice  float64

	TotalIn int
	Kept    int

	RemovedText     int
	RemovedIntent   int
	RemovedMinPrice int
	RemovedLow      int
	RemovedHigh     int

	AppliedMedianFilter bool
	MedianRaw           *float64
	LowerBound          *float64
	UpperBound          *float64
	NPricedConsidered   int
}

// PriceStats holds basic distribution statistics over a set of values.
// For fewer than 4 samples the quartile estimator is undefined and
// Q1 == Q2 == Q3 == Median.
type PriceStats struct {
	N      int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Q1     float64
	Q2     float64
	Q3     float64
}

// AggregatedListing joins every observation of one external ID across runs.
// Derived on demand, never stored.
type AggregatedListing struct {
	ExternalID   string
	AvgPrice     float64
	FirstSeen    time.Time
	LastSeen     time.Time
	NRuns        int
	LifetimeDays float64
	Status       ListingStatus
}

// SellSpeedSummary describes how quickly a keyword's listings leave the
// market. LifetimeStats covers disappeared listings only and is nil when
// none have disappeared yet.
type SellSpeedSummary struct {
	Total          int
	Disappeared    int
	Active         int
	PctDisappeared float64
	LifetimeStats  *PriceStats
}

// SeriesPoint is one run's mean/median snapshot in a price trend series.
type SeriesPoint struct {
	ScrapedAt time.Time
	Mean      float64
	Median    float64
}
