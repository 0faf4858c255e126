package services

import (
	"sort"

	"wallapop-market/models"
)

// AggregateListings joins priced observations by external ID into one entry
// per physical ad, with first/last sighting, run count, average price,
// lifetime and lifecycle status. A listing is Active iff its last sighting
// is the most recent run any listing of the keyword appeared in.
func AggregateListings(rows []models.PriceObservation) []*models.AggregatedListing {
	type group struct {
		listing *models.AggregatedListing
		prices  []float64
	}

	byID := make(map[string]*group)
	order := make([]string, 0)

	for _, row := range rows {
		g, ok := byID[row.ExternalID]
		if !ok {
			g = &group{listing: &models.AggregatedListing{
				ExternalID: row.ExternalID,
				FirstSeen:  row.ScrapedAt,
				LastSeen:   row.ScrapedAt,
			}}
			byID[row.ExternalID] = g
			order = append(order, row.ExternalID)
		}
		g.prices = append(g.prices, row.Price)
		g.listing.NRuns++
		if row.ScrapedAt.Before(g.listing.FirstSeen) {
			g.listing.FirstSeen = row.ScrapedAt
		}
		if row.ScrapedAt.After(g.listing.LastSeen) {
			g.listing.LastSeen = row.ScrapedAt
		}
	}

	if len(order) == 0 {
		return nil
	}

	listings := make([]*models.AggregatedListing, 0, len(order))
	for _, id := range order {
		g := byID[id]
		var total float64
		for _, p := range g.prices {
			total += p
		}
		g.listing.AvgPrice = total / float64(len(g.prices))
		listings = append(listings, g.listing)
	}

	maxLastSeen := listings[0].LastSeen
	for _, l := range listings[1:] {
		if l.LastSeen.After(maxLastSeen) {
			maxLastSeen = l.LastSeen
		}
	}

	for _, l := range listings {
		lifetime := l.LastSeen.Sub(l.FirstSeen).Seconds() / 86400.0
		if lifetime < 0 {
			// clock skew guard
			lifetime = 0
		}
		l.LifetimeDays = lifetime

		if l.LastSeen.Equal(maxLastSeen) {
			l.Status = models.StatusActive
		} else {
			l.Status = models.StatusDisappeared
		}
	}

	return listings
}

// SellSpeed summarizes how quickly a keyword's listings leave the market.
// Lifetime statistics cover disappeared listings only: an active listing has
// not finished its observable lifespan. Returns nil when there is no data.
func SellSpeed(rows []models.PriceObservation) *models.SellSpeedSummary {
	listings := AggregateListings(rows)
	if len(listings) == 0 {
		return nil
	}

	var disappearedLifetimes []float64
	summary := &models.SellSpeedSummary{Total: len(listings)}
	for _, l := range listings {
		if l.Status == models.StatusDisappeared {
			summary.Disappeared++
			disappearedLifetimes = append(disappearedLifetimes, l.LifetimeDays)
		} else {
			summary.Active++
		}
	}

	summary.PctDisappeared = float64(summary.Disappeared) / float64(summary.Total) * 100.0
	summary.LifetimeStats = Stats(disappearedLifetimes)

	return summary
}

// PriceSegment is one price-tier bucket of aggregated listings.
type PriceSegment struct {
	Name        string
	Disappeared []*models.AggregatedListing
	Active      []*models.AggregatedListing
}

// Segment names, cheapest tier first.
const (
	SegmentCheap   = "cheap"
	SegmentMidLow  = "mid_low"
	SegmentMidHigh = "mid_high"
	SegmentPricey  = "pricey"
)

// SegmentByPrice partitions listings into four disjoint, exhaustive buckets
// with boundaries q1, q2, q3 computed over the disappeared population:
// p < q1, q1 <= p < q2, q2 <= p <= q3, p > q3. Returns nil when fewer than 4
// disappeared listings exist (quartiles would be meaningless).
func SegmentByPrice(listings []*models.AggregatedListing) []PriceSegment {
	var disappeared []*models.AggregatedListing
	var active []*models.AggregatedListing
	for _, l := range listings {
		if l.Status == models.StatusDisappeared {
			disappeared = append(disappeared, l)
		} else {
			active = append(active, l)
		}
	}

	if len(disappeared) < 4 {
		return nil
	}

	prices := make([]float64, len(disappeared))
	for i, l := range disappeared {
		prices[i] = l.AvgPrice
	}
	sort.Float64s(prices)
	q1, q2, q3 := quartilesSorted(prices)

	segments := []PriceSegment{
		{Name: SegmentCheap},
		{Name: SegmentMidLow},
		{Name: SegmentMidHigh},
		{Name: SegmentPricey},
	}

	assign := func(l *models.AggregatedListing) int {
		switch p := l.AvgPrice; {
		case p < q1:
			return 0
		case p < q2:
			return 1
		case p <= q3:
			return 2
		default:
			return 3
		}
	}

	for _, l := range disappeared {
		i := assign(l)
		segments[i].Disappeared = append(segments[i].Disappeared, l)
	}
	for _, l := range active {
		i := assign(l)
		segments[i].Active = append(segments[i].Active, l)
	}

	return segments
}

// LifetimeStats computes distribution statistics over a set of listings'
// lifetimes in days.
func LifetimeStats(listings []*models.AggregatedListing) *models.PriceStats {
	if len(listings) == 0 {
		return nil
	}
	lifetimes := make([]float64, len(listings))
	for i, l := range listings {
		lifetimes[i] = l.LifetimeDays
	}
	return Stats(lifetimes)
}
