package services

import (
	"sort"
	"strings"

	"wallapop-market/models"
	"wallapop-market/utils"
)

// Preset bundles the price-cleaning thresholds for one policy level.
type Preset struct {
	Name          string
	MinValidPrice float64
	LowerFactor   float64
	UpperFactor   float64
}

// presets are deliberately safe defaults for a noisy consumer marketplace:
// the absolute floor kills 0–1€ hook prices, the factors trim outliers
// relative to the median.
var presets = map[string]Preset{
	"soft":   {Name: "soft", MinValidPrice: 5.0, LowerFactor: 0.60, UpperFactor: 4.0},
	"strict": {Name: "strict", MinValidPrice: 10.0, LowerFactor: 0.75, UpperFactor: 3.0},
	"off":    {Name: "off", MinValidPrice: 0.0, LowerFactor: 0.0, UpperFactor: 0.0},
}

// GetPreset resolves a preset name, falling back to soft for unknown input.
func GetPreset(mode string) Preset {
	m := strings.ToLower(strings.TrimSpace(mode))
	if p, ok := presets[m]; ok {
		return p
	}
	return presets["soft"]
}

// DefaultMinPricedSamples is the minimum priced-sample count below which the
// median outlier filter is a no-op, to avoid instability on small samples.
const DefaultMinPricedSamples = 10

// CleanOptions controls one invocation of the cleaning pipeline.
type CleanOptions struct {
	Preset         string
	ExcludeBadText bool
	IntentMode     string // any | primary | console | auto
	Keyword        string
	// MinPricedSamples overrides DefaultMinPricedSamples when > 0.
	MinPricedSamples int
}

// Cleaner removes noise from raw listings: bad-condition/wanted-ad text,
// bare accessories, hook prices and median-relative price outliers.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger.WithComponent("cleaner")}
}

var badPhrasesNorm = normalizePhrases(badPhrases)

func normalizePhrases(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = utils.NormalizeText(p)
	}
	return out
}

// Clean applies the filters in a fixed order (text, intent, absolute floor,
// median outliers), each stage consuming the previous stage's output.
// Listings with a nil price pass the price stages untouched.
func (c *Cleaner) Clean(listings []*models.Listing, opts CleanOptions) ([]*models.Listing, *models.FilterMeta) {
	preset := GetPreset(opts.Preset)
	minSamples := opts.MinPricedSamples
	if minSamples <= 0 {
		minSamples = DefaultMinPricedSamples
	}
	resolvedIntent := resolveIntentMode(opts.IntentMode, opts.Keyword)

	meta := &models.FilterMeta{
		Mode:           preset.Name,
		ExcludeBadText: opts.ExcludeBadText,
		IntentMode:     resolvedIntent,
		MinValidPrice:  preset.MinValidPrice,
		TotalIn:        len(listings),
	}

	// 1) text exclusion
	afterText := listings
	if opts.ExcludeBadText {
		afterText = make([]*models.Listing, 0, len(listings))
		for _, l := range listings {
			if isBadByText(l) {
				meta.RemovedText++
				continue
			}
			afterText = append(afterText, l)
		}
	}

	// 2) intent (primary product vs bare accessory)
	afterIntent := afterText
	if resolvedIntent != "any" {
		afterIntent = make([]*models.Listing, 0, len(afterText))
		for _, l := range afterText {
			if !passesIntentFilter(l, resolvedIntent, opts.Keyword) {
				meta.RemovedIntent++
				continue
			}
			afterIntent = append(afterIntent, l)
		}
	}

	// 3) absolute price floor
	afterFloor := make([]*models.Listing, 0, len(afterIntent))
	for _, l := range afterIntent {
		if l.Price != nil && *l.Price <= preset.MinValidPrice {
			meta.RemovedMinPrice++
			continue
		}
		afterFloor = append(afterFloor, l)
	}

	// 4) median-relative outliers
	kept := afterFloor
	if preset.Name != "off" {
		priced := make([]float64, 0, len(afterFloor))
		for _, l := range afterFloor {
			if l.Price != nil {
				priced = append(priced, *l.Price)
			}
		}
		meta.NPricedConsidered = len(priced)

		if len(priced) >= minSamples {
			median := medianOf(priced)
			meta.MedianRaw = &median
			if median > 0 {
				lower := median * preset.LowerFactor
				upper := median * preset.UpperFactor
				meta.AppliedMedianFilter = true
				meta.LowerBound = &lower
				meta.UpperBound = &upper

				kept = make([]*models.Listing, 0, len(afterFloor))
				for _, l := range afterFloor {
					if l.Price == nil {
						kept = append(kept, l)
						continue
					}
					if *l.Price < lower {
						meta.RemovedLow++
						continue
					}
					if *l.Price > upper {
						meta.RemovedHigh++
						continue
					}
					kept = append(kept, l)
				}
			}
		}
	} else {
		for _, l := range afterFloor {
			if l.Price != nil {
				meta.NPricedConsidered++
			}
		}
	}

	meta.Kept = len(kept)

	c.logger.Info("%d → %d listings (text=%d intent=%d floor=%d low=%d high=%d, preset=%s, intent_mode=%s)",
		meta.TotalIn, meta.Kept, meta.RemovedText, meta.RemovedIntent,
		meta.RemovedMinPrice, meta.RemovedLow, meta.RemovedHigh, meta.Mode, meta.IntentMode)

	return kept, meta
}

// FilterPriceList applies the same floor + median trim to a bare price list.
// Used by statistics consumers that work on stored prices rather than full
// listings.
func FilterPriceList(prices []float64, mode string, minPricedSamples int) ([]float64, *models.FilterMeta) {
	preset := GetPreset(mode)
	if minPricedSamples <= 0 {
		minPricedSamples = DefaultMinPricedSamples
	}

	meta := &models.FilterMeta{
		Mode:          preset.Name,
		MinValidPrice: preset.MinValidPrice,
		TotalIn:       len(prices),
	}

	cleaned := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p <= preset.MinValidPrice {
			meta.RemovedMinPrice++
			continue
		}
		cleaned = append(cleaned, p)
	}
	meta.NPricedConsidered = len(cleaned)

	if preset.Name == "off" || len(cleaned) < minPricedSamples {
		meta.Kept = len(cleaned)
		return cleaned, meta
	}

	median := medianOf(cleaned)
	if median <= 0 {
		meta.MedianRaw = &median
		meta.Kept = len(cleaned)
		return cleaned, meta
	}

	lower := median * preset.LowerFactor
	upper := median * preset.UpperFactor
	meta.AppliedMedianFilter = true
	meta.MedianRaw = &median
	meta.LowerBound = &lower
	meta.UpperBound = &upper

	filtered := make([]float64, 0, len(cleaned))
	for _, p := range cleaned {
		if p < lower {
			meta.RemovedLow++
			continue
		}
		if p > upper {
			meta.RemovedHigh++
			continue
		}
		filtered = append(filtered, p)
	}
	meta.Kept = len(filtered)
	return filtered, meta
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return medianSorted(sorted)
}

// isBadByText reports whether the normalized title+description contains a
// curated exclusion phrase. "cambio" only counts when nearby context implies
// a barter offer, to spare ordinary descriptions.
func isBadByText(l *models.Listing) bool {
	t := utils.NormalizeText(l.Text())
	if t == "" {
		return false
	}

	if strings.Contains(t, "cambio") &&
		(strings.Contains(t, "por") || strings.Contains(t, "x") || strings.Contains(t, "interc")) {
		return true
	}

	for _, phrase := range badPhrasesNorm {
		if phrase == "cambio" {
			continue
		}
		if phrase != "" && strings.Contains(t, phrase) {
			return true
		}
	}

	return false
}

// resolveIntentMode maps auto to console for console-branded keywords and to
// primary otherwise. off/none are aliases of any.
func resolveIntentMode(intentMode, keyword string) string {
	m := strings.ToLower(strings.TrimSpace(intentMode))
	if m == "" {
		m = "any"
	}
	if m == "off" || m == "none" {
		m = "any"
	}
	if m != "auto" {
		return m
	}

	kw := utils.NormalizeText(keyword)
	for _, tok := range consoleKeywordMarkers {
		if strings.Contains(kw, tok) {
			return "console"
		}
	}
	return "primary"
}

func passesIntentFilter(l *models.Listing, resolvedMode, keyword string) bool {
	switch resolvedMode {
	case "any", "":
		return true
	case "primary":
		return passesPrimaryIntent(l)
	case "console":
		return passesConsoleIntent(l, keyword)
	}
	// unknown modes do not filter
	return true
}

func startsWithAny(s string, prefixes []string) bool {
	s = strings.TrimSpace(s)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func passesPrimaryIntent(l *models.Listing) bool {
	title := utils.NormalizeText(l.Title)
	desc := utils.NormalizeText(l.Description)
	text := strings.TrimSpace(title + " " + desc)
	if text == "" {
		return true
	}

	// Title opens with an accessory word and nothing suggests the primary
	// product is included.
	if startsWithAny(title, accessoryPrefixes) && !containsAny(text, primaryMarkers) {
		return false
	}

	// "solo X" phrasing without a primary-product marker.
	if containsAny(text, accessoryPhrases) && !containsAny(text, primaryMarkers) {
		return false
	}

	return true
}

func passesConsoleIntent(l *models.Listing, keyword string) bool {
	title := utils.NormalizeText(l.Title)
	desc := utils.NormalizeText(l.Description)
	text := strings.TrimSpace(title + " " + desc)
	if text == "" {
		return true
	}

	kw := utils.NormalizeText(keyword)
	kwIsConsole := containsAny(kw, consoleKeywordMarkers)

	hasConsoleWord := strings.Contains(text, "consola")
	hasDeviceMarker := containsAny(text, consoleDeviceMarkers)
	hasBrandMarker := containsAny(text, consoleKeywordMarkers)

	accessoryPrefix := startsWithAny(title, accessoryPrefixes)
	accessoryOnlyPhrase := containsAny(text, accessoryPhrases)

	if accessoryOnlyPhrase && !hasConsoleWord {
		return false
	}

	if accessoryPrefix && !hasConsoleWord && !hasDeviceMarker {
		return false
	}

	// Loose games are the classic noise here.
	if (strings.Contains(text, "juego") || strings.Contains(text, "juegos")) &&
		!hasConsoleWord && !hasDeviceMarker {
		return false
	}

	if hasConsoleWord {
		return true
	}

	if kwIsConsole && hasBrandMarker && hasDeviceMarker {
		return true
	}

	// Brand named but no hardware marker: usually a controller, cable or game.
	if kwIsConsole && hasBrandMarker && !hasDeviceMarker {
		return false
	}

	return true
}
