package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapop-market/models"
	"wallapop-market/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

func fp(v float64) *float64 { return &v }

func listing(title, desc string, price *float64) *models.Listing {
	return &models.Listing{
		Platform:    "wallapop",
		ExternalID:  title,
		Title:       title,
		Description: desc,
		Price:       price,
	}
}

func TestGetPresetFallback(t *testing.T) {
	assert.Equal(t, "soft", GetPreset("soft").Name)
	assert.Equal(t, "strict", GetPreset(" STRICT ").Name)
	assert.Equal(t, "off", GetPreset("off").Name)
	assert.Equal(t, "soft", GetPreset("bananas").Name)
	assert.Equal(t, "soft", GetPreset("").Name)
}

func TestFilterPriceListSoft(t *testing.T) {
	kept, meta := FilterPriceList([]float64{5, 8, 10, 12, 15, 1000}, "soft", 5)

	assert.Equal(t, []float64{8, 10, 12, 15}, kept)
	assert.Equal(t, 6, meta.TotalIn)
	assert.Equal(t, 1, meta.RemovedMinPrice)
	assert.Equal(t, 0, meta.RemovedLow)
	assert.Equal(t, 1, meta.RemovedHigh)
	assert.Equal(t, 4, meta.Kept)

	assert.True(t, meta.AppliedMedianFilter)
	require.NotNil(t, meta.MedianRaw)
	assert.InDelta(t, 12.0, *meta.MedianRaw, 1e-9)
	require.NotNil(t, meta.LowerBound)
	assert.InDelta(t, 7.2, *meta.LowerBound, 1e-9)
	require.NotNil(t, meta.UpperBound)
	assert.InDelta(t, 48.0, *meta.UpperBound, 1e-9)
}

func TestFilterPriceListSmallSampleSkipsMedian(t *testing.T) {
	kept, meta := FilterPriceList([]float64{8, 10, 1000}, "soft", 0)

	assert.Equal(t, []float64{8, 10, 1000}, kept)
	assert.False(t, meta.AppliedMedianFilter)
	assert.Nil(t, meta.LowerBound)
}

func TestFilterPriceListOff(t *testing.T) {
	kept, meta := FilterPriceList([]float64{0, 5, 1000}, "off", 1)

	// floor at 0 still drops free/zero prices, nothing else
	assert.Equal(t, []float64{5, 1000}, kept)
	assert.Equal(t, 1, meta.RemovedMinPrice)
	assert.False(t, meta.AppliedMedianFilter)
}

func TestFilterPriceListIdempotent(t *testing.T) {
	kept, _ := FilterPriceList([]float64{5, 8, 10, 12, 15, 1000}, "soft", 5)
	again, meta := FilterPriceList(kept, "soft", 5)

	assert.Equal(t, kept, again)
	assert.Equal(t, 0, meta.RemovedMinPrice+meta.RemovedLow+meta.RemovedHigh)
}

func TestCleanerWorkedExample(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []*models.Listing{
		listing("a", "", fp(5)),
		listing("b", "", fp(8)),
		listing("c", "", fp(10)),
		listing("d", "", fp(12)),
		listing("e", "", fp(15)),
		listing("f", "", fp(1000)),
	}

	kept, meta := c.Clean(in, CleanOptions{
		Preset:           "soft",
		IntentMode:       "any",
		MinPricedSamples: 5,
	})

	require.Len(t, kept, 4)
	got := make([]float64, len(kept))
	for i, l := range kept {
		got[i] = *l.Price
	}
	assert.Equal(t, []float64{8, 10, 12, 15}, got)

	assert.Equal(t, 1, meta.RemovedMinPrice)
	assert.Equal(t, 1, meta.RemovedHigh)
	assert.True(t, meta.AppliedMedianFilter)

	// the listing path reports the same audit trail as the price-list path
	_, priceMeta := FilterPriceList([]float64{5, 8, 10, 12, 15, 1000}, "soft", 5)
	require.NotNil(t, meta.MedianRaw)
	require.NotNil(t, priceMeta.MedianRaw)
	assert.Equal(t, *priceMeta.MedianRaw, *meta.MedianRaw)
	assert.Equal(t, *priceMeta.LowerBound, *meta.LowerBound)
	assert.Equal(t, *priceMeta.UpperBound, *meta.UpperBound)
}

func TestCleanerIdempotent(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []*models.Listing{
		listing("b", "", fp(8)),
		listing("c", "", fp(10)),
		listing("d", "", fp(12)),
		listing("e", "", fp(15)),
	}
	opts := CleanOptions{Preset: "soft", IntentMode: "any", MinPricedSamples: 4}

	once, _ := c.Clean(in, opts)
	twice, meta := c.Clean(once, opts)

	assert.Equal(t, once, twice)
	assert.Equal(t, len(once), meta.Kept)
}

func TestCleanerNilPricePassesPriceStages(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []*models.Listing{
		listing("priced-1", "", fp(8)),
		listing("priced-2", "", fp(10)),
		listing("priced-3", "", fp(12)),
		listing("no-price", "", nil),
	}

	kept, _ := c.Clean(in, CleanOptions{
		Preset:           "soft",
		IntentMode:       "any",
		MinPricedSamples: 3,
	})

	require.Len(t, kept, 4)
	assert.Nil(t, kept[3].Price)
}

func TestCleanerTextExclusion(t *testing.T) {
	tests := []struct {
		title string
		desc  string
		bad   bool
	}{
		{"PS4 pantalla rota", "", true},
		{"Móvil para PIEZAS", "", true},
		{"Busco iphone", "", true},
		{"Cambio por otra consola", "", true},
		{"Sin cambios, perfecto estado", "", false},
		{"Consola en buen estado", "funciona perfectamente", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got := isBadByText(listing(tt.title, tt.desc, fp(50)))
		assert.Equal(t, tt.bad, got, "isBadByText(%q %q)", tt.title, tt.desc)
	}
}

func TestCleanerRemovesBadText(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []*models.Listing{
		listing("Consola en buen estado", "", fp(100)),
		listing("Consola con pantalla rota", "", fp(100)),
	}

	kept, meta := c.Clean(in, CleanOptions{
		Preset:         "off",
		ExcludeBadText: true,
		IntentMode:     "any",
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "Consola en buen estado", kept[0].Title)
	assert.Equal(t, 1, meta.RemovedText)
}

func TestResolveIntentMode(t *testing.T) {
	tests := []struct {
		mode    string
		keyword string
		want    string
	}{
		{"any", "ps4", "any"},
		{"off", "ps4", "any"},
		{"none", "ps4", "any"},
		{"", "ps4", "any"},
		{"primary", "ps4", "primary"},
		{"console", "bicicleta", "console"},
		{"auto", "ps4", "console"},
		{"auto", "nintendo switch", "console"},
		{"auto", "bicicleta", "primary"},
		{"auto", "iphone 12", "primary"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveIntentMode(tt.mode, tt.keyword),
			"resolveIntentMode(%q, %q)", tt.mode, tt.keyword)
	}
}

func TestPrimaryIntent(t *testing.T) {
	tests := []struct {
		title string
		desc  string
		pass  bool
	}{
		{"Mando PS4", "", false},
		{"Cargador original", "sin nada mas", false},
		{"Mando PS4", "incluye consola", true},
		{"Consola PS4 con mando", "", true},
		{"iPhone 12 128GB", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got := passesPrimaryIntent(listing(tt.title, tt.desc, fp(50)))
		assert.Equal(t, tt.pass, got, "passesPrimaryIntent(%q %q)", tt.title, tt.desc)
	}
}

func TestConsoleIntent(t *testing.T) {
	tests := []struct {
		title string
		desc  string
		pass  bool
	}{
		{"Consola PS4 Slim 1TB", "", true},
		{"PS4 500GB", "", true},
		{"Juego FIFA PS4", "", false},
		{"Mando PS4", "", false},
		{"Solo mando de PS4", "", false},
		{"", "", true},
	}

	for _, tt := range tests {
		got := passesConsoleIntent(listing(tt.title, tt.desc, fp(100)), "ps4")
		assert.Equal(t, tt.pass, got, "passesConsoleIntent(%q %q)", tt.title, tt.desc)
	}
}

func TestCleanerIntentStageCounts(t *testing.T) {
	c := NewCleaner(newTestLogger())
	in := []*models.Listing{
		listing("Consola PS4 Slim 1TB", "", fp(150)),
		listing("Juego FIFA PS4", "", fp(20)),
	}

	kept, meta := c.Clean(in, CleanOptions{
		Preset:     "off",
		IntentMode: "auto",
		Keyword:    "ps4",
	})

	require.Len(t, kept, 1)
	assert.Equal(t, "console", meta.IntentMode)
	assert.Equal(t, 1, meta.RemovedIntent)
}
