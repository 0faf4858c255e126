package wallapop

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestExtractItemsCurrentShape(t *testing.T) {
	data := decode(t, `{
		"data": {
			"section": {
				"items": [
					{"id": "abc", "title": "Consola PS4", "price": {"amount": 120.5}, "web_slug": "consola-ps4-abc"},
					{"id": "def", "title": "PS4 Slim", "price": {"amount": 150}}
				]
			}
		}
	}`)

	items := ExtractItems(data)
	require.Len(t, items, 2)
	assert.Equal(t, "abc", items[0]["id"])
}

func TestExtractItemsLegacyShapes(t *testing.T) {
	payloads := []string{
		`{"data": {"section": {"payload": {"items": [{"id": "1", "title": "x", "price": 10}]}}}}`,
		`{"items": [{"id": "1", "title": "x", "price": 10}]}`,
		`{"payload": {"items": [{"id": "1", "title": "x", "price": 10}]}}`,
		`{"data": {"items": [{"id": "1", "title": "x", "price": 10}]}}`,
	}

	for _, raw := range payloads {
		items := ExtractItems(decode(t, raw))
		require.Len(t, items, 1, "payload: %s", raw)
		assert.Equal(t, "1", items[0]["id"])
	}
}

func TestExtractItemsRecursiveFallback(t *testing.T) {
	data := decode(t, `{
		"wrapper": {
			"deeply": {
				"nested": [
					{"id": "9", "description": "desc", "web_slug": "slug-9"}
				]
			}
		}
	}`)

	items := ExtractItems(data)
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0]["id"])
}

func TestExtractItemsRejectsPageData(t *testing.T) {
	data := decode(t, `{
		"pageProps": {
			"i18nMessages": {"search.title": "Buscar"},
			"items": [{"id": "1", "title": "x", "price": 10}]
		}
	}`)

	assert.Nil(t, ExtractItems(data))
}

func TestExtractItemsIgnoresNonListingArrays(t *testing.T) {
	data := decode(t, `{"filters": [{"name": "price", "label": "Precio"}]}`)
	assert.Nil(t, ExtractItems(data))

	assert.Nil(t, ExtractItems(decode(t, `{"count": 3}`)))
	assert.Nil(t, ExtractItems(decode(t, `[]`)))
}

func TestNormalizeItem(t *testing.T) {
	item := map[string]any{
		"id":          float64(12345),
		"title":       "  Consola PS4  ",
		"description": "funciona bien",
		"price":       map[string]any{"amount": 99.9},
		"location":    map[string]any{"city": "Madrid"},
		"web_slug":    "consola-ps4-12345",
		"created_at":  float64(1714000000000),
	}

	l := normalizeItem(item)
	require.NotNil(t, l)

	assert.Equal(t, "wallapop", l.Platform)
	assert.Equal(t, "12345", l.ExternalID)
	assert.Equal(t, "Consola PS4", l.Title)
	assert.Equal(t, "funciona bien", l.Description)
	require.NotNil(t, l.Price)
	assert.Equal(t, 99.9, *l.Price)
	assert.Equal(t, "Madrid", l.City)
	assert.Equal(t, "https://es.wallapop.com/item/consola-ps4-12345", l.URL)
	require.NotNil(t, l.CreatedAt)
	assert.Equal(t, time.UnixMilli(1714000000000).UTC(), *l.CreatedAt)
}

func TestNormalizeItemWithoutID(t *testing.T) {
	assert.Nil(t, normalizeItem(map[string]any{"title": "no id"}))
}

func TestPriceAmount(t *testing.T) {
	tests := []struct {
		in   any
		want *float64
	}{
		{map[string]any{"amount": float64(10)}, fp(10)},
		{float64(25.5), fp(25.5)},
		{float64(-1), nil},
		{"10", nil},
		{nil, nil},
	}

	for _, tt := range tests {
		got := priceAmount(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, "priceAmount(%v)", tt.in)
		} else {
			require.NotNil(t, got, "priceAmount(%v)", tt.in)
			assert.Equal(t, *tt.want, *got)
		}
	}
}

func fp(v float64) *float64 { return &v }

func TestParseCreatedAt(t *testing.T) {
	sec := float64(1714000000)
	got := parseCreatedAt(sec)
	require.NotNil(t, got)
	assert.Equal(t, time.Unix(1714000000, 0).UTC(), *got)

	iso := parseCreatedAt("2026-08-01T12:00:00Z")
	require.NotNil(t, iso)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), *iso)

	dateOnly := parseCreatedAt("2026-08-01")
	require.NotNil(t, dateOnly)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *dateOnly)

	assert.Nil(t, parseCreatedAt(float64(0)))
	assert.Nil(t, parseCreatedAt("not-a-date"))
	assert.Nil(t, parseCreatedAt(nil))
}
