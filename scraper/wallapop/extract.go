package wallapop

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"wallapop-market/models"
)

// The search API has shipped several payload shapes over time. Instead of a
// schema registry, extraction tries a short ordered list of known structural
// paths and falls back to a depth-first search for anything listing-shaped.

// pathStrategy names one known location of the listing array in a payload.
type pathStrategy struct {
	name string
	path []string
}

// Ordered newest shape first; the legacy shapes still show up on cached
// responses.
var pathStrategies = []pathStrategy{
	{"data.section.items", []string{"data", "section", "items"}},
	{"data.section.payload.items", []string{"data", "section", "payload", "items"}},
	{"items", []string{"items"}},
	{"payload.items", []string{"payload", "items"}},
	{"data.items", []string{"data", "items"}},
}

// ExtractItems locates the listing array inside an arbitrary decoded JSON
// value, or returns nil if none is found. Next.js UI/localization payloads
// are rejected outright.
func ExtractItems(data any) []map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if isUIPayload(v) {
			return nil
		}

		for _, strat := range pathStrategies {
			if items, ok := asListingItems(dig(v, strat.path...)); ok {
				return items
			}
		}

		// Depth-first fallback over nested values. Keys are sorted so the
		// "first hit" is deterministic.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := ExtractItems(v[k]); found != nil {
				return found
			}
		}

	case []any:
		if items, ok := asListingItems(v); ok {
			return items
		}
		for _, child := range v {
			if found := ExtractItems(child); found != nil {
				return found
			}
		}
	}

	return nil
}

// isUIPayload detects Next.js page-data responses (UI/i18n, never listings).
func isUIPayload(m map[string]any) bool {
	pp, ok := m["pageProps"].(map[string]any)
	if !ok {
		return false
	}
	_, has := pp["i18nMessages"]
	return has
}

// asListingItems checks that a value is a non-empty array whose first element
// is listing-shaped: an identifier plus at least one of title/description and
// one of price/web_slug.
func asListingItems(v any) ([]map[string]any, bool) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}

	first, ok := list[0].(map[string]any)
	if !ok {
		return nil, false
	}
	if _, hasID := first["id"]; !hasID {
		return nil, false
	}
	_, hasTitle := first["title"]
	_, hasDesc := first["description"]
	if !hasTitle && !hasDesc {
		return nil, false
	}
	_, hasPrice := first["price"]
	_, hasSlug := first["web_slug"]
	if !hasPrice && !hasSlug {
		return nil, false
	}

	items := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := el.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, true
}

func dig(m map[string]any, keys ...string) any {
	var cur any = m
	for _, k := range keys {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mm[k]
	}
	return cur
}

// normalizeItem coerces one raw item into a Listing. Returns nil when the
// item has no usable identifier.
func normalizeItem(item map[string]any) *models.Listing {
	id := stringValue(item["id"])
	if id == "" {
		return nil
	}

	l := &models.Listing{
		Platform:    platform,
		ExternalID:  id,
		Title:       strings.TrimSpace(stringValue(item["title"])),
		Description: strings.TrimSpace(stringValue(item["description"])),
		Price:       priceAmount(item["price"]),
		CreatedAt:   parseCreatedAt(item["created_at"]),
	}

	if loc, ok := item["location"].(map[string]any); ok {
		l.City = strings.TrimSpace(stringValue(loc["city"]))
	}

	if slug := stringValue(item["web_slug"]); slug != "" {
		l.URL = itemBaseURL + slug
	}

	return l
}

// stringValue renders scalar JSON values as strings; numeric IDs keep their
// integral form.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// priceAmount pulls a non-negative price out of either the nested
// {"amount": n} object or a bare number. Anything else is "no price".
func priceAmount(v any) *float64 {
	var amount float64
	switch val := v.(type) {
	case map[string]any:
		f, ok := val["amount"].(float64)
		if !ok {
			return nil
		}
		amount = f
	case float64:
		amount = val
	default:
		return nil
	}
	if amount < 0 {
		return nil
	}
	return &amount
}

// parseCreatedAt accepts the API's mixed creation-time formats: epoch
// seconds or milliseconds, or an ISO timestamp string.
func parseCreatedAt(v any) *time.Time {
	switch val := v.(type) {
	case float64:
		if val <= 0 {
			return nil
		}
		var t time.Time
		if val > 1e12 { // epoch milliseconds
			t = time.UnixMilli(int64(val)).UTC()
		} else {
			t = time.Unix(int64(val), 0).UTC()
		}
		return &t
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}
