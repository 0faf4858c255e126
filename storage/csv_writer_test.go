package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallapop-market/models"
)

func TestCSVWriterWritesRawListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "raw.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	price := 99.5
	scrapedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	listings := []*models.Listing{
		{
			Platform:   "wallapop",
			ExternalID: "123",
			Title:      "Consola PS4",
			Price:      &price,
			City:       "Madrid",
			URL:        "https://es.wallapop.com/item/consola-ps4-123",
		},
		{
			Platform:   "wallapop",
			ExternalID: "456",
			Title:      "PS4 sin precio",
		},
	}

	require.NoError(t, w.WriteRaw("ps4", listings, scrapedAt))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 listings

	assert.Equal(t, "platform", rows[0][0])
	assert.Equal(t, "123", rows[1][1])
	assert.Equal(t, "ps4", rows[1][2])
	assert.Equal(t, "99.50", rows[1][5])
	assert.Equal(t, "2026-08-01T12:00:00Z", rows[1][8])

	// nil price serializes as empty, not zero
	assert.Equal(t, "", rows[2][5])
}
