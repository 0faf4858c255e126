package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"wallapop-market/models"
)

// CSVWriter dumps the raw (uncleaned) extraction output to a CSV file, one
// row per listing. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

var _ RawListingWriter = (*CSVWriter)(nil)

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"platform", "external_id", "keyword", "title", "description",
		"price", "city", "created_at", "scraped_at", "url",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends every extracted listing before any cleaning runs, so the
// dump can be diffed against what the pipeline kept.
func (c *CSVWriter) WriteRaw(keyword string, listings []*models.Listing, scrapedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		price := ""
		if l.Price != nil {
			price = strconv.FormatFloat(*l.Price, 'f', 2, 64)
		}
		createdAt := ""
		if l.CreatedAt != nil {
			createdAt = l.CreatedAt.Format(time.RFC3339)
		}

		row := []string{
			l.Platform,
			l.ExternalID,
			keyword,
			l.Title,
			l.Description,
			price,
			l.City,
			createdAt,
			scrapedAt.Format(time.RFC3339),
			l.URL,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
