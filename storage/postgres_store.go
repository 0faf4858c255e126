package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"wallapop-market/models"
)

// PostgresStore persists listing observations to PostgreSQL. The table is
// append-only: one row per listing per run, grouped by scraped_at.
type PostgresStore struct {
	db *sql.DB
}

var _ ObservationStore = (*PostgresStore)(nil)

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			id          SERIAL PRIMARY KEY,
			platform    VARCHAR(50)  NOT NULL,
			external_id VARCHAR(100) NOT NULL,
			keyword     TEXT         NOT NULL,
			title       TEXT         NOT NULL,
			description TEXT         NOT NULL DEFAULT '',
			price       NUMERIC(12,2),
			currency    VARCHAR(8)   NOT NULL DEFAULT 'EUR',
			city        TEXT         NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ,
			scraped_at  TIMESTAMPTZ  NOT NULL,
			url         TEXT         NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_obs_keyword         ON observations(keyword);
		CREATE INDEX IF NOT EXISTS idx_obs_platform        ON observations(platform);
		CREATE INDEX IF NOT EXISTS idx_obs_scraped_at      ON observations(scraped_at);
		CREATE INDEX IF NOT EXISTS idx_obs_listing         ON observations(platform, external_id);
		CREATE INDEX IF NOT EXISTS idx_obs_listing_history ON observations(external_id, scraped_at);
		CREATE INDEX IF NOT EXISTS idx_obs_run             ON observations(keyword, scraped_at);
	`)
	return err
}

// Save appends one run. The run timestamp is assigned once here so every
// row groups under the same scraped_at, at second precision.
func (ps *PostgresStore) Save(keyword string, listings []*models.Listing) (int, time.Time, error) {
	scrapedAt := time.Now().UTC().Truncate(time.Second)
	if len(listings) == 0 {
		return 0, scrapedAt, nil
	}

	const batchSize = 50
	written := 0
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := ps.insertBatch(keyword, scrapedAt, listings[i:end]); err != nil {
			return written, scrapedAt, err
		}
		written += end - i
	}
	return written, scrapedAt, nil
}

func (ps *PostgresStore) insertBatch(keyword string, scrapedAt time.Time, batch []*models.Listing) error {
	const cols = 10
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5,
				base+6, base+7, base+8, base+9, base+10))

		var price sql.NullFloat64
		if l.Price != nil {
			price = sql.NullFloat64{Float64: *l.Price, Valid: true}
		}
		var createdAt sql.NullTime
		if l.CreatedAt != nil {
			createdAt = sql.NullTime{Time: *l.CreatedAt, Valid: true}
		}

		valueArgs = append(valueArgs,
			l.Platform, l.ExternalID, keyword, l.Title, l.Description,
			price, l.City, createdAt, scrapedAt, l.URL)
	}

	query := fmt.Sprintf(`
		INSERT INTO observations (
			platform, external_id, keyword, title, description,
			price, city, created_at, scraped_at, url
		)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := ps.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// QueryRuns returns per-run aggregates over priced rows, newest first.
func (ps *PostgresStore) QueryRuns(keyword string) ([]models.RunSummary, error) {
	rows, err := ps.db.Query(`
		SELECT
			scraped_at,
			COUNT(*)   AS n_items,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price
		FROM observations
		WHERE keyword = $1
		  AND price IS NOT NULL
		GROUP BY scraped_at
		ORDER BY scraped_at DESC
	`, keyword)
	if err != nil {
		return nil, fmt.Errorf("postgres: query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		var r models.RunSummary
		if err := rows.Scan(&r.ScrapedAt, &r.Items, &r.AvgPrice, &r.MinPrice, &r.MaxPrice); err != nil {
			return nil, fmt.Errorf("postgres: scan run: %w", err)
		}
		r.ScrapedAt = r.ScrapedAt.UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// QueryPrices returns the prices recorded for the keyword in one run.
func (ps *PostgresStore) QueryPrices(keyword string, scrapedAt time.Time) ([]float64, error) {
	rows, err := ps.db.Query(`
		SELECT price
		FROM observations
		WHERE keyword = $1
		  AND price IS NOT NULL
		  AND scraped_at = $2
	`, keyword, scrapedAt)
	if err != nil {
		return nil, fmt.Errorf("postgres: query prices: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("postgres: scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// QueryPriceObservations returns every priced sighting for the keyword.
func (ps *PostgresStore) QueryPriceObservations(keyword string) ([]models.PriceObservation, error) {
	rows, err := ps.db.Query(`
		SELECT external_id, price, scraped_at
		FROM observations
		WHERE keyword = $1
		  AND price IS NOT NULL
		ORDER BY scraped_at
	`, keyword)
	if err != nil {
		return nil, fmt.Errorf("postgres: query observations: %w", err)
	}
	defer rows.Close()

	var obs []models.PriceObservation
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.ExternalID, &o.Price, &o.ScrapedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan observation: %w", err)
		}
		o.ScrapedAt = o.ScrapedAt.UTC()
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// DeleteRun removes one run of the keyword and reports rows deleted.
func (ps *PostgresStore) DeleteRun(keyword string, scrapedAt time.Time) (int, error) {
	res, err := ps.db.Exec(`
		DELETE FROM observations
		WHERE keyword = $1
		  AND scraped_at = $2
	`, keyword, scrapedAt)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete run: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteAllForKeyword removes the keyword's entire history.
func (ps *PostgresStore) DeleteAllForKeyword(keyword string) (int, error) {
	res, err := ps.db.Exec(`
		DELETE FROM observations
		WHERE keyword = $1
	`, keyword)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete keyword: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
