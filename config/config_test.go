package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettingsForMode(t *testing.T) {
	respectful := SettingsForMode("respectful")
	assert.Equal(t, 2500*time.Millisecond, respectful.InitialWait)
	assert.Equal(t, 5, respectful.MaxEmptyIterations)
	assert.Equal(t, 7000, respectful.ScrollDelta)

	fast := SettingsForMode("FAST ")
	assert.Equal(t, 1200*time.Millisecond, fast.InitialWait)
	assert.Equal(t, 3, fast.MaxEmptyIterations)

	// unknown modes fall back to respectful pacing
	assert.Equal(t, respectful, SettingsForMode("warp-speed"))
	assert.Equal(t, respectful, SettingsForMode(""))
}

func TestScraperSettingsTimeoutOverride(t *testing.T) {
	cfg := &Config{ScraperMode: "fast", ScrapeTimeoutSecs: 90}
	s := cfg.ScraperSettings()
	assert.Equal(t, 90*time.Second, s.Timeout)

	cfg = &Config{ScraperMode: "fast"}
	assert.Equal(t, 3*time.Minute, cfg.ScraperSettings().Timeout)
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "localhost",
		PostgresPort:     "5432",
		PostgresUser:     "scraper",
		PostgresPassword: "scraper123",
		PostgresDB:       "market_db",
		PostgresSSLMode:  "disable",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=scraper password=scraper123 dbname=market_db sslmode=disable",
		cfg.DSN())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "hello")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_FLOAT", "3.5")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BAD_INT", "nope")

	assert.Equal(t, "hello", getEnv("TEST_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("TEST_MISSING", "fallback"))
	assert.Equal(t, 42, getEnvInt("TEST_INT", 0))
	assert.Equal(t, 7, getEnvInt("TEST_BAD_INT", 7))
	assert.Equal(t, 3.5, getEnvFloat("TEST_FLOAT", -1))
	assert.Equal(t, -1.0, getEnvFloat("TEST_MISSING", -1))
	assert.True(t, getEnvBool("TEST_BOOL", false))
	assert.False(t, getEnvBool("TEST_MISSING", false))
}
