package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ScraperSettings is the immutable pacing/termination record handed to the
// extraction engine. All waits are blocking suspensions with bounded
// timeouts; jitter keeps the pacing from looking machine-regular.
type ScraperSettings struct {
	InitialWait     time.Duration
	AfterClickWait  time.Duration
	AfterScrollWait time.Duration
	MinWait         time.Duration
	Jitter          time.Duration

	MaxEmptyIterations int
	ScrollDelta        int

	Timeout      time.Duration
	NavTimeout   time.Duration
	NavRetries   int
	ClickRetries int
}

var scraperModes = map[string]ScraperSettings{
	"respectful": {
		InitialWait:        2500 * time.Millisecond,
		AfterClickWait:     2600 * time.Millisecond,
		AfterScrollWait:    2600 * time.Millisecond,
		MinWait:            800 * time.Millisecond,
		Jitter:             400 * time.Millisecond,
		MaxEmptyIterations: 5,
		ScrollDelta:        7000,
		Timeout:            4 * time.Minute,
		NavTimeout:         15 * time.Second,
		NavRetries:         2,
		ClickRetries:       2,
	},
	"fast": {
		InitialWait:        1200 * time.Millisecond,
		AfterClickWait:     1400 * time.Millisecond,
		AfterScrollWait:    1400 * time.Millisecond,
		MinWait:            800 * time.Millisecond,
		Jitter:             400 * time.Millisecond,
		MaxEmptyIterations: 3,
		ScrollDelta:        6000,
		Timeout:            3 * time.Minute,
		NavTimeout:         15 * time.Second,
		NavRetries:         2,
		ClickRetries:       2,
	},
}

// SettingsForMode returns the pacing record for a scraper mode, defaulting
// to respectful for unknown input.
func SettingsForMode(mode string) ScraperSettings {
	if s, ok := scraperModes[strings.ToLower(strings.TrimSpace(mode))]; ok {
		return s
	}
	return scraperModes["respectful"]
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Keyword     string
	OrderBy     string
	TargetCount int
	TextFilter  string
	MinPrice    float64 // < 0 means unset
	MaxPrice    float64 // < 0 means unset
	Headless    bool
	Strict      bool

	FilterPreset   string
	IntentMode     string
	ExcludeBadText bool

	ScraperMode       string
	ScrapeTimeoutSecs int

	CSVOutputPath string
	ChromeBin     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "market_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Keyword:     getEnv("KEYWORD", ""),
		OrderBy:     getEnv("ORDER_BY", "most_relevance"),
		TargetCount: getEnvInt("TARGET_COUNT", 100),
		TextFilter:  getEnv("TEXT_FILTER", ""),
		MinPrice:    getEnvFloat("MIN_PRICE", -1),
		MaxPrice:    getEnvFloat("MAX_PRICE", -1),
		Headless:    getEnvBool("HEADLESS", true),
		Strict:      getEnvBool("STRICT", false),

		FilterPreset:   getEnv("FILTER_PRESET", "soft"),
		IntentMode:     getEnv("INTENT_MODE", "auto"),
		ExcludeBadText: getEnvBool("EXCLUDE_BAD_TEXT", true),

		ScraperMode:       getEnv("SCRAPER_MODE", "respectful"),
		ScrapeTimeoutSecs: getEnvInt("SCRAPE_TIMEOUT_SECS", 0),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_listings.csv"),
		ChromeBin:     getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// ScraperSettings resolves the pacing record for the configured mode,
// with the outer timeout budget overridable via SCRAPE_TIMEOUT_SECS.
func (c *Config) ScraperSettings() ScraperSettings {
	s := SettingsForMode(c.ScraperMode)
	if c.ScrapeTimeoutSecs > 0 {
		s.Timeout = time.Duration(c.ScrapeTimeoutSecs) * time.Second
	}
	return s
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
