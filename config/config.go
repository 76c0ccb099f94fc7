package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"sjsage522/remateworker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Boletín Concursal
	BoletinBaseURL string

	// Bienes Nacionales listing page
	BienesListURL string

	// HTTP behavior
	UserAgent      string
	RequestTimeout time.Duration

	// Crawl shape
	PageSize     int
	LookbackDays int

	// Output paths
	OutputPath       string
	BienesOutputPath string
	ErrorLogPath     string

	// Redis configuration (stream sink, disabled when addr is empty)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamCount  int
	RedisStreamMaxLen int

	// Environment
	Environment string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0 Safari/537.36"

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	requestTimeout, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "30"))
	pageSize, _ := strconv.Atoi(getEnv("PAGE_SIZE", "100"))
	lookbackDays, _ := strconv.Atoi(getEnv("LOOKBACK_DAYS", "30"))

	return &Config{
		BoletinBaseURL:    getEnv("BOLETIN_BASE_URL", "https://boletinconcursal.cl"),
		BienesListURL:     getEnv("BIENES_LIST_URL", "https://licitaciones.bienes.cl/licitaciones/licitaciones-actuales/"),
		UserAgent:         getEnv("USER_AGENT", defaultUserAgent),
		RequestTimeout:    time.Duration(requestTimeout) * time.Second,
		PageSize:          pageSize,
		LookbackDays:      lookbackDays,
		OutputPath:        getEnv("OUTPUT_PATH", "data/remates.json"),
		BienesOutputPath:  getEnv("BIENES_OUTPUT_PATH", "data/licitaciones.json"),
		ErrorLogPath:      getEnv("ERROR_LOG_PATH", "logs/error.log"),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "remates"),
		RedisStreamCount:  redisStreamCount,
		RedisStreamMaxLen: redisStreamMaxLen,
		Environment:       getEnv("REMATES_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the scraper cannot run with
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return errors.NewConfiguration("page size must be positive", nil)
	}
	if c.LookbackDays < 0 {
		return errors.NewConfiguration("lookback days must not be negative", nil)
	}
	if c.RequestTimeout <= 0 {
		return errors.NewConfiguration("request timeout must be positive", nil)
	}
	for _, raw := range []string{c.BoletinBaseURL, c.BienesListURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewConfiguration("invalid base URL: "+raw, err)
		}
	}
	if c.RedisAddr != "" && c.RedisStreamCount <= 0 {
		return errors.NewConfiguration("redis stream count must be positive", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
