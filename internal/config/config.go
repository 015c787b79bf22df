package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	RateLimitRPM   int
	CacheTTL       time.Duration
	KeyCacheTTL    time.Duration
	SumTimeout     time.Duration
	MaxConcurrency int
	MaxInputs      int
	SumCeiling     int
	HistoryLimit   int
	AdminToken     string
	APIKeys        []string
	LogLevel       string
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getlist(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Load loads configuration from environment variables with sane defaults.
// MONGO_URI may be set to the empty string to run without Mongo.
func Load() Config {
	return Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "sumapi"),
		RateLimitRPM:   getint("RATE_LIMIT_RPM", 60),
		CacheTTL:       getdur("CACHE_TTL", 10*time.Minute),
		KeyCacheTTL:    getdur("KEY_CACHE_TTL", 60*time.Second),
		SumTimeout:     getdur("SUM_TIMEOUT", 2*time.Second),
		MaxConcurrency: getint("MAX_CONCURRENCY", 16),
		MaxInputs:      getint("MAX_INPUTS", 100),
		SumCeiling:     getint("SUM_CEILING", 1000),
		HistoryLimit:   getint("HISTORY_LIMIT", 50),
		AdminToken:     getenv("ADMIN_TOKEN", ""),
		APIKeys:        getlist("API_KEYS"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
	}
}
