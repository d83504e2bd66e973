package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/notewrap/internal/enml"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Note store connection
	NoteStoreToken   string
	NoteStoreDomain  string
	NoteStoreURL     string
	NoteStoreTimeout time.Duration

	// Rendering
	DefaultMode     enml.Mode
	MaxContentBytes int64

	// Listing
	PageSize int
	MaxPages int

	// Sync
	SyncDBPath   string
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Stats
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("NOTEWRAP_API_KEY"),

		NoteStoreToken:   os.Getenv("NOTESTORE_AUTH_TOKEN"),
		NoteStoreDomain:  envOr("NOTESTORE_DOMAIN", "https://sandbox.evernote.com"),
		NoteStoreURL:     os.Getenv("NOTESTORE_URL"),
		NoteStoreTimeout: envDuration("NOTESTORE_TIMEOUT", 30*time.Second),

		DefaultMode:     envMode("DEFAULT_MODE", enml.ModeBasic),
		MaxContentBytes: envInt64("MAX_CONTENT_BYTES", 5242880), // 5MB

		PageSize: envInt("PAGE_SIZE", 10),
		MaxPages: envInt("MAX_PAGES", 0),

		SyncDBPath:   os.Getenv("SYNC_DB_PATH"),
		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.NoteStoreTimeout <= 0 {
		cfg.NoteStoreTimeout = 30 * time.Second
	}
	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = 5242880
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("NOTEWRAP_API_KEY is required")
	}
	if c.NoteStoreToken == "" {
		return fmt.Errorf("NOTESTORE_AUTH_TOKEN is required")
	}
	if c.NoteStoreURL == "" && c.NoteStoreDomain == "" {
		return fmt.Errorf("one of NOTESTORE_URL or NOTESTORE_DOMAIN is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envMode falls back when the value is not a known output mode.
func envMode(key string, fallback enml.Mode) enml.Mode {
	if v := os.Getenv(key); v != "" {
		if m, err := enml.ParseMode(v); err == nil {
			return m
		}
	}
	return fallback
}
