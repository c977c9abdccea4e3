package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Extractor ExtractorConfig
	Source    SourceConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080 (PORT wins over FINTABLES_PORT)
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls how each per-request Chrome instance is launched.
type BrowserConfig struct {
	// BrowserBin overrides the Chromium binary path. When empty, rod looks
	// for a local install and downloads one if none is found.
	BrowserBin string

	// Stealth injects go-rod/stealth evasions before every navigation.
	Stealth bool // default: false

	// BlockedResourceTypes lists resource types to block.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// AcceptLanguage is sent as an extra header on every request.
	AcceptLanguage string // default: "en-AU,en;q=0.9"

	// NavigationTimeout bounds a single navigation up to DOMContentLoaded.
	NavigationTimeout time.Duration // default: 30s

	// BusySessions is the live-session count above which health reports "busy".
	BusySessions int // default: 4
}

// ExtractorConfig controls the table extraction procedure.
type ExtractorConfig struct {
	// WaitTimeout bounds each element wait (expand control, table container).
	WaitTimeout time.Duration // default: 20s

	// Selectors locate the page structure. Empty fields fall back to the
	// extractor defaults.
	ExpandButton   string
	TableContainer string
	HeaderCells    string
	BodyRows       string
	RowTitle       string
	DataCells      string
}

// SourceConfig describes where statement pages live.
type SourceConfig struct {
	// BaseURL is the quote root; the ticker and statement path are appended.
	BaseURL string // default: "https://au.finance.yahoo.com/quote"

	// PinnedTicker, when set, replaces the ticker supplied by the client.
	PinnedTicker string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FINTABLES_HOST", "0.0.0.0"),
			Port: envIntOr("PORT", envIntOr("FINTABLES_PORT", 8080)),
			Mode: envOr("FINTABLES_MODE", "release"),
		},
		Browser: BrowserConfig{
			BrowserBin: os.Getenv("FINTABLES_BROWSER_BIN"),
			Stealth:    envBoolOr("FINTABLES_STEALTH", false),
			BlockedResourceTypes: envSliceOr("FINTABLES_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			AcceptLanguage:    envOr("FINTABLES_ACCEPT_LANGUAGE", "en-AU,en;q=0.9"),
			NavigationTimeout: envDurationOr("FINTABLES_NAV_TIMEOUT", 30*time.Second),
			BusySessions:      envIntOr("FINTABLES_BUSY_SESSIONS", 4),
		},
		Extractor: ExtractorConfig{
			WaitTimeout:    envDurationOr("FINTABLES_WAIT_TIMEOUT", 20*time.Second),
			ExpandButton:   os.Getenv("FINTABLES_SEL_EXPAND"),
			TableContainer: os.Getenv("FINTABLES_SEL_CONTAINER"),
			HeaderCells:    os.Getenv("FINTABLES_SEL_HEADER"),
			BodyRows:       os.Getenv("FINTABLES_SEL_ROWS"),
			RowTitle:       os.Getenv("FINTABLES_SEL_ROW_TITLE"),
			DataCells:      os.Getenv("FINTABLES_SEL_DATA"),
		},
		Source: SourceConfig{
			BaseURL:      strings.TrimRight(envOr("FINTABLES_BASE_URL", "https://au.finance.yahoo.com/quote"), "/"),
			PinnedTicker: strings.TrimSpace(os.Getenv("FINTABLES_PINNED_TICKER")),
		},
		Log: LogConfig{
			Level:  envOr("FINTABLES_LOG_LEVEL", "info"),
			Format: envOr("FINTABLES_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
