package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "FINTABLES_PORT", "FINTABLES_WAIT_TIMEOUT", "FINTABLES_BASE_URL", "FINTABLES_PINNED_TICKER", "FINTABLES_BLOCKED_RESOURCES"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20*time.Second, cfg.Extractor.WaitTimeout)
	assert.Equal(t, "https://au.finance.yahoo.com/quote", cfg.Source.BaseURL)
	assert.Empty(t, cfg.Source.PinnedTicker)
	assert.Equal(t, []string{"Image", "Font", "Media"}, cfg.Browser.BlockedResourceTypes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FINTABLES_PORT", "7070")
	t.Setenv("FINTABLES_WAIT_TIMEOUT", "5s")
	t.Setenv("FINTABLES_BASE_URL", "http://127.0.0.1:3000/quote/")
	t.Setenv("FINTABLES_PINNED_TICKER", " AAPL ")
	t.Setenv("FINTABLES_BLOCKED_RESOURCES", "Image, ,Script")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Extractor.WaitTimeout)
	assert.Equal(t, "http://127.0.0.1:3000/quote", cfg.Source.BaseURL)
	assert.Equal(t, "AAPL", cfg.Source.PinnedTicker)
	assert.Equal(t, []string{"Image", "Script"}, cfg.Browser.BlockedResourceTypes)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FINTABLES_PORT", "not-a-port")
	t.Setenv("FINTABLES_STEALTH", "maybe")
	t.Setenv("FINTABLES_WAIT_TIMEOUT", "twenty")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Browser.Stealth)
	assert.Equal(t, 20*time.Second, cfg.Extractor.WaitTimeout)
}
