package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/fintables/api"
	"github.com/use-agent/fintables/config"
	"github.com/use-agent/fintables/extractor"
	"github.com/use-agent/fintables/financials"
	"github.com/use-agent/fintables/metrics"
	"github.com/use-agent/fintables/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("fintables starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"baseURL", cfg.Source.BaseURL,
		"stealth", cfg.Browser.Stealth,
	)
	if cfg.Source.PinnedTicker != "" {
		slog.Warn("pinned ticker set, request tickers will be ignored",
			"pinned", cfg.Source.PinnedTicker,
		)
	}

	// ── 3. Browser provisioner (one Chrome per request) ─────────────
	prov := scraper.NewProvisioner(cfg.Browser)

	// The closure returns an untyped nil on failure so the service never
	// sees a nil *scraper.Session wrapped in a non-nil interface.
	acquire := financials.AcquireFunc(func(ctx context.Context) (financials.Session, error) {
		sess, err := prov.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return sess, nil
	})

	// ── 4. Table extractor ──────────────────────────────────────────
	ext, err := extractor.New(cfg.Extractor)
	if err != nil {
		slog.Error("invalid extractor configuration", "error", err)
		os.Exit(1)
	}

	// ── 5. Metrics + financials service ─────────────────────────────
	rec := metrics.New(prov.ActiveSessions)
	svc := financials.NewService(acquire, ext, cfg.Source.BaseURL, rec)

	// ── 6. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(svc, prov, rec, cfg, startTime)

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// In-flight scrapes see their request context canceled once the
	// grace period runs out; each one tears down its own Chrome.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("fintables stopped", "activeSessions", prov.ActiveSessions())
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
