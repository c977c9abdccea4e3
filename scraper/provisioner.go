package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/fintables/config"
	"github.com/use-agent/fintables/models"
)

// Fixed window geometry for every session.
const (
	windowWidth  = 1920
	windowHeight = 1080
)

// Provisioner launches one dedicated headless Chrome per Acquire call.
// It is safe for concurrent use; sessions share nothing.
type Provisioner struct {
	cfg    config.BrowserConfig
	active atomic.Int32
}

// NewProvisioner creates a Provisioner. No browser is started until Acquire.
func NewProvisioner(cfg config.BrowserConfig) *Provisioner {
	return &Provisioner{cfg: cfg}
}

// ActiveSessions reports how many acquired sessions have not been closed.
func (p *Provisioner) ActiveSessions() int {
	return int(p.active.Load())
}

// Acquire launches Chrome, connects to it, and opens a configured tab.
//
// Lifecycle:
//
//  1. Launch            – headless, no sandbox, no /dev/shm, no GPU, fixed window
//  2. Connect           – CDP websocket to the new process
//  3. Open tab          – blank target + fixed viewport
//  4. Stealth           – optional, before any navigation
//  5. Headers + hijack  – extra headers, resource-type blocking
//
// Every failure kills whatever was already started and returns a
// ScrapeError with ErrCodeProvisioning. The caller owns the returned
// Session and must Close it.
func (p *Provisioner) Acquire(ctx context.Context) (*Session, error) {
	// ── 1. Launch ───────────────────────────────────────────────────
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("window-size"), "1920,1080")

	if p.cfg.BrowserBin != "" {
		l = l.Bin(p.cfg.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeProvisioning,
			"failed to launch browser",
			err,
		)
	}
	slog.Debug("browser launched", "controlURL", controlURL, "pid", l.PID())

	// ── 2. Connect ──────────────────────────────────────────────────
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeProvisioning,
			"failed to connect to browser",
			err,
		)
	}

	s := &Session{
		launcher:   l,
		browser:    browser,
		navTimeout: p.cfg.NavigationTimeout,
		onClose:    func() { p.active.Add(-1) },
	}
	p.active.Add(1)

	// ── 3. Open tab ─────────────────────────────────────────────────
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeProvisioning,
			"failed to open browser tab",
			err,
		)
	}
	s.page = page

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             windowWidth,
		Height:            windowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = s.Close()
		return nil, models.NewScrapeError(
			models.ErrCodeProvisioning,
			"failed to set viewport",
			err,
		)
	}

	// ── 4. Stealth ──────────────────────────────────────────────────
	if p.cfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	// ── 5. Extra headers + resource blocking ────────────────────────
	if p.cfg.AcceptLanguage != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{"Accept-Language": p.cfg.AcceptLanguage}),
		}.Call(page)
	}
	s.router = setupHijack(page, p.cfg.BlockedResourceTypes)

	return s, nil
}
