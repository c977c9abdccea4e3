package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/fintables/models"
	"github.com/ysmood/gson"
)

// defaultNavigationTimeout applies when the config leaves it unset.
const defaultNavigationTimeout = 30 * time.Second

// Session is one browser process with a single tab, owned by one request.
// Methods must not be called concurrently.
type Session struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	navTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
	onClose   func()
}

// Navigate loads url and returns once DOMContentLoaded fires. Images,
// stylesheets and other subresources are not awaited.
func (s *Session) Navigate(ctx context.Context, url string) error {
	timeout := s.navTimeout
	if timeout <= 0 {
		timeout = defaultNavigationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := s.page.Context(ctx)

	// The lifecycle listener MUST be registered before Navigate.
	waitReady := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err := p.Navigate(url); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, fmt.Sprintf("navigation to %s failed", url))
	}

	waitReady()
	if err := ctx.Err(); err != nil {
		return categorizeError(err, models.ErrCodeNavigation, fmt.Sprintf("%s never reached DOMContentLoaded", url))
	}
	return nil
}

// Click waits until selector is attached, visible and enabled, then clicks it.
func (s *Session) Click(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := s.page.Context(ctx)

	el, err := p.Element(selector)
	if err != nil {
		return waitError(err, selector, "never appeared", timeout)
	}
	if err := el.WaitVisible(); err != nil {
		return waitError(err, selector, "never became visible", timeout)
	}
	// Click scrolls into view, waits for interactable + enabled, then clicks.
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return waitError(err, selector, "never became clickable", timeout)
	}
	return nil
}

// WaitHTML waits until selector is attached and returns its outer HTML.
func (s *Session) WaitHTML(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := s.page.Context(ctx)

	el, err := p.Element(selector)
	if err != nil {
		return "", waitError(err, selector, "never appeared", timeout)
	}
	html, err := el.HTML()
	if err != nil {
		return "", categorizeError(err, models.ErrCodeExtraction, fmt.Sprintf("failed to read %q", selector))
	}
	return html, nil
}

// Close stops request interception, closes the browser, kills the process
// and removes its profile directory. Only the first call does anything.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.router != nil {
			_ = s.router.Stop()
		}
		s.closeErr = s.browser.Close()
		s.launcher.Kill()
		s.launcher.Cleanup()
		if s.onClose != nil {
			s.onClose()
		}
		slog.Debug("browser closed", "pid", s.launcher.PID())
	})
	return s.closeErr
}

// waitError turns a failed element wait into a ScrapeError. Deadline
// expiry is the ElementTimeout case.
func waitError(err error, selector, what string, timeout time.Duration) *models.ScrapeError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewScrapeError(
			models.ErrCodeElementTimeout,
			fmt.Sprintf("element %q %s within %s", selector, what, timeout),
			err,
		)
	}
	return categorizeError(err, models.ErrCodeInternal, fmt.Sprintf("waiting for %q failed", selector))
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, code, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(code, "request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(code, msg+": timed out", err)
	default:
		return models.NewScrapeError(code, msg, err)
	}
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
