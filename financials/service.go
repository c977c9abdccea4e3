// Package financials scrapes the three statement tables for one ticker
// using a single browser session.
package financials

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/use-agent/fintables/extractor"
	"github.com/use-agent/fintables/models"
)

// Session is a browser session the extractor can drive and the service
// must release.
type Session interface {
	extractor.Page
	Close() error
}

// Acquirer hands out sessions.
type Acquirer interface {
	Acquire(ctx context.Context) (Session, error)
}

// AcquireFunc adapts a function to Acquirer.
type AcquireFunc func(ctx context.Context) (Session, error)

// Acquire calls f.
func (f AcquireFunc) Acquire(ctx context.Context) (Session, error) { return f(ctx) }

// TableExtractor reads one statement table from a page.
type TableExtractor interface {
	Extract(ctx context.Context, page extractor.Page, url string) (models.TableResult, error)
}

// Observer receives per-statement timings. A nil Observer is allowed.
type Observer interface {
	ObserveStatement(statement string, d time.Duration, err error)
}

// Statement identifies one of the three statement pages.
type Statement struct {
	Name string // used in logs and metrics
	Path string // appended to the quote URL
}

// Statements lists the pages in scrape order.
var Statements = []Statement{
	{Name: "income_statement", Path: "financials"},
	{Name: "balance_sheet", Path: "balance-sheet"},
	{Name: "cash_flow", Path: "cash-flow"},
}

// Service scrapes all statements for a ticker.
type Service struct {
	acquirer  Acquirer
	extractor TableExtractor
	baseURL   string
	observer  Observer
}

// NewService creates a Service. baseURL is the quote root, e.g.
// "https://au.finance.yahoo.com/quote".
func NewService(acq Acquirer, ext TableExtractor, baseURL string, obs Observer) *Service {
	return &Service{
		acquirer:  acq,
		extractor: ext,
		baseURL:   strings.TrimRight(baseURL, "/"),
		observer:  obs,
	}
}

// StatementURL builds the page URL for ticker and statement.
func (s *Service) StatementURL(ticker string, st Statement) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, url.PathEscape(ticker), st.Path)
}

// Scrape acquires one session, extracts the three statements sequentially,
// and releases the session exactly once whatever happens, including a
// panic inside the browser layer (reported as ErrCodeInternal with the
// goroutine stack as trace).
func (s *Service) Scrape(ctx context.Context, ticker string) (resp *models.FinancialsResponse, err error) {
	sess, err := s.acquirer.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = models.NewInternalError(
				"panic during scrape",
				fmt.Errorf("%v", r),
				string(debug.Stack()),
			)
		}
		if closeErr := sess.Close(); closeErr != nil {
			slog.Warn("browser session close failed", "ticker", ticker, "error", closeErr)
		}
	}()

	tables := make([]models.TableResult, len(Statements))
	for i, st := range Statements {
		target := s.StatementURL(ticker, st)

		start := time.Now()
		result, extractErr := s.extractor.Extract(ctx, sess, target)
		elapsed := time.Since(start)

		if s.observer != nil {
			s.observer.ObserveStatement(st.Name, elapsed, extractErr)
		}
		if extractErr != nil {
			return nil, fmt.Errorf("%s (%s): %w", st.Name, target, extractErr)
		}

		slog.Info("statement scraped",
			"ticker", ticker,
			"statement", st.Name,
			"rows", len(result),
			"duration", elapsed,
		)
		tables[i] = result
	}

	return &models.FinancialsResponse{
		Ticker:          ticker,
		IncomeStatement: tables[0],
		BalanceSheet:    tables[1],
		CashFlow:        tables[2],
	}, nil
}
