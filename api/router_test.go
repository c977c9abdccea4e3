package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/fintables/config"
	"github.com/use-agent/fintables/extractor"
	"github.com/use-agent/fintables/financials"
	"github.com/use-agent/fintables/metrics"
	"github.com/use-agent/fintables/models"
)

// countingSession is a browser stand-in that only tracks lifecycle calls.
type countingSession struct {
	closes int
}

func (s *countingSession) Navigate(context.Context, string) error { return nil }

func (s *countingSession) Click(context.Context, string, time.Duration) error { return nil }

func (s *countingSession) WaitHTML(context.Context, string, time.Duration) (string, error) {
	return "", nil
}

func (s *countingSession) Close() error {
	s.closes++
	return nil
}

type countingAcquirer struct {
	acquired int
	sessions []*countingSession
}

func (a *countingAcquirer) Acquire(context.Context) (financials.Session, error) {
	a.acquired++
	s := &countingSession{}
	a.sessions = append(a.sessions, s)
	return s, nil
}

func (a *countingAcquirer) ActiveSessions() int { return 0 }

// tableExtractor returns the same table for every URL, or err.
type tableExtractor struct {
	table *models.Table
	err   error
	urls  []string
}

func (e *tableExtractor) Extract(_ context.Context, _ extractor.Page, url string) (models.TableResult, error) {
	e.urls = append(e.urls, url)
	if e.err != nil {
		return nil, e.err
	}
	return extractor.ZipAll(e.table), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Source: config.SourceConfig{BaseURL: "https://example.test/quote"},
	}
}

func newTestRouter(acq *countingAcquirer, ext *tableExtractor) (http.Handler, *metrics.Recorder) {
	rec := metrics.New(acq.ActiveSessions)
	svc := financials.NewService(acq, ext, "https://example.test/quote", rec)
	return NewRouter(svc, acq, rec, testConfig(), time.Now()), rec
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestScrape_EndToEnd(t *testing.T) {
	acq := &countingAcquirer{}
	ext := &tableExtractor{table: &models.Table{
		Headers: []string{"Breakdown", "TTM"},
		Rows:    []models.TableRow{{"Total Revenue", "100"}},
	}}
	h, _ := newTestRouter(acq, ext)

	w := doJSON(h, http.MethodPost, "/scrape", `{"ticker":"MSFT"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.FinancialsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	want := models.TableResult{{"Breakdown": "Total Revenue", "TTM": "100"}}
	assert.Equal(t, "MSFT", got.Ticker)
	assert.Equal(t, want, got.IncomeStatement)
	assert.Equal(t, want, got.BalanceSheet)
	assert.Equal(t, want, got.CashFlow)

	assert.Equal(t, []string{
		"https://example.test/quote/MSFT/financials",
		"https://example.test/quote/MSFT/balance-sheet",
		"https://example.test/quote/MSFT/cash-flow",
	}, ext.urls)

	require.Equal(t, 1, acq.acquired)
	assert.Equal(t, 1, acq.sessions[0].closes)
}

func TestScrape_ExtractionFailureReleasesOnce(t *testing.T) {
	acq := &countingAcquirer{}
	ext := &tableExtractor{err: models.NewScrapeError(
		models.ErrCodeElementTimeout,
		`element "div.tableContainer" not present within 20s`,
		context.DeadlineExceeded,
	)}
	h, _ := newTestRouter(acq, ext)

	w := doJSON(h, http.MethodPost, "/scrape", `{"ticker":"MSFT"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, strings.HasPrefix(got["error"], "An error occurred: "))
	assert.NotEmpty(t, got["traceback"])
	assert.Equal(t, models.ErrCodeElementTimeout, got["code"])

	require.Equal(t, 1, acq.acquired)
	assert.Equal(t, 1, acq.sessions[0].closes)
	assert.Len(t, ext.urls, 1)
}

func TestScrape_MissingTickerNeverAcquires(t *testing.T) {
	acq := &countingAcquirer{}
	h, _ := newTestRouter(acq, &tableExtractor{err: errors.New("unreachable")})

	w := doJSON(h, http.MethodPost, "/scrape", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Ticker is required in the request body")
	assert.Zero(t, acq.acquired)
}

func TestMetricsEndpoint(t *testing.T) {
	acq := &countingAcquirer{}
	ext := &tableExtractor{table: &models.Table{Headers: []string{"Breakdown"}}}
	h, _ := newTestRouter(acq, ext)

	require.Equal(t, http.StatusOK, doJSON(h, http.MethodPost, "/scrape", `{"ticker":"CBA.AX"}`).Code)

	w := doJSON(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fintables_scrapes_total{outcome="success"} 1`)
	assert.Contains(t, w.Body.String(), "fintables_browser_sessions_active 0")
}

func TestRootAndHealth(t *testing.T) {
	h, _ := newTestRouter(&countingAcquirer{}, &tableExtractor{})

	w := doJSON(h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Scraper service is running.", w.Body.String())

	w = doJSON(h, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
