// Package extractor turns a rendered statement page into header-keyed records.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/fintables/config"
	"github.com/use-agent/fintables/models"
)

// DefaultWaitTimeout bounds each element wait when the config leaves it unset.
const DefaultWaitTimeout = 20 * time.Second

// Page is the browser surface the extractor drives. Implementations must
// return *models.ScrapeError values so callers can tell timeouts apart.
type Page interface {
	// Navigate loads url and returns once the DOM is ready.
	Navigate(ctx context.Context, url string) error

	// Click waits up to timeout for selector to become clickable, then clicks it.
	Click(ctx context.Context, selector string, timeout time.Duration) error

	// WaitHTML waits up to timeout for selector to be present and returns
	// the element's outer HTML.
	WaitHTML(ctx context.Context, selector string, timeout time.Duration) (string, error)
}

// Selectors locate the parts of a statement page.
type Selectors struct {
	ExpandButton   string
	TableContainer string
	HeaderCells    string
	BodyRows       string
	RowTitle       string
	DataCells      string
}

// DefaultSelectors matches the quote site's financials layout.
func DefaultSelectors() Selectors {
	return Selectors{
		ExpandButton:   "button.link2-btn[data-ylk*='expand']",
		TableContainer: "div.tableContainer",
		HeaderCells:    ".tableHeader .column",
		BodyRows:       ".tableBody .row",
		RowTitle:       "div.rowTitle",
		DataCells:      "div.column:not(.sticky)",
	}
}

// Extractor runs the navigate → expand → wait → read procedure.
// It holds no per-page state and is safe for concurrent use.
type Extractor struct {
	waitTimeout time.Duration
	sel         Selectors

	container cascadia.Selector
	headers   cascadia.Selector
	rows      cascadia.Selector
	rowTitle  cascadia.Selector
	data      cascadia.Selector
}

// New builds an Extractor from config, filling unset fields with defaults.
// Every selector is compiled up front so a bad override fails at startup.
func New(cfg config.ExtractorConfig) (*Extractor, error) {
	sel := DefaultSelectors()
	override(&sel.ExpandButton, cfg.ExpandButton)
	override(&sel.TableContainer, cfg.TableContainer)
	override(&sel.HeaderCells, cfg.HeaderCells)
	override(&sel.BodyRows, cfg.BodyRows)
	override(&sel.RowTitle, cfg.RowTitle)
	override(&sel.DataCells, cfg.DataCells)

	timeout := cfg.WaitTimeout
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}

	e := &Extractor{waitTimeout: timeout, sel: sel}

	// The expand button is only ever matched by the browser, but it is
	// still validated here.
	if _, err := cascadia.Compile(sel.ExpandButton); err != nil {
		return nil, fmt.Errorf("extractor: expand selector %q: %w", sel.ExpandButton, err)
	}

	targets := []struct {
		dst *cascadia.Selector
		src string
	}{
		{&e.container, sel.TableContainer},
		{&e.headers, sel.HeaderCells},
		{&e.rows, sel.BodyRows},
		{&e.rowTitle, sel.RowTitle},
		{&e.data, sel.DataCells},
	}
	for _, t := range targets {
		compiled, err := cascadia.Compile(t.src)
		if err != nil {
			return nil, fmt.Errorf("extractor: selector %q: %w", t.src, err)
		}
		*t.dst = compiled
	}

	return e, nil
}

// Selectors returns the effective selector set.
func (e *Extractor) Selectors() Selectors { return e.sel }

// Extract navigates page to url and returns one record per table row.
//
// Steps:
//
//  1. Navigate               – DOM-ready, subresources not awaited
//  2. Expand                 – wait for the expand control to be clickable, click
//  3. Wait for container     – presence of the table container, snapshot HTML
//  4. Reconstruct            – headers + rows from the snapshot
//  5. Zip                    – truncating positional zip per row
//
// Any wait timeout is returned as-is; nothing is retried.
func (e *Extractor) Extract(ctx context.Context, page Page, url string) (models.TableResult, error) {
	start := time.Now()

	// ── 1. Navigate ─────────────────────────────────────────────────
	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}

	// ── 2. Expand all rows ──────────────────────────────────────────
	if err := page.Click(ctx, e.sel.ExpandButton, e.waitTimeout); err != nil {
		return nil, err
	}

	// ── 3. Wait for the table container ─────────────────────────────
	snapshot, err := page.WaitHTML(ctx, e.sel.TableContainer, e.waitTimeout)
	if err != nil {
		return nil, err
	}

	// ── 4. Reconstruct ──────────────────────────────────────────────
	table, err := e.ParseTable(snapshot)
	if err != nil {
		return nil, err
	}

	// ── 5. Zip ──────────────────────────────────────────────────────
	result := ZipAll(table)

	slog.Debug("table extracted",
		"url", url,
		"headers", len(table.Headers),
		"rows", len(result),
		"duration", time.Since(start),
	)
	return result, nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
