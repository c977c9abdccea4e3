package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/fintables/models"
)

// FinancialsScraper runs the three-statement scrape for one ticker.
type FinancialsScraper interface {
	Scrape(ctx context.Context, ticker string) (*models.FinancialsResponse, error)
}

// ScrapeRecorder receives request outcomes. A nil recorder is allowed.
type ScrapeRecorder interface {
	RecordScrape(d time.Duration, err error)
	RecordRejected()
}

// Scrape returns a handler for POST /scrape.
//
// Orchestration flow:
//  1. Parse & validate request (no browser is touched on failure → 400).
//  2. Resolve the ticker (pinned ticker overrides the client value).
//  3. FinancialsScraper.Scrape → three statements, session released inside.
//  4. 200 with the response, or 500 with error + traceback.
func Scrape(svc FinancialsScraper, rec ScrapeRecorder, pinnedTicker string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if rec != nil {
				rec.RecordRejected()
			}
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: bindErrorMessage(err),
				Code:  models.ErrCodeInvalidInput,
			})
			return
		}

		// ── 2. Resolve ticker ───────────────────────────────────────
		ticker := strings.ToUpper(req.Ticker)
		if pinnedTicker != "" && pinnedTicker != ticker {
			slog.Warn("pinned ticker overrides request ticker",
				"requested", ticker,
				"pinned", pinnedTicker,
			)
			ticker = pinnedTicker
		}

		// ── 3. Scrape ───────────────────────────────────────────────
		resp, err := svc.Scrape(c.Request.Context(), ticker)
		if rec != nil {
			rec.RecordScrape(time.Since(start), err)
		}

		// ── 4. Respond ──────────────────────────────────────────────
		if err != nil {
			body := models.NewErrorResponse(err)
			slog.Error("scrape failed",
				"ticker", ticker,
				"code", body.Code,
				"error", err,
				"traceback", body.Traceback,
			)
			c.JSON(http.StatusInternalServerError, body)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
