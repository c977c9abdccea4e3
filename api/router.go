package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/fintables/api/handler"
	"github.com/use-agent/fintables/config"
	"github.com/use-agent/fintables/metrics"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//
// There is no auth or rate limiting; capacity is bounded by the host's
// ability to run one Chrome per in-flight request.
func NewRouter(
	svc handler.FinancialsScraper,
	sessions handler.SessionCounter,
	rec *metrics.Recorder,
	cfg *config.Config,
	startTime time.Time,
) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/", handler.Root())
	var scrapeRec handler.ScrapeRecorder
	if rec != nil {
		scrapeRec = rec
	}
	r.POST("/scrape", handler.Scrape(svc, scrapeRec, cfg.Source.PinnedTicker))

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(sessions, cfg.Browser.BusySessions, startTime))

	if rec != nil {
		r.GET("/metrics", gin.WrapH(rec.Handler()))
	}

	return r
}
