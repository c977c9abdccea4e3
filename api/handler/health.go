package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/fintables/models"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// SessionCounter reports live browser sessions.
type SessionCounter interface {
	ActiveSessions() int
}

// Root returns a handler for GET / (plain-text liveness).
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "Scraper service is running.")
	}
}

// Health returns a handler for GET /api/v1/health.
//
// Every request owns a whole Chrome process, so status degrades to "busy"
// once more than busyThreshold sessions are live.
func Health(sessions SessionCounter, busyThreshold int, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := sessions.ActiveSessions()

		status := "healthy"
		if busyThreshold > 0 && active > busyThreshold {
			status = "busy"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         status,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSessions: active,
			Version:        Version,
		})
	}
}
