package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID tags every request with the caller supplied X-Request-ID or a
// fresh uuid and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "httphandler.AccessLog"

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []any{
			"op", op,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"clientIP", c.ClientIP(),
			"requestID", c.GetString(requestIDKey),
		}
		if len(c.Errors) != 0 {
			attrs = append(attrs, "err", c.Errors.String())
		}
		slog.Log(c.Request.Context(), level, "request", attrs...)
	}
}

// CORS allows browser front ends served from origins to call the API.
// An empty list or "*" allows every origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	cfg.ExposeHeaders = []string{RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
