package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Paths polled by dashboards and monitors; successful hits log at debug.
var quietPaths = map[string]bool{
	"/health":        true,
	"/api/v1/health": true,
	"/api/v1/state":  true,
	"/api/v1/events": true,
}

// SetupMiddleware installs recovery, request logging and CORS. An empty
// origins list allows any origin.
func SetupMiddleware(r *gin.Engine, origins []string) {
	r.Use(gin.Recovery(), RequestLogger())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	r.Use(cors.New(corsConfig))
}

// RequestLogger logs one line per request, with the level raised by status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= 500:
			level = zerolog.ErrorLevel
		case status >= 400:
			level = zerolog.WarnLevel
		case quietPaths[c.FullPath()]:
			level = zerolog.DebugLevel
		}

		evt := log.WithLevel(level).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if key := c.Param("code"); key != "" {
			evt = evt.Str("code", key)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			evt = evt.Str("errors", errs.String())
		}
		evt.Msg("request")
	}
}
