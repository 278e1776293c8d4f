// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package campaign_routers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rapidaai/campaign/pkg/commons"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewEngine builds the gin engine with recovery, CORS and request logging.
func NewEngine(logger commons.Logger) *gin.Engine {
	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.MaxMultipartMemory = 32 << 20
	engine.Use(Recovery(logger))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	engine.Use(RequestLogger(logger))
	return engine
}

// RequestLogger logs every request except metric scrapes.
func RequestLogger(logger commons.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/metrics" {
			return
		}
		logger.Infow("request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		)
	}
}

// Recovery turns a handler panic into a 500 without leaking the panic value.
func Recovery(logger commons.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorw("recovered from handler panic", "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// RateLimit limits requests per client IP; formatted is "<limit>-<S|M|H|D>".
func RateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate)), nil
}
