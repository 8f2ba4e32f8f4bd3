package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/infrastructure/config"
)

// CORS builds the cross-origin middleware from HTTP config. An empty origin
// list rejects every cross-origin request; "*" allows any origin.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.CORSAllowMethods,
		AllowHeaders:     cfg.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	switch {
	case slices.Contains(cfg.CORSAllowOrigins, "*"):
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	case len(cfg.CORSAllowOrigins) == 0:
		corsCfg.AllowOriginFunc = func(string) bool { return false }
	default:
		corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	}

	return cors.New(corsCfg)
}
