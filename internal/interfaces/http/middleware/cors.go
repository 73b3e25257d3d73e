package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fairybook-api/internal/config"
)

// CORS 跨域中间件；允许任意来源时不携带凭证
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "OPTIONS"}
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader, SignatureHeader}
	}

	corsCfg := cors.Config{
		AllowMethods:  methods,
		AllowHeaders:  headers,
		ExposeHeaders: []string{RequestIDHeader, "X-Trace-ID"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}
