package middleware

import (
	"time"

	"studio-go/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS 跨域中间件
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     cfg.CORS.AllowMethods,
		AllowHeaders:     cfg.CORS.AllowHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		ExposeHeaders:    []string{"Content-Disposition"},
		MaxAge:           12 * time.Hour,
	}

	// 未配置或包含 * 时允许所有来源
	allowAll := len(cfg.CORS.Origins) == 0
	for _, o := range cfg.CORS.Origins {
		if o == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = cfg.CORS.Origins
	}

	return cors.New(corsCfg)
}
