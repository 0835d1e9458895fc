package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware 请求日志，带上终端用户邮箱或运营账号
func LoggerMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"status":     status,
			"method":     c.Request.Method,
			"route":      c.FullPath(),
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"bytes":      c.Writer.Size(),
		}
		for _, param := range []string{"tool", "task_id", "id"} {
			if v := c.Param(param); v != "" {
				fields[param] = v
			}
		}
		if email := GetEmail(c); email != "" {
			fields["email"] = email
		}
		if username, ok := GetUsername(c); ok {
			fields["admin"] = username
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("HTTP Request")
		case status >= 400:
			entry.Warn("HTTP Request")
		case strings.HasSuffix(c.FullPath(), "/events"):
			// SSE 长连接结束
			entry.Debug("HTTP Request")
		default:
			entry.Info("HTTP Request")
		}
	}
}
