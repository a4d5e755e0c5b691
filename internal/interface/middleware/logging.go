package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/pkg/response"
)

// AccessLog writes one structured line per request.
func AccessLog(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"request_id": c.GetString(CtxRequestID),
			"method":     c.Request.Method,
			"path":       normalizePath(c),
			"status":     status,
			"latency":    time.Since(start).String(),
			"ip":         ipFromCtx(c),
		})
		if uid := c.GetString(CtxUserID); uid != "" {
			entry = entry.WithField("user_id", uid)
		}
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// Recovery logs a panic with the request id and answers a generic 500.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"request_id": c.GetString(CtxRequestID),
					"path":       c.Request.URL.Path,
					"panic":      r,
				}).Error("panic recovered")
				response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
			}
		}()
		c.Next()
	}
}
