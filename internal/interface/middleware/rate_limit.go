package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/pkg/ratelimit"
	"github.com/oksasatya/storefront-account/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request. The store adds its own prefix.
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserID)
		if uid == "" {
			return "user:anon:ip:" + ipFromCtx(c)
		}
		return "user:" + uid
	}
}

// KeyLoginByIP is shared by every login route so they draw from one counter per address.
func KeyLoginByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "login:ip:" + ipFromCtx(c)
	}
}

type AllowFunc func(*gin.Context) bool // return true to bypass the limit

type limitOptions struct {
	failClosed bool
}

type LimitOption func(*limitOptions)

// FailClosed answers 503 instead of letting the request through when the store is unreachable.
func FailClosed() LimitOption {
	return func(o *limitOptions) { o.failClosed = true }
}

// RateLimit counts every request against keyFn's key and answers 429 once the window is spent.
// Limiter errors fail open unless FailClosed is given. OPTIONS requests are never counted.
func RateLimit(l *ratelimit.Limiter, keyFn KeyFunc, allow AllowFunc, message string, log *logrus.Logger, opts ...LimitOption) gin.HandlerFunc {
	if l == nil || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if message == "" {
		message = "rate limit exceeded"
	}
	var o limitOptions
	for _, opt := range opts {
		opt(&o)
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		key := keyFn(c)
		res, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			if o.failClosed {
				if log != nil {
					log.WithError(err).WithField("key", key).Error("rate limiter unavailable, rejecting request")
				}
				c.Header("Retry-After", "30")
				response.Error[any](c, http.StatusServiceUnavailable, "service temporarily unavailable, please try again later", nil)
				return
			}
			if log != nil {
				log.WithError(err).WithField("key", key).Warn("rate limiter unavailable, allowing request")
			}
			c.Next()
			return
		}

		resetSec := int(math.Ceil(res.ResetAfter.Seconds()))
		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(resetSec))
			response.Error[any](c, http.StatusTooManyRequests, message, nil)
			return
		}
		c.Next()
	}
}
