package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/storefront-account/internal/container"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
	"github.com/oksasatya/storefront-account/pkg/ratelimit"
)

// limit builds a rate-limit middleware on the shared store. Keys are namespaced by scope so
// limiters with different caps never share a counter. A bad max/window disables it.
func limit(scope string, max int, window time.Duration, keyFn middleware.KeyFunc, allow middleware.AllowFunc, message string, opts ...middleware.LimitOption) gin.HandlerFunc {
	log := container.GetLogger()
	if scope != "" {
		inner := keyFn
		keyFn = func(c *gin.Context) string { return scope + ":" + inner(c) }
	}
	l, err := ratelimit.New(container.GetLimitStore(), max, window)
	if err != nil {
		log.WithError(err).Warn("rate limit disabled")
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(l, keyFn, allow, message, log, opts...)
}

func authRequired() gin.HandlerFunc {
	return middleware.Auth(container.GetJWT(), container.GetUserRepo())
}
