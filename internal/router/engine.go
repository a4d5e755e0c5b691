package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/container"
	"github.com/oksasatya/storefront-account/internal/infrastructure/mongodb"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
)

// NewEngine returns a gin engine with the global middleware chain.
func NewEngine(cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies())
	if err != nil {
		logger.WithError(err).Warn("ignoring TRUSTED_PROXIES, forwarding headers will not be trusted")
		trusted = nil
	}
	// gin trusts every peer by default; ClientIP must agree with RealIP
	proxies := make([]string, 0, len(trusted))
	for _, n := range trusted {
		proxies = append(proxies, n.String())
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		logger.WithError(err).Warn("failed to set trusted proxies")
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(trusted))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}
	r.Use(middleware.Recovery(logger))
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	return r
}

// Build assembles the engine, registry and modules from the container.
func Build() *gin.Engine {
	r := NewEngine(container.GetConfig(), container.GetLogger())
	reg := NewRegistry(r)
	InitModules(reg)
	reg.RegisterAll()
	return r
}

func pingStore() func(context.Context) error {
	client := container.GetMongo()
	if client == nil {
		return nil
	}
	return mongodb.Healthcheck(client)
}
