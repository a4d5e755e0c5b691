package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/storefront-account/internal/interface/http"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
)

type DebugModule struct {
	Health  *handlers.HealthHandler
	Metrics bool
}

func NewDebugModule(h *handlers.HealthHandler, metrics bool) *DebugModule {
	return &DebugModule{Health: h, Metrics: metrics}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Health)
	if !m.Metrics {
		return
	}
	// expvar, rate-limited per IP; private networks bypass
	rl := limit("debug", 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(), "")
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
