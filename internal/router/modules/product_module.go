package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/storefront-account/internal/interface/http"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
)

// ProductModule exposes the read-only catalog.
type ProductModule struct {
	Handler *handlers.ProductHandler
}

func NewProductModule(h *handlers.ProductHandler) *ProductModule {
	return &ProductModule{Handler: h}
}

func (m *ProductModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/products")
	g.Use(limit("catalog", 300, time.Minute, middleware.KeyByIP(), nil, ""))
	g.GET("", m.Handler.List)
	g.GET("/:id", m.Handler.Get)
}
