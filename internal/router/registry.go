package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/storefront-account/pkg/response"
)

// Registry collects the /api middleware chain and feature modules before anything is mounted.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", nil)
	})
	engine.NoMethod(func(c *gin.Context) {
		response.Error[any](c, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use appends middleware that runs on every /api route. It must be called before RegisterAll.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod ...Module) {
	r.modules = append(r.modules, mod...)
}

// RegisterAll mounts every module on /api in the order they were added.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
