package router

import "github.com/gin-gonic/gin"

// Module mounts one feature area (auth, account, catalog, ops) under /api.
type Module interface {
	Register(rg *gin.RouterGroup)
}
