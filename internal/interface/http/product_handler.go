package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/pkg/response"
)

type ProductHandler struct {
	Products *application.ProductService
	Logger   *logrus.Logger
}

func NewProductHandler(products *application.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{Products: products, Logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]*productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	response.Success(c, http.StatusOK, out, "products", map[string]any{"count": len(out)})
}

// Get accepts the store id or the catalog id.
func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toProduct(p), "product", nil)
}
