package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/pkg/response"
)

type OrderHandler struct {
	Orders *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(orders *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Orders: orders, Logger: logger}
}

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type createOrderRequest struct {
	Items           []orderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string             `json:"shippingAddress" binding:"max=500"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	in := application.CreateOrderInput{ShippingAddress: req.ShippingAddress}
	for _, it := range req.Items {
		in.Items = append(in.Items, application.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	view, err := h.Orders.Create(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toOrder(view), "order created", nil)
}

func (h *OrderHandler) List(c *gin.Context) {
	views, err := h.Orders.List(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]orderDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toOrder(v))
	}
	response.Success(c, http.StatusOK, out, "orders", map[string]any{"count": len(out)})
}
