package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/pkg/response"
)

// ProfileHandler serves the address book and wishlist.
type ProfileHandler struct {
	Profile *application.ProfileService
	Logger  *logrus.Logger
}

func NewProfileHandler(profile *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Profile: profile, Logger: logger}
}

type createAddressRequest struct {
	Street    string `json:"street" binding:"required,max=200"`
	City      string `json:"city" binding:"required,max=100"`
	State     string `json:"state" binding:"max=100"`
	ZipCode   string `json:"zipCode" binding:"max=20"`
	Country   string `json:"country" binding:"required,max=100"`
	IsDefault bool   `json:"isDefault"`
}

type updateAddressRequest struct {
	Street    *string `json:"street" binding:"omitempty,min=1,max=200"`
	City      *string `json:"city" binding:"omitempty,min=1,max=100"`
	State     *string `json:"state" binding:"omitempty,max=100"`
	ZipCode   *string `json:"zipCode" binding:"omitempty,max=20"`
	Country   *string `json:"country" binding:"omitempty,min=1,max=100"`
	IsDefault *bool   `json:"isDefault"`
}

type wishlistRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

func (h *ProfileHandler) AddAddress(c *gin.Context) {
	var req createAddressRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.Profile.AddAddress(c.Request.Context(), userID(c), application.AddressInput{
		Street:    &req.Street,
		City:      &req.City,
		State:     &req.State,
		ZipCode:   &req.ZipCode,
		Country:   &req.Country,
		IsDefault: &req.IsDefault,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toAddresses(list), "address added", nil)
}

func (h *ProfileHandler) UpdateAddress(c *gin.Context) {
	var req updateAddressRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.Profile.UpdateAddress(c.Request.Context(), userID(c), c.Param("id"), application.AddressInput{
		Street:    req.Street,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toAddresses(list), "address updated", nil)
}

func (h *ProfileHandler) DeleteAddress(c *gin.Context) {
	list, err := h.Profile.DeleteAddress(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toAddresses(list), "address deleted", nil)
}

func (h *ProfileHandler) GetWishlist(c *gin.Context) {
	list, err := h.Profile.GetWishlist(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toWishlist(list), "wishlist", nil)
}

// AddToWishlist takes the product from the path or from {productId}.
func (h *ProfileHandler) AddToWishlist(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("productId"))
	if ref == "" {
		var req wishlistRequest
		if !bindJSON(c, &req) {
			return
		}
		ref = strings.TrimSpace(req.ProductID)
	}
	list, err := h.Profile.AddToWishlist(c.Request.Context(), userID(c), ref)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toWishlist(list), "wishlist updated", nil)
}

func (h *ProfileHandler) RemoveFromWishlist(c *gin.Context) {
	list, err := h.Profile.RemoveFromWishlist(c.Request.Context(), userID(c), c.Param("productId"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toWishlist(list), "wishlist updated", nil)
}
