package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
	"github.com/oksasatya/storefront-account/pkg/apperror"
	"github.com/oksasatya/storefront-account/pkg/response"
	"github.com/oksasatya/storefront-account/pkg/validation"
)

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

func requestMeta(c *gin.Context) application.RequestMeta {
	return application.RequestMeta{IP: clientIP(c), UserAgent: c.Request.UserAgent()}
}

func userID(c *gin.Context) string { return c.GetString(middleware.CtxUserID) }

// bindJSON writes a 400 with per-field details and returns false when req does not bind.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		details := validation.ToDetails(err)
		response.Error[any](c, http.StatusBadRequest, validation.FirstMessage(details), details)
		return false
	}
	return true
}

// writeError maps err onto the envelope. Server-side failures are logged with their cause.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	if status := apperror.HTTPStatus(err); status >= http.StatusInternalServerError && log != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
			"user_id":    userID(c),
		}).Error("request failed")
	}
	response.Fail(c, err)
}
