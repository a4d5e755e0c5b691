package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/pkg/helpers"
	"github.com/oksasatya/storefront-account/pkg/response"
)

// Gin context keys set by Auth.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
	CtxUser     = "user"
)

// UserLookup resolves the token subject. Satisfied by repository.UserRepository.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Auth requires a valid bearer token whose subject still exists.
// It sets userID, userRole, and user in the Gin context on success.
func Auth(jwt *helpers.JWTManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "user no longer exists", nil)
			return
		}
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUserRole, string(u.Role))
		c.Set(CtxUser, u)
		c.Next()
	}
}

// RequireAdmin must run after Auth. The role comes from the stored user, not the token.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		if !u.IsAdmin() {
			response.Error[any](c, http.StatusForbidden, "admin access required", nil)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
