package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/storefront-account/internal/container"
	handlers "github.com/oksasatya/storefront-account/internal/interface/http"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
)

// AuthModule serves the sign-in and code flows under /api/auth, and the legacy client
// paths under /api/users. Both login paths draw from one counter per IP, and login is refused
// while that counter's store is unreachable.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	cfg := container.GetConfig()
	loginLimiter := limit("", cfg.LoginRateLimitMax, cfg.LoginRateLimitWindow, middleware.KeyLoginByIP(), nil,
		"too many login attempts, please try again later", middleware.FailClosed())
	codeLimiter := limit("code", 30, time.Minute, middleware.KeyByIPAndPath(), nil, "")
	sendLimiter := limit("send", 5, time.Minute, middleware.KeyByIPAndPath(), nil, "")
	auth := authRequired()

	for _, prefix := range []string{"/auth", "/users"} {
		g := rg.Group(prefix)
		g.POST("/register", m.Handler.Register)
		g.POST("/login", loginLimiter, m.Handler.Login)
		g.POST("/verify-email", codeLimiter, m.Handler.VerifyEmail)
		g.POST("/request-verification", auth, limit("verify", 5, time.Minute, middleware.KeyByUserID(), nil, ""), m.Handler.RequestVerification)
		g.POST("/forgot-password", sendLimiter, m.Handler.ForgotPassword)
		g.POST("/verify-reset-code", codeLimiter, m.Handler.VerifyResetCode)
		g.POST("/reset-password", codeLimiter, m.Handler.ResetPassword)
	}
	rg.POST("/auth/google", m.Handler.Google)
	rg.POST("/auth/github", m.Handler.GitHub)
}
