package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/pkg/response"
)

// AuthHandler serves registration, sign-in and the code-based email flows.
type AuthHandler struct {
	Auth   *application.AuthService
	Verify *application.VerificationService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, verify *application.VerificationService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Verify: verify, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// googleRequest accepts the ID token as credential (Sign-In button) or token.
type googleRequest struct {
	Credential string `json:"credential"`
	Token      string `json:"token"`
}

type githubRequest struct {
	Code string `json:"code" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type emailCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,code"`
}

type resetPasswordRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Code            string `json:"code" binding:"required,code"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type sessionResponse struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

func (h *AuthHandler) session(c *gin.Context, res *application.AuthResult, msg string) {
	response.Success(c, http.StatusOK, sessionResponse{User: toUser(res.User), Token: res.Token}, msg,
		map[string]any{"expires_at": res.ExpiresAt})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password}, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUser(u), "registration successful", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.session(c, res, "login successful")
}

func (h *AuthHandler) Google(c *gin.Context) {
	var req googleRequest
	if !bindJSON(c, &req) {
		return
	}
	credential := strings.TrimSpace(req.Credential)
	if credential == "" {
		credential = strings.TrimSpace(req.Token)
	}
	if credential == "" {
		response.Error[any](c, http.StatusBadRequest, "credential is required", map[string]string{"credential": "is required"})
		return
	}
	res, err := h.Auth.LoginWithGoogle(c.Request.Context(), credential, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.session(c, res, "login successful")
}

func (h *AuthHandler) GitHub(c *gin.Context) {
	var req githubRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Auth.LoginWithGitHub(c.Request.Context(), req.Code, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.session(c, res, "login successful")
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req emailCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Verify.VerifyEmail(c.Request.Context(), req.Email, req.Code, requestMeta(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "email verified", nil)
}

// RequestVerification requires Auth.
func (h *AuthHandler) RequestVerification(c *gin.Context) {
	if err := h.Verify.RequestEmailVerification(c.Request.Context(), userID(c), requestMeta(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "verification code sent", nil)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Verify.ForgotPassword(c.Request.Context(), req.Email, requestMeta(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "reset code sent", nil)
}

func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req emailCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Verify.VerifyResetCode(c.Request.Context(), req.Email, req.Code); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "code verified", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	err := h.Verify.ResetPassword(c.Request.Context(), application.ResetPasswordInput{
		Email:           req.Email,
		Code:            req.Code,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}, requestMeta(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password reset successful", nil)
}
