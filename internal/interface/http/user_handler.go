package handlers

import (
	"bufio"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/pkg/response"
)

// multipartOverhead is the slack allowed on top of the avatar limit for form boundaries and headers.
const multipartOverhead = 1 << 20

type UserHandler struct {
	Users          *application.UserService
	Logger         *logrus.Logger
	AvatarMaxBytes int64
}

func NewUserHandler(users *application.UserService, logger *logrus.Logger, avatarMaxBytes int64) *UserHandler {
	return &UserHandler{Users: users, Logger: logger, AvatarMaxBytes: avatarMaxBytes}
}

type updateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" binding:"omitempty,phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

// UpdateProfile only touches name and phone; any other field in the body is ignored.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), userID(c), application.UpdateProfileInput{Name: req.Name, Phone: req.Phone})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile updated", nil)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Users.ChangePassword(c.Request.Context(), userID(c), req.CurrentPassword, req.NewPassword, requestMeta(c)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed", nil)
}

// UploadAvatar reads the multipart field "avatar". The content type is sniffed from the bytes.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	if h.AvatarMaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.AvatarMaxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "avatar file is required", map[string]string{"avatar": "is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReaderSize(f, 512)
	head, _ := br.Peek(512)
	u, err := h.Users.UploadAvatar(c.Request.Context(), userID(c), application.AvatarUpload{
		Body:        br,
		Size:        fh.Size,
		ContentType: http.DetectContentType(head),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "avatar updated", nil)
}

// ListUsers requires RequireAdmin.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Users.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUsers(users), "users", map[string]any{"count": len(users)})
}

// SearchUsers requires RequireAdmin.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	users, err := h.Users.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUsers(users), "users", map[string]any{"count": len(users)})
}
