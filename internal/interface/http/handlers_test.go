package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/infrastructure/memory"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
	"github.com/oksasatya/storefront-account/pkg/helpers"
	"github.com/oksasatya/storefront-account/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type capturedMailer struct {
	mu   sync.Mutex
	msgs []application.CodeMessage
}

func (m *capturedMailer) SendCode(ctx context.Context, msg application.CodeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *capturedMailer) lastCode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.msgs[len(m.msgs)-1].Code
}

type memStorage struct{ keys []string }

func (s *memStorage) Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	s.keys = append(s.keys, key)
	return "https://cdn.test/" + key, nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error { return nil }

type harness struct {
	engine *gin.Engine
	users  *memory.UserRepository
	jwt    *helpers.JWTManager
	mailer *capturedMailer
}

func newHarness() *harness {
	log := helpers.NewNopLogger()
	users := memory.NewUserRepository()
	products := memory.NewProductRepository(
		&entity.Product{ID: "p-1", ExternalID: "1", Title: "Backpack", Price: 109.95, Image: "bag.jpg"},
		&entity.Product{ID: "p-2", ExternalID: "2", Title: "T-Shirt", Price: 22.3, Image: "tee.jpg"},
	)
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	mailer := &capturedMailer{}

	authSvc := &application.AuthService{Users: users, JWT: jwt, Logger: log}
	verifySvc := &application.VerificationService{Users: users, Mailer: mailer, Logger: log, CodeTTL: 10 * time.Minute}
	userSvc := &application.UserService{Users: users, Storage: &memStorage{}, Logger: log, AvatarMaxBytes: 1 << 16}
	profileSvc := &application.ProfileService{Users: users, Products: products}
	orderSvc := &application.OrderService{Users: users, Products: products, Orders: memory.NewOrderRepository()}

	ah := NewAuthHandler(authSvc, verifySvc, log)
	uh := NewUserHandler(userSvc, log, 1<<16)
	ph := NewProfileHandler(profileSvc, log)
	oh := NewOrderHandler(orderSvc, log)
	prh := NewProductHandler(&application.ProductService{Products: products}, log)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP(nil))
	auth := middleware.Auth(jwt, users)
	api := r.Group("/api")
	api.POST("/auth/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.POST("/auth/google", ah.Google)
	api.POST("/auth/verify-email", ah.VerifyEmail)
	api.POST("/auth/request-verification", auth, ah.RequestVerification)
	api.POST("/auth/forgot-password", ah.ForgotPassword)
	api.POST("/auth/verify-reset-code", ah.VerifyResetCode)
	api.POST("/auth/reset-password", ah.ResetPassword)
	api.GET("/users/profile", auth, uh.GetProfile)
	api.PUT("/users/profile", auth, uh.UpdateProfile)
	api.POST("/users/change-password", auth, uh.ChangePassword)
	api.POST("/users/avatar", auth, uh.UploadAvatar)
	api.GET("/users/admin/users", auth, middleware.RequireAdmin(), uh.ListUsers)
	api.POST("/users/addresses", auth, ph.AddAddress)
	api.PUT("/users/addresses/:id", auth, ph.UpdateAddress)
	api.DELETE("/users/addresses/:id", auth, ph.DeleteAddress)
	api.GET("/users/wishlist", auth, ph.GetWishlist)
	api.POST("/users/wishlist", auth, ph.AddToWishlist)
	api.DELETE("/users/wishlist/:productId", auth, ph.RemoveFromWishlist)
	api.POST("/users/orders", auth, oh.Create)
	api.GET("/users/orders", auth, oh.List)
	api.GET("/products", prh.List)
	api.GET("/products/:id", prh.Get)

	return &harness{engine: r, users: users, jwt: jwt, mailer: mailer}
}

type envelope struct {
	Status  int               `json:"status"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func (h *harness) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (h *harness) signup(t *testing.T, email string) string {
	t.Helper()
	code, _ := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Alice", "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, code)
	code, env := h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	var s struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &s))
	return s.Token
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness()
	code, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Alice", "email": "Alice@Example.com", "password": "secret1"})
	assert.Equal(t, http.StatusCreated, code)
	assert.NotContains(t, string(env.Data), "secret1")
	assert.NotContains(t, string(env.Data), "password")
	assert.Empty(t, h.mailer.msgs)

	code, env = h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Alice", "email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email already registered", env.Message)

	code, env = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, code)
	var s struct {
		User  map[string]any `json:"user"`
		Token string         `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &s))
	claims, err := h.jwt.Parse(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User["id"], claims.UserID)
	assert.Equal(t, "user", claims.Role)

	code, env = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid email or password", env.Message)
}

func TestValidationErrorsCarryDetails(t *testing.T) {
	h := newHarness()
	code, env := h.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"name": "A", "email": "nope", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "email must be a valid email address", env.Message)
	assert.Equal(t, "must be at least 6 characters", env.Error["password"])

	code, env = h.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "credential is required", env.Message)
}

func TestProfileRequiresAuth(t *testing.T) {
	h := newHarness()
	code, env := h.do(t, http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, env.Message)

	tok := h.signup(t, "alice@example.com")
	code, _ = h.do(t, http.MethodGet, "/api/users/profile", tok, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = h.do(t, http.MethodPut, "/api/users/profile", tok, map[string]any{"name": "Alice L", "role": "admin", "email": "evil@example.com"})
	require.Equal(t, http.StatusOK, code)
	var u map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "Alice L", u["name"])
	assert.Equal(t, "user", u["role"])
	assert.Equal(t, "alice@example.com", u["email"])

	code, _ = h.do(t, http.MethodGet, "/api/users/admin/users", tok, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestVerificationAndResetOverHTTP(t *testing.T) {
	h := newHarness()
	tok := h.signup(t, "alice@example.com")

	code, _ := h.do(t, http.MethodPost, "/api/auth/request-verification", tok, nil)
	require.Equal(t, http.StatusOK, code)
	vc := h.mailer.lastCode()

	code, _ = h.do(t, http.MethodPost, "/api/auth/verify-email", "", map[string]string{"email": "alice@example.com", "code": vc})
	assert.Equal(t, http.StatusOK, code)
	code, env := h.do(t, http.MethodPost, "/api/auth/verify-email", "", map[string]string{"email": "alice@example.com", "code": vc})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "no code pending", env.Message)

	code, _ = h.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, code)
	rc := h.mailer.lastCode()

	code, _ = h.do(t, http.MethodPost, "/api/auth/verify-reset-code", "", map[string]string{"email": "alice@example.com", "code": rc})
	assert.Equal(t, http.StatusOK, code)

	code, env = h.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "alice@example.com", "code": rc, "newPassword": "newpass1", "confirmPassword": "different",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "passwords do not match", env.Message)

	code, _ = h.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"email": "alice@example.com", "code": rc, "newPassword": "newpass1", "confirmPassword": "newpass1",
	})
	assert.Equal(t, http.StatusOK, code)

	code, _ = h.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@example.com", "password": "newpass1"})
	assert.Equal(t, http.StatusOK, code)
}

func TestAddressesWishlistAndOrders(t *testing.T) {
	h := newHarness()
	tok := h.signup(t, "alice@example.com")

	code, env := h.do(t, http.MethodPost, "/api/users/addresses", tok, map[string]any{"street": "1 Main St", "city": "Springfield", "country": "US", "isDefault": true})
	require.Equal(t, http.StatusCreated, code)
	var addrs []addressDTO
	require.NoError(t, json.Unmarshal(env.Data, &addrs))
	require.Len(t, addrs, 1)

	code, env = h.do(t, http.MethodPost, "/api/users/addresses", tok, map[string]any{"street": "9 Office Rd", "city": "Shelbyville", "country": "US", "isDefault": true})
	require.Equal(t, http.StatusCreated, code)
	require.NoError(t, json.Unmarshal(env.Data, &addrs))
	assert.False(t, addrs[0].IsDefault)
	assert.True(t, addrs[1].IsDefault)

	code, _ = h.do(t, http.MethodPost, "/api/users/addresses", tok, map[string]any{"city": "Nowhere"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.do(t, http.MethodPut, "/api/users/addresses/missing", tok, map[string]any{"city": "X"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(t, http.MethodPost, "/api/users/wishlist", tok, map[string]string{"productId": "1"})
	require.Equal(t, http.StatusOK, code)
	code, env = h.do(t, http.MethodPost, "/api/users/wishlist", tok, map[string]string{"productId": "1"})
	require.Equal(t, http.StatusOK, code)
	var wl []wishlistDTO
	require.NoError(t, json.Unmarshal(env.Data, &wl))
	assert.Len(t, wl, 1)

	code, _ = h.do(t, http.MethodDelete, "/api/users/wishlist/2", tok, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = h.do(t, http.MethodPost, "/api/users/orders", tok, map[string]any{"items": []map[string]any{{"productId": "1", "quantity": 2}}})
	require.Equal(t, http.StatusCreated, code)
	var o orderDTO
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, 219.9, o.TotalAmount)
	assert.Equal(t, "9 Office Rd, Shelbyville, US", o.ShippingAddress)
	assert.Equal(t, "Pending", o.Status)

	code, _ = h.do(t, http.MethodPost, "/api/users/orders", tok, map[string]any{"items": []map[string]any{{"productId": "1", "quantity": 0}}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = h.do(t, http.MethodGet, "/api/users/orders", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var orders []orderDTO
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "Backpack", orders[0].Items[0].Product.Title)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func (h *harness) upload(t *testing.T, token, filename string, content []byte) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, _ = fw.Write(content)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/users/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

func TestAvatarUpload(t *testing.T) {
	h := newHarness()
	tok := h.signup(t, "alice@example.com")

	code, env := h.upload(t, tok, "me.png", pngBytes(t))
	require.Equal(t, http.StatusOK, code)
	var u userDTO
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Contains(t, u.Avatar.URL, "https://cdn.test/avatars/")
	assert.Contains(t, u.Avatar.ExternalID, ".png")

	code, env = h.upload(t, tok, "me.png", []byte("GIF89a not really a png"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "avatar must be a jpeg or png image", env.Message)
}

func TestProducts(t *testing.T) {
	h := newHarness()
	code, env := h.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, code)
	var ps []productDTO
	require.NoError(t, json.Unmarshal(env.Data, &ps))
	assert.Len(t, ps, 2)

	code, _ = h.do(t, http.MethodGet, "/api/products/2", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(t, http.MethodGet, "/api/products/404", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
