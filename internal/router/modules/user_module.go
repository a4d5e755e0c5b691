package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/storefront-account/internal/interface/http"
	"github.com/oksasatya/storefront-account/internal/interface/middleware"
)

// UserModule wires the signed-in account routes under /api/users.
// Admin listings additionally require the admin role.
type UserModule struct {
	Users   *handlers.UserHandler
	Profile *handlers.ProfileHandler
	Orders  *handlers.OrderHandler
}

func NewUserModule(users *handlers.UserHandler, profile *handlers.ProfileHandler, orders *handlers.OrderHandler) *UserModule {
	return &UserModule{Users: users, Profile: profile, Orders: orders}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/users")
	g.Use(authRequired())
	g.Use(limit("account", 120, time.Minute, middleware.KeyByUserID(), nil, ""))
	{
		g.GET("/profile", m.Users.GetProfile)
		g.PUT("/profile", m.Users.UpdateProfile)
		g.POST("/change-password", m.Users.ChangePassword)
		g.POST("/avatar", limit("avatar", 10, time.Minute, middleware.KeyByUserID(), nil, ""), m.Users.UploadAvatar)

		g.POST("/addresses", m.Profile.AddAddress)
		g.PUT("/addresses/:id", m.Profile.UpdateAddress)
		g.DELETE("/addresses/:id", m.Profile.DeleteAddress)

		g.GET("/wishlist", m.Profile.GetWishlist)
		g.POST("/wishlist", m.Profile.AddToWishlist)
		g.POST("/wishlist/:productId", m.Profile.AddToWishlist)
		g.DELETE("/wishlist/:productId", m.Profile.RemoveFromWishlist)

		g.POST("/orders", m.Orders.Create)
		g.GET("/orders", m.Orders.List)
	}

	admin := g.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", m.Users.ListUsers)
		admin.GET("/users/search", m.Users.SearchUsers)
	}
}
