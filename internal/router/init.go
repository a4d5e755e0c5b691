package router

import (
	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/container"
	handlers "github.com/oksasatya/storefront-account/internal/interface/http"
	"github.com/oksasatya/storefront-account/internal/router/modules"
)

// Services is the application layer built from the container singletons.
type Services struct {
	Auth     *application.AuthService
	Verify   *application.VerificationService
	Users    *application.UserService
	Profile  *application.ProfileService
	Orders   *application.OrderService
	Products *application.ProductService
}

func buildServices() Services {
	cfg := container.GetConfig()
	log := container.GetLogger()
	users := container.GetUserRepo()
	products := container.GetProductRepo()
	audit := container.GetAuditRepo()
	index := container.GetUserIndexer()

	return Services{
		Auth: &application.AuthService{
			Users:  users,
			JWT:    container.GetJWT(),
			Google: container.GetGoogleAuth(),
			GitHub: container.GetGitHubAuth(),
			Audit:  audit,
			Index:  index,
			Logger: log,
		},
		Verify: &application.VerificationService{
			Users:   users,
			Mailer:  container.GetCodeMailer(),
			Audit:   audit,
			Logger:  log,
			CodeTTL: cfg.CodeTTL,
		},
		Users: &application.UserService{
			Users:          users,
			Storage:        container.GetAvatarStorage(),
			Index:          index,
			Audit:          audit,
			Logger:         log,
			AvatarMaxBytes: cfg.AvatarMaxBytes,
		},
		Profile:  &application.ProfileService{Users: users, Products: products},
		Orders:   &application.OrderService{Users: users, Products: products, Orders: container.GetOrderRepo()},
		Products: &application.ProductService{Products: products},
	}
}

// InitModules builds handlers from the container and registers every module.
// Call once during startup, after the container is filled.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	log := container.GetLogger()
	svc := buildServices()

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, svc.Verify, log)))
	r.Add(modules.NewUserModule(
		handlers.NewUserHandler(svc.Users, log, cfg.AvatarMaxBytes),
		handlers.NewProfileHandler(svc.Profile, log),
		handlers.NewOrderHandler(svc.Orders, log),
	))
	r.Add(modules.NewProductModule(handlers.NewProductHandler(svc.Products, log)))
	r.Add(modules.NewDebugModule(handlers.NewHealthHandler(pingStore(), log), cfg.DebugMetricsEnabled))
}
