package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/container"
	"github.com/oksasatya/storefront-account/internal/infrastructure/cache"
	"github.com/oksasatya/storefront-account/internal/infrastructure/memory"
	"github.com/oksasatya/storefront-account/internal/infrastructure/mongodb"
	"github.com/oksasatya/storefront-account/internal/infrastructure/notification"
	"github.com/oksasatya/storefront-account/internal/infrastructure/oauth"
	pginfra "github.com/oksasatya/storefront-account/internal/infrastructure/postgres"
	"github.com/oksasatya/storefront-account/internal/infrastructure/search"
	"github.com/oksasatya/storefront-account/internal/infrastructure/storage"
	"github.com/oksasatya/storefront-account/internal/router"
	"github.com/oksasatya/storefront-account/pkg/helpers"
	"github.com/oksasatya/storefront-account/pkg/mailer"
	"github.com/oksasatya/storefront-account/pkg/mailer/templates"
	"github.com/oksasatya/storefront-account/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL))

	// Redis: rate limits and product cache
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	container.SetRedis(rdb)

	// Document store
	closeStore := setupStore(ctx, cfg, logger, rdb)
	defer closeStore()

	// Audit trail (Postgres)
	if cfg.AuditEnabled {
		pool, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
		container.SetAuditRepo(pginfra.NewAuditRepository(pool))
	}

	closeMail := setupMail(cfg, logger)
	defer closeMail()

	closeStorage := setupStorage(ctx, cfg, logger)
	defer closeStorage()

	setupSearch(cfg, logger)
	setupIdentityProviders(cfg)

	r := router.Build()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func setupStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger, rdb cache.Store) func() {
	if cfg.DBDriver == "memory" {
		logger.Warn("using in-memory store, data is lost on restart")
		container.SetUserRepo(memory.NewUserRepository())
		container.SetProductRepo(memory.NewProductRepository())
		container.SetOrderRepo(memory.NewOrderRepository())
		return func() {}
	}

	client, err := mongodb.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	container.SetMongo(client)
	container.SetUserRepo(mongodb.NewUserRepository(db))
	container.SetProductRepo(cache.NewProductCache(mongodb.NewProductRepository(db), rdb, cfg.ProductCacheTTL, logger))
	container.SetOrderRepo(mongodb.NewOrderRepository(db))
	return func() { disconnect(client, logger) }
}

func disconnect(client *mongo.Client, logger *logrus.Logger) {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(c); err != nil {
		logger.WithError(err).Warn("mongodb disconnect failed")
	}
}

func setupMail(cfg *config.Config, logger *logrus.Logger) func() {
	if !cfg.MailSendEnabled {
		logger.Warn("mail sending disabled")
		container.SetCodeMailer(notification.LogMailer{Logger: logger})
		return func() {}
	}
	switch strings.ToLower(cfg.MailDelivery) {
	case "direct":
		sender, err := mailer.NewSender(providerConfig(cfg))
		if err != nil {
			log.Fatalf("mail provider: %v", err)
		}
		container.SetCodeMailer(notification.NewDirectMailer(cfg, sender, templates.IPAPIResolver{}))
		return func() {}
	default:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		container.SetRabbitPub(pub)
		container.SetCodeMailer(notification.NewQueueMailer(cfg, pub))
		return pub.Close
	}
}

func providerConfig(cfg *config.Config) mailer.ProviderConfig {
	return mailer.ProviderConfig{
		Provider:             cfg.MailProvider,
		Sender:               cfg.MailSender,
		MailgunDomain:        cfg.MailgunDomain,
		MailgunAPIKey:        cfg.MailgunAPIKey,
		PostmarkServerToken:  cfg.PostmarkServerToken,
		PostmarkAccountToken: cfg.PostmarkAccountToken,
	}
}

func setupStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) func() {
	switch strings.ToLower(cfg.StorageDriver) {
	case "s3":
		if cfg.S3Bucket == "" {
			logger.Warn("S3_BUCKET not set, avatar upload disabled")
			return func() {}
		}
		s3, err := storage.NewS3Storage(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to init s3 client: %v", err)
		}
		container.SetAvatarStorage(s3)
		return func() {}
	default:
		if cfg.GCSBucket == "" {
			logger.Warn("GCS_BUCKET not set, avatar upload disabled")
			return func() {}
		}
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		container.SetAvatarStorage(storage.NewGCSStorage(client, cfg.GCSBucket))
		return func() { _ = client.Close() }
	}
}

func setupSearch(cfg *config.Config, logger *logrus.Logger) {
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
		return
	}
	if es == nil {
		return
	}
	container.SetUserIndexer(search.NewUserIndex(es, cfg.ESUsersIndex, logger))
}

func setupIdentityProviders(cfg *config.Config) {
	var google, github application.IdentityResolver
	if cfg.GoogleClientID != "" {
		google = oauth.NewGoogleVerifier(cfg.GoogleClientID)
	}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		github = oauth.NewGitHubExchanger(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubRedirectURL)
	}
	container.SetGoogleAuth(google)
	container.SetGitHubAuth(github)
}
