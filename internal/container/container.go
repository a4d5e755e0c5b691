package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/internal/infrastructure/memory"
	"github.com/oksasatya/storefront-account/internal/infrastructure/notification"
	"github.com/oksasatya/storefront-account/internal/infrastructure/storage"
	"github.com/oksasatya/storefront-account/pkg/helpers"
	"github.com/oksasatya/storefront-account/pkg/ratelimit"
)

// app-level container to share constructed components across packages.
// Router auto-wires modules from these singletons; cmd/main.go fills them.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	mongoClient *mongo.Client
	jwtManager  *helpers.JWTManager
	rabbitPub   *helpers.RabbitPublisher
	limitStore  ratelimit.Store

	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	auditRepo   repository.AuditRepository

	codeMailer    application.CodeMailer
	avatarStorage application.AvatarStorage
	userIndexer   application.UserIndexer
	googleAuth    application.IdentityResolver
	githubAuth    application.IdentityResolver
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}

func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return logger
}

func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetMongo(c *mongo.Client)     { mongoClient = c }
func GetMongo() *mongo.Client      { return mongoClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }

func GetJWT() *helpers.JWTManager {
	if jwtManager == nil {
		c := GetConfig()
		jwtManager = helpers.NewJWTManager(c.JWTSecret, c.JWTTTL)
	}
	return jwtManager
}

// SetLimitStore overrides the rate-limit backend. By default Redis is used when set, otherwise process memory.
func SetLimitStore(s ratelimit.Store) { limitStore = s }
func GetLimitStore() ratelimit.Store {
	if limitStore == nil {
		if redisClient != nil {
			limitStore = ratelimit.NewRedisStore(redisClient, "rl:")
		} else {
			limitStore = ratelimit.NewMemoryStore()
		}
	}
	return limitStore
}

// Repositories fall back to the in-memory implementations when nothing was set.

func SetUserRepo(r repository.UserRepository) { userRepo = r }
func GetUserRepo() repository.UserRepository {
	if userRepo == nil {
		userRepo = memory.NewUserRepository()
	}
	return userRepo
}

func SetProductRepo(r repository.ProductRepository) { productRepo = r }
func GetProductRepo() repository.ProductRepository {
	if productRepo == nil {
		productRepo = memory.NewProductRepository()
	}
	return productRepo
}

func SetOrderRepo(r repository.OrderRepository) { orderRepo = r }
func GetOrderRepo() repository.OrderRepository {
	if orderRepo == nil {
		orderRepo = memory.NewOrderRepository()
	}
	return orderRepo
}

func SetAuditRepo(r repository.AuditRepository) { auditRepo = r }
func GetAuditRepo() repository.AuditRepository { return auditRepo }

// GetCodeMailer defaults to dropping mail with a log line.
func SetCodeMailer(m application.CodeMailer) { codeMailer = m }
func GetCodeMailer() application.CodeMailer {
	if codeMailer == nil {
		codeMailer = notification.LogMailer{Logger: GetLogger()}
	}
	return codeMailer
}

// GetAvatarStorage defaults to a store that rejects uploads.
func SetAvatarStorage(s application.AvatarStorage) { avatarStorage = s }
func GetAvatarStorage() application.AvatarStorage {
	if avatarStorage == nil {
		avatarStorage = storage.Unconfigured{}
	}
	return avatarStorage
}

func SetUserIndexer(i application.UserIndexer) { userIndexer = i }
func GetUserIndexer() application.UserIndexer  { return userIndexer }

func SetGoogleAuth(r application.IdentityResolver) { googleAuth = r }
func GetGoogleAuth() application.IdentityResolver  { return googleAuth }
func SetGitHubAuth(r application.IdentityResolver) { githubAuth = r }
func GetGitHubAuth() application.IdentityResolver  { return githubAuth }

// Reset clears every singleton. Tests use it between router builds.
func Reset() {
	cfg, logger, pgPool, redisClient, mongoClient = nil, nil, nil, nil, nil
	jwtManager, rabbitPub, limitStore = nil, nil, nil
	userRepo, productRepo, orderRepo, auditRepo = nil, nil, nil, nil
	codeMailer, avatarStorage, userIndexer, googleAuth, githubAuth = nil, nil, nil, nil, nil
}
