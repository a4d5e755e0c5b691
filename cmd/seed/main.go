package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/config"
	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/internal/infrastructure/mongodb"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

const catalogURL = "https://fakestoreapi.com/products"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	n, err := seedProducts(ctx, http.DefaultClient, catalogURL, mongodb.NewProductRepository(db))
	if err != nil {
		log.Fatalf("failed to seed products: %v", err)
	}
	logger.Infof("seeded %d products", n)

	email, password := os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warn("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set, skipping admin")
		return
	}
	u, err := seedAdmin(ctx, mongodb.NewUserRepository(db), email, password)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email}).Info("seeded admin")
}

type catalogItem struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Price       float64     `json:"price"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Image       string      `json:"image"`
}

func fetchCatalog(ctx context.Context, client *http.Client, url string) ([]catalogItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned %s", resp.Status)
	}
	var items []catalogItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return items, nil
}

func seedProducts(ctx context.Context, client *http.Client, url string, repo repository.ProductRepository) (int, error) {
	items, err := fetchCatalog(ctx, client, url)
	if err != nil {
		return 0, err
	}
	for _, it := range items {
		if _, err := strconv.Atoi(it.ID.String()); err != nil {
			return 0, fmt.Errorf("catalog item with bad id %q", it.ID)
		}
		p := &entity.Product{
			ExternalID:  it.ID.String(),
			Title:       it.Title,
			Price:       it.Price,
			Category:    it.Category,
			Description: it.Description,
			Image:       it.Image,
		}
		if err := repo.Upsert(ctx, p); err != nil {
			return 0, fmt.Errorf("upsert product %s: %w", p.ExternalID, err)
		}
	}
	return len(items), nil
}

// seedAdmin creates a verified local admin, or promotes and resets the password of an existing one.
func seedAdmin(ctx context.Context, users repository.UserRepository, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	existing, err := users.GetByEmailWithSecrets(ctx, email)
	switch {
	case errors.Is(err, entity.ErrUserNotFound):
		u := &entity.User{
			Email:      email,
			Name:       "Administrator",
			Identity:   entity.LocalIdentity(hash),
			Role:       entity.RoleAdmin,
			IsVerified: true,
		}
		if err := users.Create(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	case err != nil:
		return nil, err
	}
	existing.Role = entity.RoleAdmin
	existing.IsVerified = true
	if existing.Identity.IsLocal() {
		existing.Identity.PasswordHash = hash
	}
	if err := users.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
