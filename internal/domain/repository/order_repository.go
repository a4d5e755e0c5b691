package repository

import (
	"context"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

type OrderRepository interface {
	Create(ctx context.Context, o *entity.Order) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]*entity.Order, error)
}
