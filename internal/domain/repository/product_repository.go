package repository

import (
	"context"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

type ProductRepository interface {
	// FindByRef accepts either the store id or the catalog id.
	FindByRef(ctx context.Context, ref string) (*entity.Product, error)
	FindByRefs(ctx context.Context, refs []string) (map[string]*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	// Upsert matches on ExternalID.
	Upsert(ctx context.Context, p *entity.Product) error
}
