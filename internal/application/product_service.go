package application

import (
	"context"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type ProductService struct {
	Products repository.ProductRepository
}

func (s *ProductService) List(ctx context.Context) ([]*entity.Product, error) {
	return s.Products.List(ctx)
}

// Get accepts a store or catalog product id.
func (s *ProductService) Get(ctx context.Context, ref string) (*entity.Product, error) {
	return s.Products.FindByRef(ctx, ref)
}
