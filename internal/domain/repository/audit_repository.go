package repository

import (
	"context"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

type AuditRepository interface {
	Insert(ctx context.Context, e entity.AuditEntry) error
}
