package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders []*entity.Order
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository() *OrderRepository { return &OrderRepository{} }

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.NewString()
	r.orders = append(r.orders, cloneOrder(o))
	return nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}
