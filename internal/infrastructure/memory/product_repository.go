package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products []*entity.Product
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(seed ...*entity.Product) *ProductRepository {
	r := &ProductRepository{}
	for _, p := range seed {
		_ = r.Upsert(context.Background(), p)
	}
	return r
}

func (r *ProductRepository) FindByRef(ctx context.Context, ref string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.Matches(ref) {
			c := *p
			return &c, nil
		}
	}
	return nil, entity.ErrProductNotFound
}

func (r *ProductRepository) FindByRefs(ctx context.Context, refs []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(refs))
	for _, ref := range refs {
		if p, err := r.FindByRef(ctx, ref); err == nil {
			out[ref] = p
		}
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		c := *p
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExternalID < out[j].ExternalID })
	return out, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.ExternalID == p.ExternalID {
			p.ID = existing.ID
			c := *p
			r.products[i] = &c
			return nil
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	c := *p
	r.products = append(r.products, &c)
	return nil
}
