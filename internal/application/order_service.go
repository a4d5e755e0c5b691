package application

import (
	"context"
	"strings"
	"time"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
)

type OrderService struct {
	Users    repository.UserRepository
	Products repository.ProductRepository
	Orders   repository.OrderRepository
	Now      func() time.Time
}

type OrderItemInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	Items           []OrderItemInput
	ShippingAddress string
}

// OrderLine is an order item with the live product attached, nil when the product is gone.
type OrderLine struct {
	entity.OrderItem
	Product *entity.Product
}

type OrderView struct {
	Order *entity.Order
	Lines []OrderLine
}

// FormatAddress renders an address as a single shipping line.
func FormatAddress(a entity.Address) string {
	var parts []string
	for _, p := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Create prices every item from the catalog and computes the total. The shipping address
// falls back to the user's default address.
func (s *OrderService) Create(ctx context.Context, userID string, in CreateOrderInput) (*OrderView, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	refs := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		refs = append(refs, it.ProductID)
	}
	shipping := strings.TrimSpace(in.ShippingAddress)
	if shipping == "" {
		u, err := s.Users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if a, ok := u.DefaultAddress(); ok {
			shipping = FormatAddress(a)
		}
		if shipping == "" {
			return nil, ErrShippingAddressRequired
		}
	}

	products, err := s.Products.FindByRefs(ctx, refs)
	if err != nil {
		return nil, err
	}
	o := &entity.Order{
		UserID:          userID,
		Status:          entity.OrderPending,
		ShippingAddress: shipping,
		OrderDate:       clock(s.Now).UTC(),
	}
	view := &OrderView{Order: o}
	for _, it := range in.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, entity.ErrProductNotFound
		}
		item := entity.OrderItem{ProductID: p.ID, Quantity: it.Quantity, Price: p.Price}
		o.Items = append(o.Items, item)
		view.Lines = append(view.Lines, OrderLine{OrderItem: item, Product: p})
	}
	o.TotalAmount = o.Total()
	if err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	return view, nil
}

// List returns the user's orders newest first with products attached.
func (s *OrderService) List(ctx context.Context, userID string) ([]*OrderView, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var refs []string
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				refs = append(refs, it.ProductID)
			}
		}
	}
	products, err := s.Products.FindByRefs(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		v := &OrderView{Order: o}
		for _, it := range o.Items {
			v.Lines = append(v.Lines, OrderLine{OrderItem: it, Product: products[it.ProductID]})
		}
		out = append(out, v)
	}
	return out, nil
}
