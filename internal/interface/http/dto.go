package handlers

import (
	"time"

	"github.com/oksasatya/storefront-account/internal/application"
	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

type avatarDTO struct {
	URL        string `json:"url"`
	ExternalID string `json:"externalId,omitempty"`
}

type addressDTO struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

type wishlistDTO struct {
	ProductID string    `json:"productId"`
	CatalogID string    `json:"catalogId,omitempty"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	AddedAt   time.Time `json:"addedAt"`
}

// userDTO never carries the password hash or pending codes.
type userDTO struct {
	ID         string        `json:"id"`
	Email      string        `json:"email"`
	Name       string        `json:"name"`
	Phone      string        `json:"phone,omitempty"`
	Avatar     avatarDTO     `json:"avatar"`
	AuthType   string        `json:"authType"`
	Role       string        `json:"role"`
	IsVerified bool          `json:"isVerified"`
	Addresses  []addressDTO  `json:"addresses"`
	Wishlist   []wishlistDTO `json:"wishlist"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type productDTO struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image"`
}

type orderItemDTO struct {
	ProductID string      `json:"productId"`
	Quantity  int         `json:"quantity"`
	Price     float64     `json:"price"`
	Product   *productDTO `json:"product,omitempty"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Items           []orderItemDTO `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	Status          string         `json:"status"`
	ShippingAddress string         `json:"shippingAddress"`
	OrderDate       time.Time      `json:"orderDate"`
}

func toAddresses(in []entity.Address) []addressDTO {
	out := make([]addressDTO, 0, len(in))
	for _, a := range in {
		out = append(out, addressDTO{
			ID:        a.ID,
			Street:    a.Street,
			City:      a.City,
			State:     a.State,
			ZipCode:   a.ZipCode,
			Country:   a.Country,
			IsDefault: a.IsDefault,
		})
	}
	return out
}

func toWishlist(in []entity.WishlistEntry) []wishlistDTO {
	out := make([]wishlistDTO, 0, len(in))
	for _, w := range in {
		out = append(out, wishlistDTO{ProductID: w.ProductID, CatalogID: w.CatalogID, Name: w.Name, Price: w.Price, Image: w.Image, AddedAt: w.AddedAt})
	}
	return out
}

func toUser(u *entity.User) userDTO {
	return userDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Avatar:     avatarDTO{URL: u.Avatar.URL, ExternalID: u.Avatar.ExternalID},
		AuthType:   string(u.Identity.Type),
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		Addresses:  toAddresses(u.Addresses),
		Wishlist:   toWishlist(u.Wishlist),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func toUsers(in []*entity.User) []userDTO {
	out := make([]userDTO, 0, len(in))
	for _, u := range in {
		out = append(out, toUser(u))
	}
	return out
}

func toProduct(p *entity.Product) *productDTO {
	if p == nil {
		return nil
	}
	return &productDTO{
		ID:          p.ID,
		ProductID:   p.ExternalID,
		Title:       p.Title,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		Image:       p.Image,
	}
}

func toOrder(v *application.OrderView) orderDTO {
	o := v.Order
	items := make([]orderItemDTO, 0, len(v.Lines))
	for _, l := range v.Lines {
		items = append(items, orderItemDTO{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price, Product: toProduct(l.Product)})
	}
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		OrderDate:       o.OrderDate,
	}
}
