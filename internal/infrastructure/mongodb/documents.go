package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
)

type avatarDoc struct {
	URL      string `bson:"url"`
	PublicID string `bson:"publicId,omitempty"`
}

type addressDoc struct {
	ID        bson.ObjectID `bson:"_id"`
	Street    string        `bson:"street"`
	City      string        `bson:"city"`
	State     string        `bson:"state"`
	ZipCode   string        `bson:"zipCode"`
	Country   string        `bson:"country"`
	IsDefault bool          `bson:"isDefault"`
}

type wishDoc struct {
	ProductID string    `bson:"productId"`
	CatalogID string    `bson:"catalogId,omitempty"`
	Name      string    `bson:"name"`
	Price     float64   `bson:"price"`
	Image     string    `bson:"image"`
	AddedAt   time.Time `bson:"addedAt"`
}

type userDoc struct {
	ID                       bson.ObjectID `bson:"_id,omitempty"`
	Email                    string        `bson:"email"`
	Password                 string        `bson:"password,omitempty"`
	Name                     string        `bson:"name"`
	Phone                    string        `bson:"phone,omitempty"`
	Avatar                   avatarDoc     `bson:"avatar"`
	AuthType                 string        `bson:"authType"`
	Role                     string        `bson:"role"`
	IsVerified               bool          `bson:"isVerified"`
	VerificationCode         string        `bson:"verificationCode,omitempty"`
	VerificationCodeExpires  *time.Time    `bson:"verificationCodeExpires,omitempty"`
	ResetPasswordCode        string        `bson:"resetPasswordCode,omitempty"`
	ResetPasswordCodeExpires *time.Time    `bson:"resetPasswordCodeExpires,omitempty"`
	GoogleID                 string        `bson:"googleId,omitempty"`
	GitHubID                 string        `bson:"githubId,omitempty"`
	Addresses                []addressDoc  `bson:"addresses"`
	Wishlist                 []wishDoc     `bson:"wishlist"`
	CreatedAt                time.Time     `bson:"createdAt"`
	UpdatedAt                time.Time     `bson:"updatedAt"`
}

// secretFields are excluded from every sanitized read.
var secretFields = bson.M{
	"password":                 0,
	"verificationCode":         0,
	"verificationCodeExpires":  0,
	"resetPasswordCode":        0,
	"resetPasswordCodeExpires": 0,
}

// codeFields maps a purpose to its code and expiry field names.
func codeFields(p entity.CodePurpose) (code, expires string) {
	if p == entity.PurposePasswordReset {
		return "resetPasswordCode", "resetPasswordCodeExpires"
	}
	return "verificationCode", "verificationCodeExpires"
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toAddressDoc(a entity.Address) addressDoc {
	oid, err := bson.ObjectIDFromHex(a.ID)
	if err != nil {
		oid = bson.NewObjectID()
	}
	return addressDoc{
		ID:        oid,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
		IsDefault: a.IsDefault,
	}
}

func fromAddressDocs(in []addressDoc) []entity.Address {
	out := make([]entity.Address, 0, len(in))
	for _, a := range in {
		out = append(out, entity.Address{
			ID:        a.ID.Hex(),
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

func toWishDoc(w entity.WishlistEntry) wishDoc {
	return wishDoc{ProductID: w.ProductID, CatalogID: w.CatalogID, Name: w.Name, Price: w.Price, Image: w.Image, AddedAt: w.AddedAt}
}

func fromWishDocs(in []wishDoc) []entity.WishlistEntry {
	out := make([]entity.WishlistEntry, 0, len(in))
	for _, w := range in {
		out = append(out, entity.WishlistEntry{
			ProductID: w.ProductID,
			CatalogID: w.CatalogID,
			Name:      w.Name,
			Price:     w.Price,
			Image:     w.Image,
			AddedAt:   w.AddedAt,
		})
	}
	return out
}

func toUserDoc(u *entity.User) (userDoc, error) {
	d := userDoc{
		Email:                    u.Email,
		Password:                 u.Identity.PasswordHash,
		Name:                     u.Name,
		Phone:                    u.Phone,
		Avatar:                   avatarDoc{URL: u.Avatar.URL, PublicID: u.Avatar.ExternalID},
		AuthType:                 string(u.Identity.Type),
		Role:                     string(u.Role),
		IsVerified:               u.IsVerified,
		VerificationCode:         u.VerificationCode.Code,
		VerificationCodeExpires:  timePtr(u.VerificationCode.ExpiresAt),
		ResetPasswordCode:        u.ResetCode.Code,
		ResetPasswordCodeExpires: timePtr(u.ResetCode.ExpiresAt),
		Addresses:                make([]addressDoc, 0, len(u.Addresses)),
		Wishlist:                 make([]wishDoc, 0, len(u.Wishlist)),
		CreatedAt:                u.CreatedAt,
		UpdatedAt:                u.UpdatedAt,
	}
	if u.ID != "" {
		oid, err := bson.ObjectIDFromHex(u.ID)
		if err != nil {
			return userDoc{}, errInvalidObjectIDHex
		}
		d.ID = oid
	}
	switch u.Identity.Type {
	case entity.AuthGoogle:
		d.GoogleID = u.Identity.ExternalID
	case entity.AuthGitHub:
		d.GitHubID = u.Identity.ExternalID
	}
	for _, a := range u.Addresses {
		d.Addresses = append(d.Addresses, toAddressDoc(a))
	}
	for _, w := range u.Wishlist {
		d.Wishlist = append(d.Wishlist, toWishDoc(w))
	}
	return d, nil
}

func (d userDoc) toEntity() *entity.User {
	u := &entity.User{
		ID:         d.ID.Hex(),
		Email:      d.Email,
		Name:       d.Name,
		Phone:      d.Phone,
		Avatar:     entity.Avatar{URL: d.Avatar.URL, ExternalID: d.Avatar.PublicID},
		Role:       entity.Role(d.Role),
		IsVerified: d.IsVerified,
		Addresses:  fromAddressDocs(d.Addresses),
		Wishlist:   fromWishDocs(d.Wishlist),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	switch entity.AuthType(d.AuthType) {
	case entity.AuthGoogle:
		u.Identity = entity.GoogleIdentity(d.GoogleID)
	case entity.AuthGitHub:
		u.Identity = entity.GitHubIdentity(d.GitHubID)
	default:
		u.Identity = entity.LocalIdentity(d.Password)
	}
	if d.VerificationCode != "" && d.VerificationCodeExpires != nil {
		u.VerificationCode = entity.OneTimeCode{Code: d.VerificationCode, ExpiresAt: *d.VerificationCodeExpires}
	}
	if d.ResetPasswordCode != "" && d.ResetPasswordCodeExpires != nil {
		u.ResetCode = entity.OneTimeCode{Code: d.ResetPasswordCode, ExpiresAt: *d.ResetPasswordCodeExpires}
	}
	return u
}

type productDoc struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	ProductID   string        `bson:"productId"`
	Title       string        `bson:"title"`
	Price       float64       `bson:"price"`
	Category    string        `bson:"category"`
	Description string        `bson:"description"`
	Image       string        `bson:"image"`
}

func (d productDoc) toEntity() *entity.Product {
	return &entity.Product{
		ID:          d.ID.Hex(),
		ExternalID:  d.ProductID,
		Title:       d.Title,
		Price:       d.Price,
		Category:    d.Category,
		Description: d.Description,
		Image:       d.Image,
	}
}

type orderItemDoc struct {
	ProductID string  `bson:"productId"`
	Quantity  int     `bson:"quantity"`
	Price     float64 `bson:"price"`
}

type orderDoc struct {
	ID              bson.ObjectID  `bson:"_id,omitempty"`
	UserID          bson.ObjectID  `bson:"userId"`
	Products        []orderItemDoc `bson:"products"`
	TotalAmount     float64        `bson:"totalAmount"`
	Status          string         `bson:"status"`
	ShippingAddress string         `bson:"shippingAddress"`
	OrderDate       time.Time      `bson:"orderDate"`
}

func (d orderDoc) toEntity() *entity.Order {
	o := &entity.Order{
		ID:              d.ID.Hex(),
		UserID:          d.UserID.Hex(),
		TotalAmount:     d.TotalAmount,
		Status:          entity.OrderStatus(d.Status),
		ShippingAddress: d.ShippingAddress,
		OrderDate:       d.OrderDate,
	}
	for _, it := range d.Products {
		o.Items = append(o.Items, entity.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return o
}
