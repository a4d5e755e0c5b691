package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type Avatar struct {
	URL        string
	ExternalID string // object key in avatar storage, empty for provider-hosted images
}

type Address struct {
	ID        string
	Street    string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

// WishlistEntry snapshots product display fields at add time.
type WishlistEntry struct {
	ProductID string
	CatalogID string
	Name      string
	Price     float64
	Image     string
	AddedAt   time.Time
}

// User is the aggregate root. Secrets (password hash and codes) are only populated
// by repository reads that explicitly ask for them.
type User struct {
	ID               string
	Email            string
	Name             string
	Phone            string
	Avatar           Avatar
	Identity         Identity
	Role             Role
	IsVerified       bool
	VerificationCode OneTimeCode
	ResetCode        OneTimeCode
	Addresses        []Address
	Wishlist         []WishlistEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NormalizeEmail trims and lowercases so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Code returns the pending code for purpose.
func (u *User) Code(p CodePurpose) OneTimeCode {
	if p == PurposePasswordReset {
		return u.ResetCode
	}
	return u.VerificationCode
}

func (u *User) SetCode(p CodePurpose, c OneTimeCode) {
	if p == PurposePasswordReset {
		u.ResetCode = c
		return
	}
	u.VerificationCode = c
}

func (u *User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// Refers reports whether ref names the listed product by store id or catalog id.
func (w WishlistEntry) Refers(ref string) bool {
	return ref != "" && (w.ProductID == ref || w.CatalogID == ref)
}

func (u *User) HasWish(productID string) bool {
	for _, w := range u.Wishlist {
		if w.ProductID == productID {
			return true
		}
	}
	return false
}

// Sanitized returns a copy without the password hash or codes.
func (u *User) Sanitized() *User {
	c := *u
	c.Identity.PasswordHash = ""
	c.VerificationCode = OneTimeCode{}
	c.ResetCode = OneTimeCode{}
	c.Addresses = append([]Address(nil), u.Addresses...)
	c.Wishlist = append([]WishlistEntry(nil), u.Wishlist...)
	return &c
}

// Validate checks the aggregate invariants. withSecrets is true when the record
// was loaded with its password hash.
func (u *User) Validate(withSecrets bool) error {
	if u.Email == "" || u.Email != NormalizeEmail(u.Email) {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if err := u.Identity.Validate(withSecrets); err != nil {
		return err
	}
	defaults := 0
	for _, a := range u.Addresses {
		if a.IsDefault {
			defaults++
		}
	}
	if defaults > 1 {
		return ErrMultipleDefaults
	}
	seen := make(map[string]struct{}, len(u.Wishlist))
	for _, w := range u.Wishlist {
		if _, dup := seen[w.ProductID]; dup {
			return ErrDuplicateWish
		}
		seen[w.ProductID] = struct{}{}
	}
	return nil
}
