package entity

import "github.com/oksasatya/storefront-account/pkg/apperror"

var (
	ErrUserNotFound     = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmailTaken       = apperror.New(apperror.KindDuplicate, "email already registered")
	ErrAddressNotFound  = apperror.New(apperror.KindNotFound, "address not found")
	ErrNotInWishlist    = apperror.New(apperror.KindNotFound, "product not in wishlist")
	ErrProductNotFound  = apperror.New(apperror.KindNotFound, "product not found")
	ErrCodeNotPending   = apperror.New(apperror.KindValidation, "no code pending")
	ErrCodeExpired      = apperror.New(apperror.KindValidation, "code expired")
	ErrCodeMismatch     = apperror.New(apperror.KindValidation, "code mismatch")
	ErrInvalidEmail     = apperror.New(apperror.KindValidation, "email is required")
	ErrPasswordRequired = apperror.New(apperror.KindValidation, "password is required for local accounts")
	ErrPasswordNotAllow = apperror.New(apperror.KindValidation, "password is only allowed for local accounts")
	ErrExternalIDNeeded = apperror.New(apperror.KindValidation, "external id is required for provider accounts")
	ErrInvalidAuthType  = apperror.New(apperror.KindValidation, "unknown auth type")
	ErrInvalidRole      = apperror.New(apperror.KindValidation, "unknown role")
	ErrMultipleDefaults = apperror.New(apperror.KindValidation, "only one default address is allowed")
	ErrDuplicateWish    = apperror.New(apperror.KindValidation, "wishlist already contains product")
)
