package application

import "github.com/oksasatya/storefront-account/pkg/apperror"

var (
	ErrInvalidCredentials         = apperror.New(apperror.KindInvalidCredentials, "invalid email or password")
	ErrEmailRegisteredLocally     = apperror.New(apperror.KindDuplicate, "email is already registered with a password, sign in with email instead")
	ErrEmailLinkedToOtherProvider = apperror.New(apperror.KindDuplicate, "email is already linked to another sign-in provider")
	ErrAlreadyVerified            = apperror.New(apperror.KindValidation, "email is already verified")
	ErrNotLocalAccount            = apperror.New(apperror.KindValidation, "account uses social sign-in, password operations are unavailable")
	ErrPasswordMismatch           = apperror.New(apperror.KindValidation, "passwords do not match")
	ErrWrongPassword              = apperror.New(apperror.KindValidation, "current password is incorrect")
	ErrProviderNotConfigured      = apperror.New(apperror.KindInternal, "sign-in provider is not configured")
	ErrMailDelivery               = apperror.New(apperror.KindUpstream, "failed to send email")
	ErrAvatarType                 = apperror.New(apperror.KindValidation, "avatar must be a jpeg or png image")
	ErrAvatarTooLarge             = apperror.New(apperror.KindValidation, "avatar file is too large")
	ErrShippingAddressRequired    = apperror.New(apperror.KindValidation, "shipping address is required")
	ErrEmptyOrder                 = apperror.New(apperror.KindValidation, "order must contain at least one item")
	ErrInvalidQuantity            = apperror.New(apperror.KindValidation, "quantity must be at least 1")
)
