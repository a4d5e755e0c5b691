package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOneTimeCodeCheck(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewOneTimeCode("123456", issued, 10*time.Minute)

	assert.NoError(t, c.Check("123456", issued.Add(time.Minute)))
	assert.NoError(t, c.Check("123456", issued.Add(10*time.Minute)))
	assert.ErrorIs(t, c.Check("123456", issued.Add(10*time.Minute+time.Second)), ErrCodeExpired)
	assert.ErrorIs(t, c.Check("654321", issued.Add(time.Minute)), ErrCodeMismatch)
	assert.ErrorIs(t, OneTimeCode{}.Check("123456", issued), ErrCodeNotPending)
}

func TestIdentityValidate(t *testing.T) {
	assert.NoError(t, LocalIdentity("$2a$10$hash").Validate(true))
	assert.ErrorIs(t, LocalIdentity("").Validate(true), ErrPasswordRequired)
	assert.NoError(t, LocalIdentity("").Validate(false))

	assert.NoError(t, GoogleIdentity("sub-1").Validate(true))
	assert.ErrorIs(t, GitHubIdentity("").Validate(true), ErrExternalIDNeeded)
	assert.ErrorIs(t, Identity{Type: AuthGitHub, ExternalID: "1", PasswordHash: "x"}.Validate(true), ErrPasswordNotAllow)
	assert.ErrorIs(t, Identity{Type: "facebook"}.Validate(true), ErrInvalidAuthType)
}

func validUser() *User {
	return &User{
		Email:    "alice@example.com",
		Name:     "Alice",
		Identity: LocalIdentity("$2a$10$hash"),
		Role:     RoleUser,
	}
}

func TestUserValidate(t *testing.T) {
	assert.NoError(t, validUser().Validate(true))

	u := validUser()
	u.Email = "Alice@Example.com"
	assert.ErrorIs(t, u.Validate(true), ErrInvalidEmail)

	u = validUser()
	u.Role = "owner"
	assert.ErrorIs(t, u.Validate(true), ErrInvalidRole)

	u = validUser()
	u.Addresses = []Address{{ID: "a", IsDefault: true}, {ID: "b", IsDefault: true}}
	assert.ErrorIs(t, u.Validate(true), ErrMultipleDefaults)

	u = validUser()
	u.Wishlist = []WishlistEntry{{ProductID: "p1"}, {ProductID: "p1"}}
	assert.ErrorIs(t, u.Validate(true), ErrDuplicateWish)
}

func TestSanitizedDropsSecrets(t *testing.T) {
	u := validUser()
	u.VerificationCode = OneTimeCode{Code: "123456", ExpiresAt: time.Now()}
	u.ResetCode = OneTimeCode{Code: "654321", ExpiresAt: time.Now()}
	u.Addresses = []Address{{ID: "a"}}

	s := u.Sanitized()
	assert.Empty(t, s.Identity.PasswordHash)
	assert.False(t, s.VerificationCode.Pending())
	assert.False(t, s.ResetCode.Pending())
	assert.Equal(t, AuthLocal, s.Identity.Type)

	s.Addresses[0].City = "Hue"
	assert.Empty(t, u.Addresses[0].City)
	assert.Equal(t, "$2a$10$hash", u.Identity.PasswordHash)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestUserCodeAccessors(t *testing.T) {
	u := validUser()
	c := OneTimeCode{Code: "111111"}
	u.SetCode(PurposePasswordReset, c)
	assert.Equal(t, c, u.Code(PurposePasswordReset))
	assert.False(t, u.Code(PurposeEmailVerification).Pending())
}

func TestOrderTotal(t *testing.T) {
	o := Order{Items: []OrderItem{{Price: 109.95, Quantity: 2}, {Price: 22.3, Quantity: 1}}}
	assert.InDelta(t, 242.2, o.Total(), 0.0001)
}

func TestProductMatches(t *testing.T) {
	p := Product{ID: "66a1", ExternalID: "7"}
	assert.True(t, p.Matches("66a1"))
	assert.True(t, p.Matches("7"))
	assert.False(t, p.Matches(""))
	assert.False(t, p.Matches("8"))
}
