package entity

import (
	"crypto/subtle"
	"time"
)

type CodePurpose string

const (
	PurposeEmailVerification CodePurpose = "email_verification"
	PurposePasswordReset     CodePurpose = "password_reset"
)

// OneTimeCode is a pending numeric code. The zero value means nothing is pending.
type OneTimeCode struct {
	Code      string
	ExpiresAt time.Time
}

func NewOneTimeCode(code string, issuedAt time.Time, ttl time.Duration) OneTimeCode {
	return OneTimeCode{Code: code, ExpiresAt: issuedAt.Add(ttl)}
}

func (c OneTimeCode) Pending() bool { return c.Code != "" }

// Check reports why supplied cannot be accepted at now, or nil.
// The code is still valid at exactly ExpiresAt and expired one instant later.
func (c OneTimeCode) Check(supplied string, now time.Time) error {
	if !c.Pending() {
		return ErrCodeNotPending
	}
	if now.After(c.ExpiresAt) {
		return ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(c.Code), []byte(supplied)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}
