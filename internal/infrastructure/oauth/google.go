// Package oauth resolves Google ID tokens and GitHub authorization codes into external identities.
package oauth

import (
	"context"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/pkg/apperror"
)

var (
	ErrGoogleNotConfigured = apperror.New(apperror.KindInternal, "google sign-in is not configured")
	ErrInvalidGoogleToken  = apperror.New(apperror.KindInvalidCredentials, "invalid google credential")
	ErrGoogleEmailMissing  = apperror.New(apperror.KindInvalidCredentials, "google account has no verified email")
)

var googleIssuers = map[string]struct{}{
	"accounts.google.com":         {},
	"https://accounts.google.com": {},
}

// TokenValidator checks signature, audience and expiry of a Google ID token.
type TokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type GoogleVerifier struct {
	ClientID string
	Validate TokenValidator
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{ClientID: clientID, Validate: idtoken.Validate}
}

// Resolve verifies credential and returns the identity it vouches for.
func (g *GoogleVerifier) Resolve(ctx context.Context, credential string) (entity.ExternalIdentity, error) {
	if g.ClientID == "" {
		return entity.ExternalIdentity{}, ErrGoogleNotConfigured
	}
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return entity.ExternalIdentity{}, ErrInvalidGoogleToken
	}
	payload, err := g.Validate(ctx, credential, g.ClientID)
	if err != nil {
		return entity.ExternalIdentity{}, apperror.Wrap(ErrInvalidGoogleToken, err)
	}
	if _, ok := googleIssuers[payload.Issuer]; !ok {
		return entity.ExternalIdentity{}, ErrInvalidGoogleToken
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return entity.ExternalIdentity{}, ErrGoogleEmailMissing
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return entity.ExternalIdentity{}, ErrGoogleEmailMissing
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	return entity.ExternalIdentity{
		Provider:   entity.AuthGoogle,
		ExternalID: payload.Subject,
		Email:      email,
		Name:       name,
		AvatarURL:  picture,
	}, nil
}
