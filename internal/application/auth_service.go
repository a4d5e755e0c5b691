package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/internal/domain/repository"
	"github.com/oksasatya/storefront-account/pkg/apperror"
	"github.com/oksasatya/storefront-account/pkg/helpers"
)

const googleNameFallback = "Google User"

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Google IdentityResolver
	GitHub IdentityResolver
	Audit  repository.AuditRepository
	Index  UserIndexer
	Logger *logrus.Logger
	Now    func() time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is a signed-in user and its session token.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) audit(ctx context.Context, action string, u *entity.User, email string, meta RequestMeta, extra map[string]any) {
	recordAudit(ctx, s.Audit, s.Logger, clock(s.Now), action, u, email, meta, extra)
}

// Register creates a local account. No verification email is sent here.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u := &entity.User{
		Email:    entity.NormalizeEmail(in.Email),
		Name:     strings.TrimSpace(in.Name),
		Identity: entity.LocalIdentity(hash),
		Role:     entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	out := u.Sanitized()
	s.audit(ctx, entity.AuditRegister, out, "", meta, nil)
	reindex(ctx, s.Index, s.Logger, out)
	return out, nil
}

// Login checks a local password. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (*AuthResult, error) {
	u, err := s.Users.GetByEmailWithSecrets(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		s.audit(ctx, entity.AuditLoginFailed, nil, email, meta, map[string]any{"reason": "unknown_email"})
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Identity.IsLocal() {
		s.audit(ctx, entity.AuditLoginFailed, u, "", meta, map[string]any{"reason": "social_account"})
		return nil, ErrNotLocalAccount
	}
	if !helpers.CompareHashAndPassword(u.Identity.PasswordHash, password) {
		s.audit(ctx, entity.AuditLoginFailed, u, "", meta, map[string]any{"reason": "bad_password"})
		return nil, ErrInvalidCredentials
	}
	res, err := s.issue(u.Sanitized())
	if err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditLoginSuccess, res.User, "", meta, nil)
	return res, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	tok, exp, err := s.JWT.Issue(u.ID, string(u.Role))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, apperror.Internal(err)
	}
	return &AuthResult{User: u, Token: tok, ExpiresAt: exp}, nil
}

// LoginWithGoogle verifies a Google ID token and signs in, creating the account on first use.
func (s *AuthService) LoginWithGoogle(ctx context.Context, credential string, meta RequestMeta) (*AuthResult, error) {
	return s.loginExternal(ctx, s.Google, credential, meta)
}

// LoginWithGitHub exchanges a GitHub authorization code and signs in, creating the account on first use.
func (s *AuthService) LoginWithGitHub(ctx context.Context, code string, meta RequestMeta) (*AuthResult, error) {
	return s.loginExternal(ctx, s.GitHub, code, meta)
}

func (s *AuthService) loginExternal(ctx context.Context, resolver IdentityResolver, credential string, meta RequestMeta) (*AuthResult, error) {
	if resolver == nil {
		return nil, ErrProviderNotConfigured
	}
	id, err := resolver.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	u, created, err := s.link(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, entity.AuditOAuthLogin, u, "", meta, map[string]any{"provider": string(id.Provider), "created": created})
	if created {
		reindex(ctx, s.Index, s.Logger, u)
	}
	return res, nil
}

// link finds the account for id by provider id, then by email, and creates one if neither exists.
func (s *AuthService) link(ctx context.Context, id entity.ExternalIdentity) (*entity.User, bool, error) {
	u, err := s.Users.GetByProvider(ctx, id.Provider, id.ExternalID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, entity.ErrUserNotFound) {
		return nil, false, err
	}

	existing, err := s.Users.GetByEmail(ctx, id.Email)
	switch {
	case err == nil:
		if existing.Identity.IsLocal() {
			return nil, false, ErrEmailRegisteredLocally
		}
		if existing.Identity.Type == entity.AuthGoogle && id.Provider == entity.AuthGoogle {
			return existing, false, nil
		}
		return nil, false, ErrEmailLinkedToOtherProvider
	case !errors.Is(err, entity.ErrUserNotFound):
		return nil, false, err
	}

	name := strings.TrimSpace(id.Name)
	if name == "" && id.Provider == entity.AuthGoogle {
		name = googleNameFallback
	}
	identity := entity.GoogleIdentity(id.ExternalID)
	if id.Provider == entity.AuthGitHub {
		identity = entity.GitHubIdentity(id.ExternalID)
	}
	nu := &entity.User{
		Email:      entity.NormalizeEmail(id.Email),
		Name:       name,
		Avatar:     entity.Avatar{URL: id.AvatarURL},
		Identity:   identity,
		Role:       entity.RoleUser,
		IsVerified: true,
	}
	if err := s.Users.Create(ctx, nu); err != nil {
		if errors.Is(err, entity.ErrEmailTaken) {
			return nil, false, ErrEmailLinkedToOtherProvider
		}
		return nil, false, err
	}
	return nu.Sanitized(), true, nil
}
