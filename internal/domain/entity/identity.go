package entity

import "strings"

type AuthType string

const (
	AuthLocal  AuthType = "local"
	AuthGoogle AuthType = "google"
	AuthGitHub AuthType = "github"
)

func (t AuthType) Valid() bool {
	switch t {
	case AuthLocal, AuthGoogle, AuthGitHub:
		return true
	}
	return false
}

// Identity says how a user authenticates. Local identities carry a password hash,
// provider identities carry the provider's subject id; never both.
type Identity struct {
	Type         AuthType
	PasswordHash string
	ExternalID   string
}

func LocalIdentity(passwordHash string) Identity {
	return Identity{Type: AuthLocal, PasswordHash: passwordHash}
}

func GoogleIdentity(subject string) Identity {
	return Identity{Type: AuthGoogle, ExternalID: subject}
}

func GitHubIdentity(id string) Identity {
	return Identity{Type: AuthGitHub, ExternalID: id}
}

func (i Identity) IsLocal() bool { return i.Type == AuthLocal }

// Validate checks the variant-specific fields. A sanitized read leaves PasswordHash empty,
// so requireSecret is false when validating records loaded without secrets.
func (i Identity) Validate(requireSecret bool) error {
	switch i.Type {
	case AuthLocal:
		if requireSecret && i.PasswordHash == "" {
			return ErrPasswordRequired
		}
		if i.ExternalID != "" {
			return ErrInvalidAuthType
		}
	case AuthGoogle, AuthGitHub:
		if i.PasswordHash != "" {
			return ErrPasswordNotAllow
		}
		if strings.TrimSpace(i.ExternalID) == "" {
			return ErrExternalIDNeeded
		}
	default:
		return ErrInvalidAuthType
	}
	return nil
}

// ExternalIdentity is what an identity provider vouches for.
type ExternalIdentity struct {
	Provider   AuthType
	ExternalID string
	Email      string
	Name       string
	AvatarURL  string
}
