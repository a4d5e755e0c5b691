package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/oksasatya/storefront-account/internal/domain/entity"
	"github.com/oksasatya/storefront-account/pkg/apperror"
)

const gitHubAPIBase = "https://api.github.com"

var (
	ErrGitHubNotConfigured = apperror.New(apperror.KindInternal, "github sign-in is not configured")
	ErrGitHubCodeRequired  = apperror.New(apperror.KindValidation, "authorization code is required")
)

// GitHubExchanger trades an authorization code for the GitHub user behind it.
type GitHubExchanger struct {
	Config     *oauth2.Config
	APIBase    string
	HTTPClient *http.Client
}

func NewGitHubExchanger(clientID, clientSecret, redirectURL string) *GitHubExchanger {
	return &GitHubExchanger{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		APIBase:    gitHubAPIBase,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type ghUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// Resolve exchanges code and reads /user. A hidden email becomes <login>@github.com.
func (g *GitHubExchanger) Resolve(ctx context.Context, code string) (entity.ExternalIdentity, error) {
	if g.Config == nil || g.Config.ClientID == "" {
		return entity.ExternalIdentity{}, ErrGitHubNotConfigured
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return entity.ExternalIdentity{}, ErrGitHubCodeRequired
	}
	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	tok, err := g.Config.Exchange(context.WithValue(ctx, oauth2.HTTPClient, client), code)
	if err != nil {
		return entity.ExternalIdentity{}, apperror.Upstream("github token exchange failed", err)
	}
	u, err := g.fetchUser(ctx, client, tok.AccessToken)
	if err != nil {
		return entity.ExternalIdentity{}, apperror.Upstream("github user lookup failed", err)
	}
	email := u.Email
	if email == "" {
		email = u.Login + "@github.com"
	}
	name := u.Name
	if name == "" {
		name = u.Login
	}
	return entity.ExternalIdentity{
		Provider:   entity.AuthGitHub,
		ExternalID: strconv.FormatInt(u.ID, 10),
		Email:      email,
		Name:       name,
		AvatarURL:  u.AvatarURL,
	}, nil
}

func (g *GitHubExchanger) fetchUser(ctx context.Context, client *http.Client, accessToken string) (*ghUser, error) {
	base := g.APIBase
	if base == "" {
		base = gitHubAPIBase
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(base, "/")+"/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github api returned status %d", resp.StatusCode)
	}
	var u ghUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, err
	}
	if u.ID == 0 || u.Login == "" {
		return nil, fmt.Errorf("github api returned an incomplete user")
	}
	return &u, nil
}
