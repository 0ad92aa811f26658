// Package google adapts the Google OAuth2 identity provider. The provider is
// trusted: once the code exchange and userinfo fetch succeed, the returned
// profile is treated as a verified identity.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"

	"articles/cmd/internal/auth"
)

const userInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Config carries the provider credentials. All three fields are required.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether the provider is fully configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.ClientID) != "" &&
		strings.TrimSpace(c.ClientSecret) != "" &&
		strings.TrimSpace(c.RedirectURL) != ""
}

// Provider drives the consent redirect, the code exchange, and the userinfo
// fetch against Google's endpoints.
type Provider struct {
	oauth oauth2.Config
}

// NewProvider builds a Provider from config.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled() {
		return nil, errors.New("google: incomplete provider configuration")
	}
	return &Provider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     oauthgoogle.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}, nil
}

// AuthCodeURL returns the consent-screen URL carrying the anti-forgery state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for a provider identity.
func (p *Provider) Exchange(ctx context.Context, code string) (auth.FederatedIdentity, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return auth.FederatedIdentity{}, fmt.Errorf("google: code exchange: %w", err)
	}
	return p.fetchIdentity(ctx, tok)
}

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (p *Provider) fetchIdentity(ctx context.Context, tok *oauth2.Token) (auth.FederatedIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return auth.FederatedIdentity{}, err
	}

	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return auth.FederatedIdentity{}, fmt.Errorf("google: userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return auth.FederatedIdentity{}, fmt.Errorf("google: userinfo status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return auth.FederatedIdentity{}, fmt.Errorf("google: userinfo decode: %w", err)
	}
	if strings.TrimSpace(info.Email) == "" {
		return auth.FederatedIdentity{}, errors.New("google: userinfo has no email")
	}

	return auth.FederatedIdentity{
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}
