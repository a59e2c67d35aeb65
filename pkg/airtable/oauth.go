package airtable

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/goliatone/go-airforms/pkg/model"
)

const (
	AuthURL  = "https://airtable.com/oauth2/v1/authorize"
	TokenURL = "https://airtable.com/oauth2/v1/token"
)

// DefaultScopes covers reading schemas and reading/writing records.
var DefaultScopes = []string{"data.records:read", "data.records:write", "schema.bases:read"}

// OAuthConfig returns the oauth2 configuration for an Airtable integration.
// Confidential clients authenticate with HTTP basic auth on the token
// endpoint.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// UserToken converts stored credentials into an oauth2 token.
func UserToken(user model.User) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  user.AccessToken,
		RefreshToken: user.RefreshToken,
		TokenType:    user.TokenType,
		Expiry:       user.TokenExpiresAt,
	}
}

// HTTPClient returns an http.Client that authorises requests as user. With a
// non-nil config expired tokens are refreshed; otherwise the access token is
// used as-is.
func HTTPClient(ctx context.Context, cfg *oauth2.Config, user model.User) *http.Client {
	token := UserToken(user)
	if cfg == nil {
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	}
	// TODO: persist refreshed tokens back through store.Users.UpsertUser.
	return cfg.Client(ctx, token)
}

// ForUser builds a Client acting on behalf of user.
func ForUser(ctx context.Context, cfg *oauth2.Config, user model.User, options ...Option) *Client {
	return New(HTTPClient(ctx, cfg, user), options...)
}
