// Package auth acquires Business Central access tokens with the OAuth2
// client-credentials grant.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/bctools/bctools/internal/messages"
)

// DefaultScope requests every API permission granted to the app registration.
const DefaultScope = "https://api.businesscentral.dynamics.com/.default"

// ErrAuthenticationFailed wraps every token acquisition failure.
var ErrAuthenticationFailed = errors.New(messages.AuthAuthenticationFail)

// Config identifies the app registration and the authority issuing tokens.
type Config struct {
	// AuthorityURL is the Entra ID login host, e.g. https://login.microsoftonline.com.
	AuthorityURL string
	TenantID     string
	ClientID     string
	ClientSecret string
	// Scope defaults to DefaultScope.
	Scope string
}

// TokenURL returns the v2.0 token endpoint for the tenant.
func (c Config) TokenURL() string {
	return strings.TrimRight(c.AuthorityURL, "/") + "/" + c.TenantID + "/oauth2/v2.0/token"
}

func (c Config) validate() error {
	for _, field := range []struct{ name, value string }{
		{"authority url", c.AuthorityURL},
		{"tenant id", c.TenantID},
		{"client id", c.ClientID},
		{"client secret", c.ClientSecret},
	} {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf(messages.AuthTokenFailedFmt, ErrAuthenticationFailed, fmt.Errorf(messages.AuthMissingFieldFmt, field.name))
		}
	}
	return nil
}

// NewTokenSource returns a token source for cfg. ctx carries an optional
// *http.Client under oauth2.HTTPClient for the token requests.
func NewTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	scope := cfg.Scope
	if scope == "" {
		scope = DefaultScope
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL(),
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cc.TokenSource(ctx), nil
}

// Fetch retrieves a token from ts. Any failure, including an empty access
// token, is wrapped in ErrAuthenticationFailed.
func Fetch(ts oauth2.TokenSource) (*oauth2.Token, error) {
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf(messages.AuthTokenFailedFmt, ErrAuthenticationFailed, err)
	}
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf(messages.AuthTokenFailedFmt, ErrAuthenticationFailed, errors.New(messages.AuthEmptyToken))
	}
	return token, nil
}

// HTTPClient returns a client that sends "Authorization: Bearer <token>"
// on every request, starting from initial and refreshing through ts.
func HTTPClient(ctx context.Context, initial *oauth2.Token, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(initial, ts))
}
