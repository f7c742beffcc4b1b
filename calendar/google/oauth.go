package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/uniplanner/internal"
)

var Scopes = []string{
	"openid",
	"email",
	"profile",
	calendar.CalendarScope,
	calendar.CalendarEventsScope,
}

// defaultExpiry is used when the provider does not say when a token expires.
const defaultExpiry = time.Hour

// NewOAuthConfig returns the Google OAuth2 config. Client credentials are
// always sent in the request body.
func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	endpoint := google.Endpoint
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     endpoint,
	}
}

// TokenManager owns the session token lifecycle: sign-in exchange, expiry
// checks and refresh-token grants.
type TokenManager struct {
	oauthCfg *oauth2.Config
	logger   *slog.Logger

	// Now is the clock used for expiry checks.
	Now func() time.Time
}

func NewTokenManager(oauthCfg *oauth2.Config, logger *slog.Logger) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		oauthCfg: oauthCfg,
		logger:   logger.With("component", "token_manager"),
		Now:      time.Now,
	}
}

// AuthCodeURL asks for offline access and forces the consent screen so
// Google hands out a refresh token on every sign-in.
func (m *TokenManager) AuthCodeURL(state string) string {
	return m.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (m *TokenManager) Exchange(ctx context.Context, code string) (*internal.SessionToken, error) {
	tok, err := m.oauthCfg.Exchange(ctx, code)
	if err != nil {
		m.logger.Error("unable to exchange authorization code", "error", err)
		return nil, upstreamError("oauth2: exchanging code", err)
	}
	return m.NewSessionToken(tok), nil
}

func (m *TokenManager) NewSessionToken(tok *oauth2.Token) *internal.SessionToken {
	return &internal.SessionToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    m.expiry(tok),
	}
}

// Refresh brings t up to date. It never fails: problems are recorded in
// t.Error and the next request will see them.
func (m *TokenManager) Refresh(ctx context.Context, t *internal.SessionToken) {
	if t == nil {
		return
	}
	if t.AccessToken != "" && !t.Expired(m.now()) {
		return
	}
	if t.RefreshToken == "" {
		m.logger.Info("access token expired and there is no refresh token")
		t.AccessToken = ""
		t.Error = internal.TokenErrorNoRefreshToken
		return
	}

	tok, err := m.oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: t.RefreshToken}).Token()
	if err != nil {
		attrs := []any{"error", err}
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			attrs = append(attrs, "response", string(rErr.Body))
		}
		m.logger.Error("failed to refresh access token", attrs...)
		t.Error = internal.TokenErrorRefreshFailed
		return
	}

	t.AccessToken = tok.AccessToken
	// Google only sends a refresh token back when it changed.
	if tok.RefreshToken != "" {
		t.RefreshToken = tok.RefreshToken
	}
	t.ExpiresAt = m.expiry(tok)
	t.Error = internal.TokenErrorNone
	m.logger.Debug("access token refreshed", "expires_at", t.ExpiresAt)
}

// ValidAccessToken refreshes t when needed and returns an access token the
// caller can use right away.
func (m *TokenManager) ValidAccessToken(ctx context.Context, t *internal.SessionToken) (string, error) {
	if t == nil {
		return "", fmt.Errorf("%w: no session token", internal.ErrUnauthorized)
	}
	m.Refresh(ctx, t)
	if t.Error != internal.TokenErrorNone {
		return "", fmt.Errorf("%w: %s", internal.ErrUnauthorized, t.Error)
	}
	if t.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token", internal.ErrUnauthorized)
	}
	return t.AccessToken, nil
}

func (m *TokenManager) expiry(tok *oauth2.Token) time.Time {
	if tok.Expiry.IsZero() {
		return m.now().Add(defaultExpiry)
	}
	return tok.Expiry
}

func (m *TokenManager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
