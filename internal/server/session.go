package server

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/guilherme-santos/uniplanner/internal"
)

const (
	sessionCookie = "uniplanner_session"

	tokenKey = "token"
	stateKey = "oauth_state"

	accessTokenLocal = "access_token"
)

// loadToken returns the token kept in sess, or nil for anonymous sessions.
func loadToken(sess *session.Session) (*internal.SessionToken, error) {
	raw, ok := sess.Get(tokenKey).(string)
	if !ok || raw == "" {
		return nil, nil
	}
	var tok internal.SessionToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, fmt.Errorf("decoding session token: %w", err)
	}
	return &tok, nil
}

func storeToken(sess *session.Session, tok *internal.SessionToken) error {
	raw, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding session token: %w", err)
	}
	sess.Set(tokenKey, string(raw))
	return nil
}

// currentToken loads the session token and runs it through the token
// manager. The possibly refreshed token is written back to the session
// before returning, whatever the outcome. Anonymous visitors get no
// session stored.
func (s *Server) currentToken(c *fiber.Ctx) (*internal.SessionToken, string, error) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return nil, "", fmt.Errorf("loading session: %w", err)
	}
	tok, err := loadToken(sess)
	if err != nil {
		s.logger.Warn("dropping unreadable session token", "error", err)
		sess.Delete(tokenKey)
		tok = nil
	}

	accessToken, vErr := s.tokens.ValidAccessToken(c.UserContext(), tok)
	if tok != nil {
		if err := storeToken(sess, tok); err != nil {
			return nil, "", err
		}
	}
	if tok != nil || !sess.Fresh() {
		if err := sess.Save(); err != nil {
			return nil, "", fmt.Errorf("saving session: %w", err)
		}
	}
	return tok, accessToken, vErr
}

// requireToken rejects requests without a usable access token and hands
// the token to the next handlers.
func (s *Server) requireToken(c *fiber.Ctx) error {
	_, accessToken, err := s.currentToken(c)
	if err != nil {
		return err
	}
	c.Locals(accessTokenLocal, accessToken)
	return c.Next()
}

func requestAccessToken(c *fiber.Ctx) string {
	tok, _ := c.Locals(accessTokenLocal).(string)
	return tok
}
