package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/guilherme-santos/uniplanner/internal"
)

func (s *Server) handleLogin(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	state := uuid.NewString()
	sess.Set(stateKey, state)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return c.Redirect(s.tokens.AuthCodeURL(state), fiber.StatusFound)
}

func (s *Server) handleCallback(c *fiber.Ctx) error {
	if reason := c.Query("error"); reason != "" {
		return fmt.Errorf("%w: sign-in was not granted: %s", internal.ErrUnauthorized, reason)
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	want, _ := sess.Get(stateKey).(string)
	if want == "" || c.Query("state") != want {
		return &internal.ValidationError{Message: "invalid oauth state", Fields: []string{"state"}}
	}
	code := strings.Clone(c.Query("code"))
	if code == "" {
		return &internal.ValidationError{Message: "missing fields", Fields: []string{"code"}}
	}

	tok, err := s.tokens.Exchange(c.UserContext(), code)
	if err != nil {
		return err
	}

	logger := s.logger
	if s.identity != nil {
		if email, err := s.identity.Email(c.UserContext(), tok.AccessToken); err != nil {
			logger.Warn("unable to look up signed in user", "error", err)
		} else {
			logger = logger.With("email", email)
		}
	}

	sess.Delete(stateKey)
	// A new session id is issued for the signed in user.
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("regenerating session: %w", err)
	}
	if err := storeToken(sess, tok); err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	logger.Info("user signed in", "expires_at", tok.ExpiresAt, "offline", tok.RefreshToken != "")
	return c.Redirect(s.cfg.PostLoginURL, fiber.StatusFound)
}

func (s *Server) handleSignOut(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if err := sess.Destroy(); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type sessionStatus struct {
	Authenticated bool                `json:"authenticated"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
	Error         internal.TokenError `json:"error,omitempty"`
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	tok, _, err := s.currentToken(c)
	if tok == nil {
		if err != nil && !isUnauthorized(err) {
			return err
		}
		return c.JSON(sessionStatus{})
	}
	return c.JSON(sessionStatus{
		Authenticated: err == nil,
		ExpiresAt:     &tok.ExpiresAt,
		Error:         tok.Error,
	})
}
