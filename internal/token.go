package internal

import "time"

type TokenError string

func (e TokenError) String() string {
	return string(e)
}

var (
	TokenErrorNone           TokenError = ""
	TokenErrorRefreshFailed  TokenError = "RefreshAccessTokenError"
	TokenErrorNoRefreshToken TokenError = "NoRefreshToken"
)

// SessionToken is the OAuth credential kept in the user's session. It is
// mutated in place whenever it gets refreshed.
type SessionToken struct {
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	Error        TokenError `json:"error,omitempty"`
}

func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
