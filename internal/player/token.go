package player

import (
	"slices"
	"time"
)

// Token is an OAuth access token issued for the controller's account.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	// ExpiresIn is the lifetime in seconds at issue time.
	ExpiresIn uint32 `json:"expires_in"`
	// ExpiryFromEpoch is the expiry as Unix milliseconds.
	ExpiryFromEpoch int64    `json:"expiry_from_epoch"`
	Scopes          []string `json:"scopes"`
}

// NewToken fills in ExpiryFromEpoch from issuedAt and expiresIn.
func NewToken(access string, expiresIn uint32, scopes []string, issuedAt time.Time) *Token {
	return &Token{
		AccessToken:     access,
		TokenType:       "Bearer",
		ExpiresIn:       expiresIn,
		ExpiryFromEpoch: issuedAt.Add(time.Duration(expiresIn) * time.Second).UnixMilli(),
		Scopes:          slices.Clone(scopes),
	}
}

// Expiry returns the expiry as a time.
func (t *Token) Expiry() time.Time {
	return time.UnixMilli(t.ExpiryFromEpoch)
}

// Valid reports whether the token has not expired at now.
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.ExpiryFromEpoch > now.UnixMilli()
}

// CoversAny reports whether the token was granted at least one of scopes.
func (t *Token) CoversAny(scopes []string) bool {
	for _, s := range scopes {
		if slices.Contains(t.Scopes, s) {
			return true
		}
	}
	return false
}

// DefaultScopes are requested when the caller names none.
var DefaultScopes = []string{
	"playlist-read-collaborative",
	"user-follow-read",
	"user-library-read",
	"user-top-read",
	"user-read-recently-played",
	"user-modify-playback-state",
}
