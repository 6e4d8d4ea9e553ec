package player

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid controller config")

// AuthType selects how Credentials.Password is interpreted.
type AuthType int

const (
	AuthUserPass AuthType = iota
	AuthStoredFacebookCredentials
	AuthSpotifyToken
	AuthFacebookToken
)

var authTypeNames = map[AuthType]string{
	AuthUserPass:                  "AUTHENTICATION_USER_PASS",
	AuthStoredFacebookCredentials: "AUTHENTICATION_STORED_FACEBOOK_CREDENTIALS",
	AuthSpotifyToken:              "AUTHENTICATION_SPOTIFY_TOKEN",
	AuthFacebookToken:             "AUTHENTICATION_FACEBOOK_TOKEN",
}

func (a AuthType) String() string {
	if s, ok := authTypeNames[a]; ok {
		return s
	}
	return fmt.Sprintf("AuthType(%d)", int(a))
}

// ParseAuthType accepts the AUTHENTICATION_* names, case-insensitively.
// An empty string means AuthUserPass.
func ParseAuthType(s string) (AuthType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AuthUserPass, nil
	}
	for t, name := range authTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return AuthUserPass, fmt.Errorf("unknown auth type %q", s)
}

// Credentials identify the account a controller logs in with.
type Credentials struct {
	Username string
	Password string
	AuthType AuthType
}

// DefaultBackend is the audio backend used when Config.Backend is empty.
const DefaultBackend = "rodio"

// Config is everything a Factory needs to connect a controller.
type Config struct {
	Credentials Credentials
	// DeviceName is the name advertised to remote clients.
	DeviceName           string
	Backend              string
	Normalization        bool
	NormalizationPregain float64
}

// BackendOrDefault returns Backend, or DefaultBackend if unset.
func (c Config) BackendOrDefault() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return c.Backend
}

// Validate checks the fields every controller requires.
func (c Config) Validate() error {
	if c.Credentials.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidConfig)
	}
	if c.Credentials.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidConfig)
	}
	if _, ok := authTypeNames[c.Credentials.AuthType]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Credentials.AuthType)
	}
	return nil
}
