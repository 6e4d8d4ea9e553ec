package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/wavesconnect/internal/player"
)

const appName = "wavesconnect"

type Config struct {
	Auth   AuthConfig   `koanf:"auth"`
	Device DeviceConfig `koanf:"device"`
	Tokens TokensConfig `koanf:"tokens"`

	PositionUpdateIntervalMs int    `koanf:"position_update_interval_ms"` // default: 500
	LogLevel                 string `koanf:"log_level"`                   // debug, info, warn, error (default: info)
	MPRIS                    *bool  `koanf:"mpris"`                       // expose an MPRIS2 player on D-Bus (default: true)
	Notifications            bool   `koanf:"notifications"`               // desktop notifications on track and session changes
	Icons                    string `koanf:"icons"`                       // nerd, unicode, none (default: none)

	// Simulate selects the in-process simulated device instead of a real
	// network controller.
	Simulate SimulateConfig `koanf:"simulate"`
}

// AuthConfig holds the account credentials.
type AuthConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	AuthType string `koanf:"auth_type"` // AUTHENTICATION_* name (default: AUTHENTICATION_USER_PASS)
}

// DeviceConfig describes the advertised device.
type DeviceConfig struct {
	Name                 string  `koanf:"name"`    // default: "wavesconnect"
	Backend              string  `koanf:"backend"` // default: "rodio"
	Normalization        bool    `koanf:"normalization"`
	NormalizationPregain float64 `koanf:"normalization_pregain"`

	// InitialVolume is applied whenever a remote session connects.
	// It is a percentage unless InitialVolumeRaw is set.
	InitialVolume    *float64 `koanf:"initial_volume"`
	InitialVolumeRaw bool     `koanf:"initial_volume_raw"`
}

// TokensConfig controls the access token cache.
type TokensConfig struct {
	Save   bool   `koanf:"save"`    // persist tokens between runs (default: false)
	DBPath string `koanf:"db_path"` // default: XDG data dir
}

// SimulateConfig configures the simulated device.
type SimulateConfig struct {
	ConnectDelayMs int `koanf:"connect_delay_ms"`
}

func Load() (*Config, error) {
	return LoadFiles(DefaultPaths()...)
}

// LoadFiles loads the given files in order, later files overriding
// earlier ones. Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.Tokens.DBPath != "" {
		cfg.Tokens.DBPath = expandPath(cfg.Tokens.DBPath)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	return cfg, nil
}

// DefaultPaths returns the config files Load reads, lowest priority first.
func DefaultPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavesconnect/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// PlayerConfig builds the controller configuration. It fails on an
// unknown auth type.
func (c *Config) PlayerConfig() (player.Config, error) {
	authType, err := player.ParseAuthType(c.Auth.AuthType)
	if err != nil {
		return player.Config{}, err
	}
	return player.Config{
		Credentials: player.Credentials{
			Username: c.Auth.Username,
			Password: c.Auth.Password,
			AuthType: authType,
		},
		DeviceName:           c.DeviceName(),
		Backend:              c.Device.Backend,
		Normalization:        c.Device.Normalization,
		NormalizationPregain: c.Device.NormalizationPregain,
	}, nil
}

// DeviceName returns the device name with its default applied.
func (c *Config) DeviceName() string {
	if c.Device.Name == "" {
		return appName
	}
	return c.Device.Name
}

// PositionUpdateInterval returns the position tick interval with its
// default applied.
func (c *Config) PositionUpdateInterval() time.Duration {
	if c.PositionUpdateIntervalMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.PositionUpdateIntervalMs) * time.Millisecond
}

// InitialVolumeRaw returns the raw volume to apply on session connect, if
// one is configured.
func (c *Config) InitialVolumeRaw() (uint16, bool) {
	if c.Device.InitialVolume == nil {
		return 0, false
	}
	v := *c.Device.InitialVolume
	if c.Device.InitialVolumeRaw {
		return uint16(max(0, min(v, float64(player.MaxVolume)))), true
	}
	return player.PercentToRaw(v), true
}

// MPRISEnabled reports whether the MPRIS2 adapter should run.
func (c *Config) MPRISEnabled() bool {
	return c.MPRIS == nil || *c.MPRIS
}

// ConnectDelay returns the simulated connect delay.
func (c *Config) ConnectDelay() time.Duration {
	return time.Duration(max(0, c.Simulate.ConnectDelayMs)) * time.Millisecond
}

// HasCredentials returns true if a username and password are configured.
func (c *Config) HasCredentials() bool {
	return c.Auth.Username != "" && c.Auth.Password != ""
}
