package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables that override secrets from the config files.
const (
	EnvAPIToken   = "RUSH_API_TOKEN"
	EnvPushSecret = "RUSH_PUSH_SECRET"
	EnvAPIURL     = "RUSH_API_URL"
)

const (
	defaultPushListen  = "127.0.0.1:8765"
	defaultRootURL     = "http://localhost:3000/"
	defaultCenterLimit = 100
)

type Config struct {
	// Rush Management REST backend
	API APIConfig `koanf:"api"`

	// Push delivery to the background daemon
	Push PushConfig `koanf:"push"`

	// Where clicks lead and which images notifications carry
	App AppConfig `koanf:"app"`

	// In-app notification center
	Center CenterConfig `koanf:"center"`

	Log LogConfig `koanf:"log"`

	Device DeviceConfig `koanf:"device"`
}

// APIConfig holds the REST backend settings.
type APIConfig struct {
	BaseURL string `koanf:"base_url"` // e.g., "https://rush.example.com/api"
	Token   string `koanf:"token"`    // bearer token; prefer RUSH_API_TOKEN
}

// PushConfig holds the push delivery settings.
type PushConfig struct {
	Listen    string `koanf:"listen"`     // local push endpoint address (default: 127.0.0.1:8765)
	Secret    string `koanf:"secret"`     // shared secret expected from the push service
	StreamURL string `koanf:"stream_url"` // websocket push stream; empty disables it
	Endpoint  string `koanf:"endpoint"`   // public URL registered with the backend
}

// AppConfig describes the application the notifications belong to.
type AppConfig struct {
	RootURL string `koanf:"root_url"` // opened when a notification is clicked
	Icon    string `koanf:"icon"`     // default notification icon
	Badge   string `koanf:"badge"`    // default notification badge
}

// CenterConfig holds in-app notification center settings.
type CenterConfig struct {
	Limit int `koanf:"limit"` // max entries kept (default: 100, 0 or less means default)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error" (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
}

// DeviceConfig identifies this installation.
type DeviceConfig struct {
	ID string `koanf:"id"` // default: hostname
}

// Load reads .env, the config files and the environment. Files in extra are
// read after the default locations and win over them.
func Load(extra ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	paths := getConfigPaths()
	for _, p := range extra {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return LoadFrom(paths, os.Getenv)
}

// LoadFrom reads the given config files (later files win) and applies
// overrides from getenv.
func LoadFrom(paths []string, getenv func(string) string) (*Config, error) {
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

	applyEnv(cfg, getenv)

	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
	cfg.App.Icon = expandPath(cfg.App.Icon)
	cfg.App.Badge = expandPath(cfg.App.Badge)

	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if getenv == nil {
		return
	}
	if v := getenv(EnvAPIToken); v != "" {
		cfg.API.Token = v
	}
	if v := getenv(EnvPushSecret); v != "" {
		cfg.Push.Secret = v
	}
	if v := getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/rushnotify/config.toml
	if xdg.ConfigHome != "" {
		paths = append(paths, filepath.Join(xdg.ConfigHome, "rushnotify", "config.toml"))
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

// HasAPI returns true if the REST backend is configured.
func (c *Config) HasAPI() bool {
	return c.API.BaseURL != ""
}

// PushListen returns the local push endpoint address.
func (c *Config) PushListen() string {
	if c.Push.Listen == "" {
		return defaultPushListen
	}
	return c.Push.Listen
}

// PushEndpoint returns the URL registered with the backend for delivery.
func (c *Config) PushEndpoint() string {
	if c.Push.Endpoint != "" {
		return c.Push.Endpoint
	}
	return "http://" + c.PushListen() + "/push"
}

// RootURL returns the application root opened on click.
func (c *Config) RootURL() string {
	if c.App.RootURL == "" {
		return defaultRootURL
	}
	return c.App.RootURL
}

// CenterLimit returns the maximum number of in-app entries.
func (c *Config) CenterLimit() int {
	if c.Center.Limit <= 0 {
		return defaultCenterLimit
	}
	return c.Center.Limit
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}

// LogFormat returns "json" or "text".
func (c *Config) LogFormat() string {
	if strings.EqualFold(c.Log.Format, "json") {
		return "json"
	}
	return "text"
}

// DeviceID returns the configured device id, falling back to the hostname.
func (c *Config) DeviceID() string {
	if c.Device.ID != "" {
		return c.Device.ID
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "unknown-device"
}
