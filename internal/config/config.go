// Package config loads the shell configuration from TOML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Defaults.
const (
	DefaultURL       = "https://irc.pulina.fi"
	DefaultTitle     = "The Lounge"
	DefaultTag       = "notification"
	DefaultMinWidth  = 480
	DefaultMinHeight = 360
	DefaultZoomStep  = 0.5
	DefaultLogLevel  = "info"
	GeometryFileName = "window-state.json"
	IconFileName     = "thelounge.png"
	configDirName    = "lounge"
	configFileName   = "config.toml"
	envConfigPath    = "LOUNGE_CONFIG"
	envURL           = "LOUNGE_URL"
	envDataDir       = "LOUNGE_DATA_DIR"
	envLogLevel      = "LOUNGE_LOG_LEVEL"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the on-disk configuration.
type Config struct {
	DataDir       string              `toml:"data_dir"`
	App           AppConfig           `toml:"app"`
	Window        WindowConfig        `toml:"window"`
	Notifications NotificationsConfig `toml:"notifications"`
	Log           LogConfig           `toml:"log"`
}

// AppConfig names the hosted web application.
type AppConfig struct {
	URL   string `toml:"url"`
	Title string `toml:"title"`
}

// WindowConfig holds window behaviour.
type WindowConfig struct {
	MinWidth    int     `toml:"min_width"`
	MinHeight   int     `toml:"min_height"`
	CloseToTray bool    `toml:"close_to_tray"` // Windows only
	DevTools    bool    `toml:"devtools"`
	ZoomStep    float64 `toml:"zoom_step"`
}

// NotificationsConfig controls the shim and the dispatcher.
type NotificationsConfig struct {
	Enabled      bool   `toml:"enabled"`
	Tag          string `toml:"tag"` // worker envelope discriminator
	DefaultTitle string `toml:"default_title"`
	Icon         string `toml:"icon"` // empty = bundled icon
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	cfg := baseConfig()
	cfg.fillEmpty()
	return cfg
}

// baseConfig leaves the derived defaults empty so fillEmpty can compute them
// after the file has been applied.
func baseConfig() *Config {
	return &Config{
		DataDir: DefaultDir(),
		App: AppConfig{
			URL:   DefaultURL,
			Title: DefaultTitle,
		},
		Window: WindowConfig{
			MinWidth:  DefaultMinWidth,
			MinHeight: DefaultMinHeight,
			ZoomStep:  DefaultZoomStep,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Tag:     DefaultTag,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// DefaultDir returns $XDG_CONFIG_HOME/lounge, falling back to ~/.config/lounge
// and finally the working directory.
func DefaultDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, configDirName)
}

// Path returns the config file location: $LOUNGE_CONFIG or DefaultDir()/config.toml.
func Path() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	return filepath.Join(DefaultDir(), configFileName)
}

// Load reads path (Path() when empty). A missing file yields defaults; env
// overrides are applied last and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	cfg := baseConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.fillEmpty()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillEmpty()
	return cfg, nil
}

// fillEmpty fills derived defaults and restores fields explicitly set to "".
func (c *Config) fillEmpty() {
	if c.DataDir == "" {
		c.DataDir = DefaultDir()
	}
	if c.App.Title == "" {
		c.App.Title = DefaultTitle
	}
	if c.Notifications.DefaultTitle == "" {
		c.Notifications.DefaultTitle = c.App.Title
	}
	if c.Window.ZoomStep == 0 {
		c.Window.ZoomStep = DefaultZoomStep
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envURL); v != "" {
		c.App.URL = v
	}
	if v := os.Getenv(envDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the fields the shell cannot run without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.App.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: app.url must be an absolute http(s) URL, got %q", ErrInvalid, c.App.URL)
	}
	if strings.TrimSpace(c.Notifications.Tag) == "" {
		return fmt.Errorf("%w: notifications.tag must not be empty", ErrInvalid)
	}
	if c.Window.MinWidth <= 0 || c.Window.MinHeight <= 0 {
		return fmt.Errorf("%w: window.min_width and window.min_height must be positive", ErrInvalid)
	}
	if c.Window.ZoomStep < 0 {
		return fmt.Errorf("%w: window.zoom_step must not be negative", ErrInvalid)
	}
	return nil
}

// Origin returns the hosted application's origin the way a browser serializes
// location.origin: lower-case host, default port omitted.
func (c *Config) Origin() string {
	u, err := url.Parse(c.App.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	return scheme + "://" + host
}

// GeometryPath is where the window geometry record lives.
func (c *Config) GeometryPath() string {
	return filepath.Join(c.DataDir, GeometryFileName)
}

// IconPath is the notification icon: the configured one or the bundled copy in DataDir.
func (c *Config) IconPath() string {
	if c.Notifications.Icon != "" {
		return c.Notifications.Icon
	}
	return filepath.Join(c.DataDir, IconFileName)
}
