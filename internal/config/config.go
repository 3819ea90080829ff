// Package config loads the YAML configuration shared by the CLI and the
// Neovim plugin.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-markdown-view/internal/style"
	"go-markdown-view/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// ThemeAuto follows the ambient appearance.
const ThemeAuto = "auto"

// appDir is the directory under the user config dir searched by name.
const appDir = "go-markdown-view"

// Config holds everything needed to build a view.
type Config struct {
	Addr      string            `yaml:"addr"`      // Listen address of the browser platform
	Theme     string            `yaml:"theme"`     // "light", "dark" or "auto"
	Padding   style.PaddingSpec `yaml:"padding"`   // Document insets in CSS pixels
	WriteBack bool              `yaml:"writeBack"` // Persist document edits to the source file
	Poll      string            `yaml:"poll"`      // Source file poll interval, e.g. "500ms"
	Trace     string            `yaml:"trace"`     // "Debug", "Info" or "Error"
	Headless  HeadlessConfig    `yaml:"headless"`
}

// HeadlessConfig configures the headless browser platform.
type HeadlessConfig struct {
	Width      int    `yaml:"width"`      // Viewport width in CSS pixels
	Timeout    string `yaml:"timeout"`    // Launch and load timeout, e.g. "30s"
	BrowserBin string `yaml:"browserBin"` // Empty = ROD_BROWSER_BIN or auto-download
	NoSandbox  bool   `yaml:"noSandbox"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Addr:  "127.0.0.1:7777",
		Theme: ThemeAuto,
		Poll:  "500ms",
		Trace: "Info",
		Headless: HeadlessConfig{
			Width:   800,
			Timeout: "30s",
		},
	}
}

// LoadConfig loads configuration from a file path or config name, on top of
// DefaultConfig. A name is searched as <name>.yaml / <name>.yml in the
// current directory, then in the user config directory.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !strings.ContainsAny(nameOrPath, `/\`) {
		var err error
		if path, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveConfigPath(name string) (string, error) {
	var dirs []string
	dirs = append(dirs, ".")
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, appDir))
	}

	var tried []string
	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			p := filepath.Join(dir, name+ext)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, nil
			}
			tried = append(tried, p)
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// Validate checks field values that the YAML decoder cannot.
func (c *Config) Validate() error {
	if _, err := c.ThemeOverride(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for _, v := range []*float64{c.Padding.All, c.Padding.Top, c.Padding.Bottom, c.Padding.Left, c.Padding.Right} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: negative padding %g", ErrInvalidConfig, *v)
		}
	}
	if _, err := c.PollInterval(); err != nil {
		return fmt.Errorf("%w: poll: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Headless.LoadTimeout(); err != nil {
		return fmt.Errorf("%w: headless.timeout: %v", ErrInvalidConfig, err)
	}
	if c.Headless.Width < 0 {
		return fmt.Errorf("%w: negative headless.width %d", ErrInvalidConfig, c.Headless.Width)
	}
	return nil
}

// ThemeOverride returns the explicit theme, or nil for "auto" and "".
func (c *Config) ThemeOverride() (*style.Theme, error) {
	if c.Theme == "" || strings.EqualFold(c.Theme, ThemeAuto) {
		return nil, nil
	}
	t, err := style.ParseTheme(c.Theme)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PollInterval parses Poll; an empty value disables polling.
func (c *Config) PollInterval() (time.Duration, error) {
	return parseDuration(c.Poll)
}

// LoadTimeout parses Timeout; an empty value means the platform default.
func (h HeadlessConfig) LoadTimeout() (time.Duration, error) {
	return parseDuration(h.Timeout)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
