// pattern: Imperative Shell

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"logictree/internal/layout"
)

const (
	appName        = "logictree"
	configFileName = "config.yaml"
)

// IDPolicy selects how edits that reference unknown node ids are handled.
type IDPolicy string

const (
	// IDPolicyLenient turns edits on unknown ids into silent no-ops.
	IDPolicyLenient IDPolicy = "lenient"
	// IDPolicyStrict reports unknown ids as errors, still without mutating.
	IDPolicyStrict IDPolicy = "strict"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Theme    string       `yaml:"theme"`
	LogLevel string       `yaml:"log_level"`
	IDPolicy IDPolicy     `yaml:"id_policy"`
	Web      WebConfig    `yaml:"web"`
	Layout   LayoutConfig `yaml:"layout"`
}

type WebConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"` // 0 picks an ephemeral port
}

type LayoutConfig struct {
	CanvasWidth  float64 `yaml:"canvas_width"`
	MaxNodeWidth float64 `yaml:"max_node_width"`
	ShareBase    float64 `yaml:"share_base"`
	WrapColumns  int     `yaml:"wrap_columns"`
}

func DefaultConfig() Config {
	opts := layout.DefaultOptions()
	return Config{
		Theme:    "mocha",
		LogLevel: "info",
		IDPolicy: IDPolicyLenient,
		Web:      WebConfig{Bind: "127.0.0.1"},
		Layout: LayoutConfig{
			CanvasWidth:  opts.CanvasWidth,
			MaxNodeWidth: opts.MaxNodeWidth,
			ShareBase:    opts.ShareBase,
			WrapColumns:  opts.WrapColumns,
		},
	}
}

// Load reads the config from the default location.
func Load() (Config, error) {
	return LoadFrom(Path(""))
}

// LoadFromDir reads config.yaml from the given directory.
func LoadFromDir(dir string) (Config, error) {
	return LoadFrom(filepath.Join(dir, configFileName))
}

// LoadFrom reads the config at configPath. A missing file yields defaults.
// Keys absent from the file keep their default values.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", configPath, err)
	}

	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.IDPolicy == "" {
		cfg.IDPolicy = IDPolicyLenient
	}

	return cfg, nil
}

// Validate checks values that would otherwise be silently replaced.
func (c *Config) Validate() error {
	switch c.IDPolicy {
	case IDPolicyLenient, IDPolicyStrict:
	default:
		return fmt.Errorf("%w: id_policy must be %q or %q, got %q", ErrInvalid, IDPolicyLenient, IDPolicyStrict, c.IDPolicy)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("%w: web.port %d out of range", ErrInvalid, c.Web.Port)
	}
	l := c.Layout
	if l.CanvasWidth <= 0 || l.MaxNodeWidth <= 0 || l.ShareBase <= 0 {
		return fmt.Errorf("%w: layout widths and share_base must be positive", ErrInvalid)
	}
	if l.WrapColumns < 1 {
		return fmt.Errorf("%w: layout.wrap_columns must be at least 1", ErrInvalid)
	}
	return nil
}

// StrictIDs reports whether unknown ids should be surfaced as errors.
func (c *Config) StrictIDs() bool {
	return c.IDPolicy == IDPolicyStrict
}

// LayoutOptions converts the layout section for the layout engine.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		CanvasWidth:  c.Layout.CanvasWidth,
		MaxNodeWidth: c.Layout.MaxNodeWidth,
		ShareBase:    c.Layout.ShareBase,
		WrapColumns:  c.Layout.WrapColumns,
	}
}

// Dir returns configDir if set, else the per-user config directory.
func Dir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName)
	}
	return filepath.Join(home, ".config", appName)
}

// Path returns the config file path inside Dir(configDir).
func Path(configDir string) string {
	return filepath.Join(Dir(configDir), configFileName)
}
