package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"glsandbox/internal/asynclog"
	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
)

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config represents the application configuration
type Config struct {
	Version int           `toml:"version" yaml:"version"`
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Metrics MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// WindowConfig describes the view the sandbox renders into
type WindowConfig struct {
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Title     string `toml:"title" yaml:"title"`
	TargetFPS int    `toml:"target_fps" yaml:"target_fps"`
}

// RenderConfig controls the draw demonstrations
type RenderConfig struct {
	StartMode      string  `toml:"start_mode" yaml:"start_mode"`
	Instances      int     `toml:"instances" yaml:"instances"`
	Spacing        float64 `toml:"spacing" yaml:"spacing"`
	ComputeWorkers int     `toml:"compute_workers" yaml:"compute_workers"`
	FOV            float64 `toml:"fov" yaml:"fov"`
	SnapshotDir    string  `toml:"snapshot_dir" yaml:"snapshot_dir"`
	SnapshotWidth  int     `toml:"snapshot_width" yaml:"snapshot_width"`
	SnapshotHeight int     `toml:"snapshot_height" yaml:"snapshot_height"`
}

// LogConfig controls the async log pipeline and its sinks
type LogConfig struct {
	File        string `toml:"file" yaml:"file"`
	Level       string `toml:"level" yaml:"level"`
	Color       bool   `toml:"color" yaml:"color"`
	Console     bool   `toml:"console" yaml:"console"`
	MaxQueued   int    `toml:"max_queued" yaml:"max_queued"`
	Overflow    string `toml:"overflow" yaml:"overflow"`
	RedisAddr   string `toml:"redis_addr" yaml:"redis_addr"`
	RedisKey    string `toml:"redis_key" yaml:"redis_key"`
	RedisMaxLen int64  `toml:"redis_max_len" yaml:"redis_max_len"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Addr    string `toml:"addr" yaml:"addr"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      *eventbus.Bus
	filePath string
	env      func(string) (string, bool)
}

// NewConfigService creates a config service for the file at path
func NewConfigService(path string) ConfigService {
	return &configService{
		filePath: path,
		env:      os.LookupEnv,
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(path string, bus *eventbus.Bus) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// Load loads the configuration file, falling back to defaults when it does
// not exist, then applies environment overrides.
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	applyEnv(cfg, cs.env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cs.bus != nil {
		eventbus.Publish(cs.bus, domain.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		eventbus.Publish(cs.bus, domain.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path without overrides
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep sensible values
	cfg := DefaultConfig()
	switch format(path) {
	case "toml":
		err = toml.Unmarshal(data, cfg)
	case "yaml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch format(path) {
	case "toml":
		data, err = toml.Marshal(config)
	case "yaml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// Validate fills zero values with defaults and rejects unusable settings
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Window.TargetFPS <= 0 {
		c.Window.TargetFPS = def.Window.TargetFPS
	}
	if c.Render.Instances <= 0 {
		c.Render.Instances = def.Render.Instances
	}
	if c.Render.Spacing <= 0 {
		c.Render.Spacing = def.Render.Spacing
	}
	if c.Render.ComputeWorkers <= 0 {
		c.Render.ComputeWorkers = def.Render.ComputeWorkers
	}
	if c.Render.FOV <= 0 || c.Render.FOV >= 180 {
		c.Render.FOV = def.Render.FOV
	}
	if c.Render.SnapshotWidth <= 0 || c.Render.SnapshotHeight <= 0 {
		c.Render.SnapshotWidth = def.Render.SnapshotWidth
		c.Render.SnapshotHeight = def.Render.SnapshotHeight
	}

	if _, err := domain.ParseDrawMode(c.Render.StartMode); err != nil {
		return fmt.Errorf("render.start_mode: %w", err)
	}
	if _, err := asynclog.ParseSeverity(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := asynclog.ParseOverflow(c.Log.Overflow); err != nil {
		return fmt.Errorf("log.overflow: %w", err)
	}
	if c.Log.MaxQueued < 0 {
		return fmt.Errorf("log.max_queued must not be negative, got %d", c.Log.MaxQueued)
	}
	return nil
}

// StartMode returns the parsed start mode; call Validate first
func (c *Config) StartMode() domain.DrawMode {
	m, _ := domain.ParseDrawMode(c.Render.StartMode)
	return m
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Window: WindowConfig{
			Width:     1920,
			Height:    1080,
			Title:     "glsandbox",
			TargetFPS: 120,
		},
		Render: RenderConfig{
			StartMode:      domain.DrawTriangle.String(),
			Instances:      100,
			Spacing:        2.5,
			ComputeWorkers: 4,
			FOV:            60,
			SnapshotDir:    "snapshots",
			SnapshotWidth:  640,
			SnapshotHeight: 360,
		},
		Log: LogConfig{
			File:        "glsandbox.log",
			Level:       "info",
			Overflow:    asynclog.DropOldest.String(),
			RedisKey:    "glsandbox:log",
			RedisMaxLen: 10000,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}
