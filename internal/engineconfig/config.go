// Package engineconfig loads the single configuration object spec.md §6
// describes, in place of the original embedded-scripting collaborator
// (ConfigManager.cpp / V8) that is out of scope for this core (spec.md
// §1). A YAML file stands in as that external "Config" collaborator's
// concrete instance, following the Load/applyDefaults/Validate shape
// therealutkarshpriyadarshi-log/internal/config uses.
package engineconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no config path is given on the command line.
const DefaultPath = "engine.yaml"

// Config is the single configuration object of spec.md §6's table.
type Config struct {
	Name      string          `yaml:"name"`
	Window    WindowConfig    `yaml:"window"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Context   ContextConfig   `yaml:"context"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// WindowConfig mirrors spec.md §6's window.* entries.
type WindowConfig struct {
	MinWidth   uint32 `yaml:"minWidth"`
	MinHeight  uint32 `yaml:"minHeight"`
	MaxWidth   uint32 `yaml:"maxWidth"`
	MaxHeight  uint32 `yaml:"maxHeight"`
	Width      uint32 `yaml:"width"`
	Height     uint32 `yaml:"height"`
	Resizable  bool   `yaml:"resizable"`
	Maximized  bool   `yaml:"maximized"`
	Fullscreen bool   `yaml:"fullscreen"`
	Hidden     bool   `yaml:"hidden"`
}

// SchedulerConfig mirrors spec.md §6's scheduler.* entries.
type SchedulerConfig struct {
	MaxJobs       uint32 `yaml:"maxJobs"`
	WorkerThreads uint32 `yaml:"workerThreads"`
}

// SwapchainConfig mirrors spec.md §6's context.swapchain.* entries.
type SwapchainConfig struct {
	MinFrames    uint32 `yaml:"minFrames"`
	VSyncEnabled bool   `yaml:"vSyncEnabled"`
}

// ContextConfig mirrors spec.md §6's context.* entries.
type ContextConfig struct {
	Swapchain  SwapchainConfig `yaml:"swapchain"`
	ClearColor string          `yaml:"clearColor"`
}

// LoggingConfig is ambient (not named by spec.md's table, but required by
// SPEC_FULL.md §3's ambient logging stack).
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"`
	Console bool   `yaml:"console"`
}

// MetricsConfig configures the Prometheus exporter of internal/schedmetrics
// (SPEC_FULL.md §4's domain stack).
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

const (
	defaultName          = "MISSING NAME"
	defaultMinWidth       = 640
	defaultMinHeight      = 480
	defaultWidth          = 640
	defaultHeight         = 480
	defaultMaximized      = true
	defaultMaxJobs        = 200
	defaultSwapchainFrame = 3
	defaultClearColor     = "#000000"
	defaultLogLevel       = "info"
	defaultMetricsAddr    = ":9090"
)

var defaultMaxWindowDim uint32 = 1<<32 - 1

// Load reads, parses, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engineconfig: read %s: %w", path, err)
	}

	// Start from the default table so entries the file omits, including
	// booleans such as window.maximized, keep their defaults.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("engineconfig: parse %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engineconfig: invalid config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig on any error —
// used by the CLI when argv[1] is absent (spec.md §6).
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns spec.md §6's full default table.
func DefaultConfig() *Config {
	cfg := &Config{
		Name: defaultName,
		Window: WindowConfig{
			MinWidth:  defaultMinWidth,
			MinHeight: defaultMinHeight,
			MaxWidth:  defaultMaxWindowDim,
			MaxHeight: defaultMaxWindowDim,
			Width:     defaultWidth,
			Height:    defaultHeight,
			Maximized: defaultMaximized,
		},
		Scheduler: SchedulerConfig{
			MaxJobs: defaultMaxJobs,
		},
		Context: ContextConfig{
			Swapchain:  SwapchainConfig{MinFrames: defaultSwapchainFrame},
			ClearColor: defaultClearColor,
		},
		Logging: LoggingConfig{Level: defaultLogLevel},
		Metrics: MetricsConfig{Address: defaultMetricsAddr},
	}
	return cfg
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Window.MinWidth == 0 {
		c.Window.MinWidth = d.Window.MinWidth
	}
	if c.Window.MinHeight == 0 {
		c.Window.MinHeight = d.Window.MinHeight
	}
	if c.Window.MaxWidth == 0 {
		c.Window.MaxWidth = d.Window.MaxWidth
	}
	if c.Window.MaxHeight == 0 {
		c.Window.MaxHeight = d.Window.MaxHeight
	}
	if c.Window.Width == 0 {
		c.Window.Width = d.Window.Width
	}
	if c.Window.Height == 0 {
		c.Window.Height = d.Window.Height
	}
	if c.Scheduler.MaxJobs == 0 {
		c.Scheduler.MaxJobs = d.Scheduler.MaxJobs
	}
	// WorkerThreads's "hardware concurrency - 1" default is resolved by
	// job.DefaultConfig, not here: 0 is a valid sentinel meaning "let the
	// scheduler choose" (job.New normalizes <= 0 to its own default).
	if c.Context.Swapchain.MinFrames == 0 {
		c.Context.Swapchain.MinFrames = d.Context.Swapchain.MinFrames
	}
	if c.Context.ClearColor == "" {
		c.Context.ClearColor = d.Context.ClearColor
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = d.Metrics.Address
	}
}

// Validate rejects configurations that would misbehave at runtime,
// surfaced by the caller as initialization failure (spec.md §7 taxonomy
// item 1).
func (c *Config) Validate() error {
	if c.Window.MinWidth > c.Window.MaxWidth {
		return fmt.Errorf("window.minWidth (%d) exceeds window.maxWidth (%d)", c.Window.MinWidth, c.Window.MaxWidth)
	}
	if c.Window.MinHeight > c.Window.MaxHeight {
		return fmt.Errorf("window.minHeight (%d) exceeds window.maxHeight (%d)", c.Window.MinHeight, c.Window.MaxHeight)
	}
	if c.Window.Width < c.Window.MinWidth || c.Window.Width > c.Window.MaxWidth {
		return fmt.Errorf("window.width (%d) outside [%d, %d]", c.Window.Width, c.Window.MinWidth, c.Window.MaxWidth)
	}
	if c.Window.Height < c.Window.MinHeight || c.Window.Height > c.Window.MaxHeight {
		return fmt.Errorf("window.height (%d) outside [%d, %d]", c.Window.Height, c.Window.MinHeight, c.Window.MaxHeight)
	}
	if c.Scheduler.MaxJobs == 0 {
		return fmt.Errorf("scheduler.maxJobs must be positive")
	}
	if c.Context.Swapchain.MinFrames == 0 {
		return fmt.Errorf("context.swapchain.minFrames must be positive")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}
	return nil
}
