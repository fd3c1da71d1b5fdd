// Package config handles loading and validation of hunkstage user configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/irahardianto/hunkstage/internal/platform/logger"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when configuration values fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds user-level settings.
type Config struct {
	ContextLines int          `yaml:"context_lines"`
	GitBinary    string       `yaml:"git_binary"`
	Apply        ApplyConfig  `yaml:"apply"`
	Output       OutputConfig `yaml:"output"`
	Watch        WatchConfig  `yaml:"watch"`
	OutputColor  bool         `yaml:"-"` // derived from Output.Color
}

// ApplyConfig holds options passed to git apply.
type ApplyConfig struct {
	Whitespace string `yaml:"whitespace"`
}

// OutputConfig holds output-related user preferences.
type OutputConfig struct {
	Color *bool `yaml:"color"`
}

// WatchConfig holds options for show --watch.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

const (
	defaultContextLines = 3
	defaultDebounce     = 200 * time.Millisecond
	maxContextLines     = 1000
)

var whitespaceActions = map[string]bool{
	"":          true,
	"nowarn":    true,
	"warn":      true,
	"fix":       true,
	"error":     true,
	"error-all": true,
}

// Loader handles loading configuration from the file system.
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a new Loader with the given file system.
// Uses os.Getenv for environment variable lookups by default.
func NewLoader(fs FileSystem) *Loader {
	return &Loader{fs: fs, getenv: os.Getenv}
}

// NewLoaderWithEnv creates a Loader with a custom getenv function for testability.
func NewLoaderWithEnv(fs FileSystem, getenv func(string) string) *Loader {
	return &Loader{fs: fs, getenv: getenv}
}

// DefaultPath returns ~/.config/hunkstage/config.yaml.
func (l *Loader) DefaultPath() (string, error) {
	home, err := l.fs.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hunkstage", "config.yaml"), nil
}

// Load reads configuration from the default path.
// If the home directory cannot be determined, defaults and environment
// overrides are used.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	path, err := l.DefaultPath()
	if err != nil {
		log := logger.FromContext(ctx)
		log.Debug("no home directory, using default config", "error", err)
		cfg := defaultConfig()
		applyEnvOverrides(cfg, l.getenv, log)
		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return l.LoadFrom(ctx, path)
}

// LoadFrom reads configuration from a specific path.
// If the file does not exist, default values are returned (not an error).
// Environment variables override file values.
func (l *Loader) LoadFrom(ctx context.Context, path string) (*Config, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading config", "path", path)
	cfg := defaultConfig()

	// [SEC] Clean path
	path = filepath.Clean(path)

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if !l.fs.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Output.Color != nil {
		cfg.OutputColor = *cfg.Output.Color
	}

	applyEnvOverrides(cfg, l.getenv, log)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load reads configuration from the default path using the real file system.
func Load(ctx context.Context) (*Config, error) {
	return NewLoader(&RealFileSystem{}).Load(ctx)
}

// LoadFrom reads configuration from a specific path using the real file system.
func LoadFrom(ctx context.Context, path string) (*Config, error) {
	return NewLoader(&RealFileSystem{}).LoadFrom(ctx, path)
}

func defaultConfig() *Config {
	return &Config{
		ContextLines: defaultContextLines,
		GitBinary:    "git",
		Watch:        WatchConfig{Debounce: defaultDebounce},
		OutputColor:  true,
	}
}

// validate checks every field and reports all problems at once.
func validate(cfg *Config) error {
	var errs []error

	if cfg.ContextLines < 0 || cfg.ContextLines > maxContextLines {
		errs = append(errs, fmt.Errorf("context_lines: %d out of range 0-%d", cfg.ContextLines, maxContextLines))
	}
	if cfg.GitBinary == "" {
		errs = append(errs, errors.New("git_binary: must not be empty"))
	}
	if !whitespaceActions[cfg.Apply.Whitespace] {
		errs = append(errs, fmt.Errorf("apply.whitespace: unknown action %q (valid: nowarn, warn, fix, error, error-all)", cfg.Apply.Whitespace))
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: %s must not be negative", cfg.Watch.Debounce))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
