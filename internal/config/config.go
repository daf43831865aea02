package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/fileutil"
	"github.com/alnah/go-tmpl2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength   = 4096
	MaxAddrLength   = 256
	MaxFamilyLength = 100
)

// Accepted enum values.
const (
	BackendRod      = "rod"
	BackendChromedp = "chromedp"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// MaxSurfacesLimit caps render.maxSurfaces.
const MaxSurfacesLimit = 64

// Default values.
const (
	DefaultAddr         = ":3000"
	DefaultStartTimeout = 60 * time.Second
	DefaultTimeout      = 30 * time.Second
	DefaultFontTimeout  = 5 * time.Second
	DefaultCacheTTL     = 24 * time.Hour
	DefaultLogLevel     = "info"
)

// appDir is the directory under the user config dir searched by LoadConfig.
const appDir = "go-tmpl2pdf"

// Config holds all settings for the generator, the HTTP server and the CLI.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Render RenderConfig `yaml:"render"`
	Server ServerConfig `yaml:"server"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
}

// EngineConfig defines browser launch options.
type EngineConfig struct {
	Backend      string        `yaml:"backend"`      // "rod" or "chromedp" (default: "rod")
	BrowserBin   string        `yaml:"browserBin"`   // Empty = look up an installed browser
	NoSandbox    bool          `yaml:"noSandbox"`    // Required in most containers
	AutoDownload bool          `yaml:"autoDownload"` // Download Chromium when none is found
	StartTimeout time.Duration `yaml:"startTimeout"`
}

// RenderConfig defines per-document options.
type RenderConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	FontTimeout time.Duration `yaml:"fontTimeout"`
	MaxSurfaces int           `yaml:"maxSurfaces"` // 0 = derive from GOMAXPROCS
	FontsDir    string        `yaml:"fontsDir"`    // Empty = system fonts only
	FontFamily  string        `yaml:"fontFamily"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig defines the optional Redis PDF cache.
type CacheConfig struct {
	RedisAddr string        `yaml:"redisAddr"` // Empty = no cache
	TTL       time.Duration `yaml:"ttl"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Validate checks lengths and enumerations. Called automatically by
// LoadConfig, and by the CLI after flags are merged.
func (c *Config) Validate() error {
	switch c.Engine.Backend {
	case "", BackendRod, BackendChromedp:
	default:
		return fmt.Errorf("%w: engine.backend must be %q or %q, got %q",
			ErrInvalidValue, BackendRod, BackendChromedp, c.Engine.Backend)
	}
	if err := validateFieldLength("engine.browserBin", c.Engine.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if err := validateDuration("engine.startTimeout", c.Engine.StartTimeout); err != nil {
		return err
	}

	if err := validateDuration("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if err := validateDuration("render.fontTimeout", c.Render.FontTimeout); err != nil {
		return err
	}
	if c.Render.MaxSurfaces < 0 || c.Render.MaxSurfaces > MaxSurfacesLimit {
		return fmt.Errorf("%w: render.maxSurfaces must be between 0 and %d, got %d",
			ErrInvalidValue, MaxSurfacesLimit, c.Render.MaxSurfaces)
	}
	if err := validateFieldLength("render.fontsDir", c.Render.FontsDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.fontFamily", c.Render.FontFamily, MaxFamilyLength); err != nil {
		return err
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateFieldLength("cache.redisAddr", c.Cache.RedisAddr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateDuration("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level must be debug, info, warn or error, got %q", ErrInvalidValue, c.Log.Level)
	}
	switch c.Log.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format must be %q or %q, got %q",
			ErrInvalidValue, LogFormatText, LogFormatJSON, c.Log.Format)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateDuration rejects negative durations. Zero means "use the default".
func validateDuration(fieldName string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidValue, fieldName, d)
	}
	return nil
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend:      BackendRod,
			StartTimeout: DefaultStartTimeout,
		},
		Render: RenderConfig{
			Timeout:     DefaultTimeout,
			FontTimeout: DefaultFontTimeout,
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Cache:  CacheConfig{TTL: DefaultCacheTTL},
		Log:    LogConfig{Level: DefaultLogLevel, Format: LogFormatText},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
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

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-tmpl2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, appDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
