package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string        // TMPL2PDF_CONFIG
	Backend      string        // TMPL2PDF_BACKEND
	BrowserBin   string        // TMPL2PDF_BROWSER_BIN, else ROD_BROWSER_BIN
	NoSandbox    bool          // ROD_NO_SANDBOX=1 or CI=true
	AutoDownload bool          // TMPL2PDF_AUTO_DOWNLOAD=1
	Timeout      time.Duration // TMPL2PDF_TIMEOUT
	MaxSurfaces  int           // TMPL2PDF_MAX_SURFACES
	FontsDir     string        // TMPL2PDF_FONTS_DIR
	Addr         string        // TMPL2PDF_ADDR
	RedisAddr    string        // TMPL2PDF_REDIS_ADDR
	LogLevel     string        // TMPL2PDF_LOG_LEVEL
	LogFormat    string        // TMPL2PDF_LOG_FORMAT
}

// knownEnvVars lists valid TMPL2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TMPL2PDF_CONFIG":        true,
	"TMPL2PDF_BACKEND":       true,
	"TMPL2PDF_BROWSER_BIN":   true,
	"TMPL2PDF_AUTO_DOWNLOAD": true,
	"TMPL2PDF_TIMEOUT":       true,
	"TMPL2PDF_MAX_SURFACES":  true,
	"TMPL2PDF_FONTS_DIR":     true,
	"TMPL2PDF_ADDR":          true,
	"TMPL2PDF_REDIS_ADDR":    true,
	"TMPL2PDF_LOG_LEVEL":     true,
	"TMPL2PDF_LOG_FORMAT":    true,
	"TMPL2PDF_CONTAINER":     true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers and durations are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("TMPL2PDF_CONFIG"),
		Backend:      os.Getenv("TMPL2PDF_BACKEND"),
		BrowserBin:   os.Getenv("TMPL2PDF_BROWSER_BIN"),
		NoSandbox:    os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true",
		AutoDownload: os.Getenv("TMPL2PDF_AUTO_DOWNLOAD") == "1",
		FontsDir:     os.Getenv("TMPL2PDF_FONTS_DIR"),
		Addr:         os.Getenv("TMPL2PDF_ADDR"),
		RedisAddr:    os.Getenv("TMPL2PDF_REDIS_ADDR"),
		LogLevel:     os.Getenv("TMPL2PDF_LOG_LEVEL"),
		LogFormat:    os.Getenv("TMPL2PDF_LOG_FORMAT"),
	}
	if cfg.BrowserBin == "" {
		cfg.BrowserBin = os.Getenv("ROD_BROWSER_BIN")
	}

	if timeout := os.Getenv("TMPL2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if surfaces := os.Getenv("TMPL2PDF_MAX_SURFACES"); surfaces != "" {
		if n, err := strconv.Atoi(surfaces); err == nil && n > 0 {
			cfg.MaxSurfaces = n
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized TMPL2PDF_* variables.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "TMPL2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies set environment values over the config file.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Backend != "" {
		cfg.Engine.Backend = env.Backend
	}
	if env.BrowserBin != "" {
		cfg.Engine.BrowserBin = env.BrowserBin
	}
	if env.NoSandbox {
		cfg.Engine.NoSandbox = true
	}
	if env.AutoDownload {
		cfg.Engine.AutoDownload = true
	}

	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout
	}
	if env.MaxSurfaces > 0 {
		cfg.Render.MaxSurfaces = env.MaxSurfaces
	}
	if env.FontsDir != "" {
		cfg.Render.FontsDir = env.FontsDir
	}

	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.RedisAddr != "" {
		cfg.Cache.RedisAddr = env.RedisAddr
	}

	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
}
