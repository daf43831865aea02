package config

// Notes:
// - LoadConfig name resolution through os.UserConfigDir is not tested: it
//   depends on the HOME of the machine running the tests. The current
//   directory branch exercises the same lookup loop.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// TestDefaultConfig - Defaults used without a file
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	want := &Config{
		Engine: EngineConfig{Backend: BackendRod, StartTimeout: 60 * time.Second},
		Render: RenderConfig{Timeout: 30 * time.Second, FontTimeout: 5 * time.Second},
		Server: ServerConfig{Addr: ":3000"},
		Cache:  CacheConfig{TTL: 24 * time.Hour},
		Log:    LogConfig{Level: "info", Format: LogFormatText},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("DefaultConfig() mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestValidateFieldLength - Length limit helper
// ---------------------------------------------------------------------------

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit is invalid", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test", tt.value, tt.maxLength)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if err != nil && !strings.Contains(err.Error(), "test") {
					t.Errorf("error %q should name the field", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Enumerations, ranges and lengths
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"zero config", func(c *Config) { *c = Config{} }, nil},
		{"chromedp backend", func(c *Config) { c.Engine.Backend = BackendChromedp }, nil},
		{"unknown backend", func(c *Config) { c.Engine.Backend = "puppeteer" }, ErrInvalidValue},
		{"negative start timeout", func(c *Config) { c.Engine.StartTimeout = -time.Second }, ErrInvalidValue},
		{"negative render timeout", func(c *Config) { c.Render.Timeout = -1 }, ErrInvalidValue},
		{"negative font timeout", func(c *Config) { c.Render.FontTimeout = -1 }, ErrInvalidValue},
		{"max surfaces at limit", func(c *Config) { c.Render.MaxSurfaces = MaxSurfacesLimit }, nil},
		{"max surfaces over limit", func(c *Config) { c.Render.MaxSurfaces = MaxSurfacesLimit + 1 }, ErrInvalidValue},
		{"negative max surfaces", func(c *Config) { c.Render.MaxSurfaces = -1 }, ErrInvalidValue},
		{"browser bin too long", func(c *Config) { c.Engine.BrowserBin = strings.Repeat("a", MaxPathLength+1) }, ErrFieldTooLong},
		{"fonts dir too long", func(c *Config) { c.Render.FontsDir = strings.Repeat("a", MaxPathLength+1) }, ErrFieldTooLong},
		{"font family too long", func(c *Config) { c.Render.FontFamily = strings.Repeat("a", MaxFamilyLength+1) }, ErrFieldTooLong},
		{"addr too long", func(c *Config) { c.Server.Addr = strings.Repeat("a", MaxAddrLength+1) }, ErrFieldTooLong},
		{"redis addr too long", func(c *Config) { c.Cache.RedisAddr = strings.Repeat("a", MaxAddrLength+1) }, ErrFieldTooLong},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Minute }, ErrInvalidValue},
		{"level is case insensitive", func(c *Config) { c.Log.Level = "DEBUG" }, nil},
		{"unknown level", func(c *Config) { c.Log.Level = "verbose" }, ErrInvalidValue},
		{"json format", func(c *Config) { c.Log.Format = LogFormatJSON }, nil},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading, strict parsing and name resolution
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("file overrides defaults and keeps the rest", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "test.yaml", `engine:
  backend: chromedp
  noSandbox: true
  startTimeout: 90s
render:
  timeout: 10s
  maxSurfaces: 3
  fontsDir: ./fonts
cache:
  redisAddr: localhost:6379
log:
  format: json
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		want := DefaultConfig()
		want.Engine.Backend = BackendChromedp
		want.Engine.NoSandbox = true
		want.Engine.StartTimeout = 90 * time.Second
		want.Render.Timeout = 10 * time.Second
		want.Render.MaxSurfaces = 3
		want.Render.FontsDir = "./fonts"
		want.Cache.RedisAddr = "localhost:6379"
		want.Log.Format = LogFormatJSON

		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "invalid.yaml", "engine: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "unknown.yaml", "engine:\n  backend: rod\n  headless: false\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value is rejected after parsing", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "bad.yaml", "engine:\n  backend: webkit\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("missing name lists tried paths", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("definitely-not-a-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "definitely-not-a-config-name.yaml") {
			t.Errorf("error %q should list tried paths", err)
		}
	})
}

// Chdir-based tests cannot run in parallel.
func TestLoadConfig_ByName(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"yaml extension", "myconfig.yaml"},
		{"yml extension", "myconfig.yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file, "server:\n  addr: \":8080\"\n")
			t.Chdir(dir)

			cfg, err := LoadConfig("myconfig")
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Server.Addr != ":8080" {
				t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
			}
		})
	}
}
