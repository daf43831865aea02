package tmpl2pdf

import (
	"log/slog"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
)

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds internal configuration for Generator.
type generatorConfig struct {
	timeout      time.Duration
	fontTimeout  time.Duration
	startTimeout time.Duration
	maxSurfaces  int
	backend      string
	browser      browser.Options
	launcher     browser.Launcher
	fontsDir     string
	fontFamily   string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout bounds each Generate call once markup is rendered.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tmpl2pdf: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithFontTimeout bounds the wait for web fonts. When it runs out the page
// is printed anyway.
// Panics if d <= 0.
func WithFontTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tmpl2pdf: WithFontTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.fontTimeout = d
	}
}

// WithStartTimeout bounds the browser launch.
// Panics if d <= 0.
func WithStartTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tmpl2pdf: WithStartTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.startTimeout = d
	}
}

// WithMaxSurfaces sets how many documents may print concurrently.
// Zero or less resolves from GOMAXPROCS, see ResolveSurfaceLimit.
func WithMaxSurfaces(n int) Option {
	return func(g *Generator) {
		g.cfg.maxSurfaces = n
	}
}

// WithBackend selects the browser backend: "rod" (default) or "chromedp".
func WithBackend(name string) Option {
	return func(g *Generator) {
		g.cfg.backend = name
	}
}

// WithBrowserBin uses a pre-installed browser instead of looking one up.
func WithBrowserBin(path string) Option {
	return func(g *Generator) {
		g.cfg.browser.Bin = path
	}
}

// WithNoSandbox disables the Chrome sandbox. Needed in most containers.
func WithNoSandbox(v bool) Option {
	return func(g *Generator) {
		g.cfg.browser.NoSandbox = v
	}
}

// WithAutoDownload lets the backend download Chromium when none is found.
func WithAutoDownload(v bool) Option {
	return func(g *Generator) {
		g.cfg.browser.AutoDownload = v
	}
}

// WithLauncher replaces the backend launcher entirely.
func WithLauncher(l browser.Launcher) Option {
	return func(g *Generator) {
		g.cfg.launcher = l
	}
}

// WithFontsDir inlines the font files found in dir into every document.
func WithFontsDir(dir string) Option {
	return func(g *Generator) {
		g.cfg.fontsDir = dir
	}
}

// WithFontFamily sets the primary document font family.
func WithFontFamily(family string) Option {
	return func(g *Generator) {
		g.cfg.fontFamily = family
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// WithObserver receives pipeline events.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		g.observer = o
	}
}

// WithCache stores generated PDFs keyed by template and markup.
func WithCache(c Cache) Option {
	return func(g *Generator) {
		g.cache = c
	}
}
