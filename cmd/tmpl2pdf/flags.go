package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-tmpl2pdf/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	logLevel  string
	logFormat string
	quiet     bool
	verbose   bool
}

// engineFlags holds browser launch flags.
type engineFlags struct {
	backend      string
	browserBin   string
	noSandbox    bool
	autoDownload bool
	startTimeout time.Duration
}

// renderFlags holds per-document flags.
type renderFlags struct {
	timeout     time.Duration
	fontTimeout time.Duration
	maxSurfaces int
	fontsDir    string
	fontFamily  string
}

// serveFlags holds flags of the serve command.
type serveFlags struct {
	addr      string
	redisAddr string
	cacheTTL  time.Duration
}

// outputFlags holds flags of the render command.
type outputFlags struct {
	output   string
	htmlOnly bool
}

// cmdFlags is the union of all command flags. Each command registers the
// groups it uses.
type cmdFlags struct {
	common commonFlags
	engine engineFlags
	render renderFlags
	serve  serveFlags
	out    outputFlags
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

func addEngineFlags(fs *flag.FlagSet, f *engineFlags) {
	fs.StringVar(&f.backend, "backend", "", "browser backend: rod, chromedp")
	fs.StringVar(&f.browserBin, "browser-bin", "", "browser executable")
	fs.BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
	fs.BoolVar(&f.autoDownload, "auto-download", false, "download Chromium when none is found")
	fs.DurationVar(&f.startTimeout, "start-timeout", 0, "browser launch timeout")
}

func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "per-document timeout")
	fs.DurationVar(&f.fontTimeout, "font-timeout", 0, "web font wait")
	fs.IntVarP(&f.maxSurfaces, "max-surfaces", "w", 0, "concurrent documents (0 = auto)")
	fs.StringVar(&f.fontsDir, "fonts-dir", "", "directory of font files to embed")
	fs.StringVar(&f.fontFamily, "font-family", "", "primary font family")
}

func addServeFlags(fs *flag.FlagSet, f *serveFlags) {
	fs.StringVarP(&f.addr, "addr", "a", "", "listen address")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "Redis address for the PDF cache")
	fs.DurationVar(&f.cacheTTL, "cache-ttl", 0, "PDF cache expiration")
}

func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output file (- for stdout)")
	fs.BoolVar(&f.htmlOnly, "html", false, "write the HTML document instead of the PDF")
}

// newFlagSet creates a flag set for name that reports errors instead of exiting.
func newFlagSet(name string, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.SortFlags = false
	return fs
}

// parseFlags parses args with fs and wraps failures as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return fs.Args(), nil
}

// mergeFlags copies explicitly set flags into cfg. Flags win over env vars
// and the config file.
func mergeFlags(fs *flag.FlagSet, f *cmdFlags, cfg *config.Config) {
	set := func(name string) bool {
		fl := fs.Lookup(name)
		return fl != nil && fl.Changed
	}

	if set("log-level") {
		cfg.Log.Level = f.common.logLevel
	}
	if set("log-format") {
		cfg.Log.Format = f.common.logFormat
	}
	if f.common.verbose {
		cfg.Log.Level = "debug"
	}
	if f.common.quiet {
		cfg.Log.Level = "error"
	}

	if set("backend") {
		cfg.Engine.Backend = f.engine.backend
	}
	if set("browser-bin") {
		cfg.Engine.BrowserBin = f.engine.browserBin
	}
	if set("no-sandbox") {
		cfg.Engine.NoSandbox = f.engine.noSandbox
	}
	if set("auto-download") {
		cfg.Engine.AutoDownload = f.engine.autoDownload
	}
	if set("start-timeout") {
		cfg.Engine.StartTimeout = f.engine.startTimeout
	}

	if set("timeout") {
		cfg.Render.Timeout = f.render.timeout
	}
	if set("font-timeout") {
		cfg.Render.FontTimeout = f.render.fontTimeout
	}
	if set("max-surfaces") {
		cfg.Render.MaxSurfaces = f.render.maxSurfaces
	}
	if set("fonts-dir") {
		cfg.Render.FontsDir = f.render.fontsDir
	}
	if set("font-family") {
		cfg.Render.FontFamily = f.render.fontFamily
	}

	if set("addr") {
		cfg.Server.Addr = f.serve.addr
	}
	if set("redis-addr") {
		cfg.Cache.RedisAddr = f.serve.redisAddr
	}
	if set("cache-ttl") {
		cfg.Cache.TTL = f.serve.cacheTTL
	}
}
