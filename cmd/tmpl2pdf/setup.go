package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/config"
	"github.com/alnah/go-tmpl2pdf/internal/hints"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
	"github.com/alnah/go-tmpl2pdf/internal/templates"
)

// resolveConfig builds the effective configuration.
// Precedence: CLI flags > env vars > config file > defaults.
func resolveConfig(fs *flag.FlagSet, f *cmdFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	path := f.common.config
	if path == "" {
		path = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(fs, f, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the application logger from cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	log := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Writer: w})
	log.Debug("runtime", "gomaxprocs", runtime.GOMAXPROCS(0), "backend", cfg.Engine.Backend)
	return log, nil
}

// generatorOptions maps cfg onto Generator options. Zero durations keep
// the library defaults.
func generatorOptions(cfg *config.Config, log *slog.Logger, env *Environment) []tmpl2pdf.Option {
	opts := []tmpl2pdf.Option{
		tmpl2pdf.WithLogger(log),
		tmpl2pdf.WithBackend(cfg.Engine.Backend),
		tmpl2pdf.WithBrowserBin(cfg.Engine.BrowserBin),
		tmpl2pdf.WithNoSandbox(cfg.Engine.NoSandbox),
		tmpl2pdf.WithAutoDownload(cfg.Engine.AutoDownload),
		tmpl2pdf.WithMaxSurfaces(cfg.Render.MaxSurfaces),
		tmpl2pdf.WithFontsDir(cfg.Render.FontsDir),
		tmpl2pdf.WithFontFamily(cfg.Render.FontFamily),
	}
	if cfg.Engine.StartTimeout > 0 {
		opts = append(opts, tmpl2pdf.WithStartTimeout(cfg.Engine.StartTimeout))
	}
	if cfg.Render.Timeout > 0 {
		opts = append(opts, tmpl2pdf.WithTimeout(cfg.Render.Timeout))
	}
	if cfg.Render.FontTimeout > 0 {
		opts = append(opts, tmpl2pdf.WithFontTimeout(cfg.Render.FontTimeout))
	}
	if env.Launcher != nil {
		opts = append(opts, tmpl2pdf.WithLauncher(env.Launcher))
	}
	return opts
}

// printError writes err with an actionable hint. Validation issues are
// listed one per line.
func printError(w io.Writer, err error) {
	var verr *tmpl2pdf.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(w, "error: %s: %s\n", tmpl2pdf.ErrValidation, verr.Template)
		for _, issue := range verr.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
		fmt.Fprintln(w, strings.TrimPrefix(hintFor(err), "\n"))
		return
	}
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err))
}

// hintFor returns a hint for err, or "".
func hintFor(err error) string {
	var verr *tmpl2pdf.ValidationError
	switch {
	case errors.As(err, &verr):
		return hints.ForValidation(verr.Template)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(triedPaths(err))
	case errors.Is(err, tmpl2pdf.ErrTemplateNotFound):
		return hints.ForTemplateNotFound(templates.Default().Names())
	case errors.Is(err, tmpl2pdf.ErrEngineStart):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// triedPaths extracts the search list from a config-not-found error.
func triedPaths(err error) []string {
	_, list, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(list, ", ")
}
