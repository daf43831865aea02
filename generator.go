package tmpl2pdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/alnah/go-tmpl2pdf/internal/assets"
	"github.com/alnah/go-tmpl2pdf/internal/browser"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
	"github.com/alnah/go-tmpl2pdf/internal/markup"
	"github.com/alnah/go-tmpl2pdf/internal/schema"
	"github.com/alnah/go-tmpl2pdf/internal/templates"
)

// Cache stores rendered PDFs. Markup is deterministic, so a key derived from
// template name and markup identifies the output.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, pdf []byte) error
}

// Generator turns a template name and a JSON payload into a PDF.
// Create with NewGenerator, call Generate concurrently, and Close when done.
type Generator struct {
	cfg      generatorConfig
	registry *templates.Registry
	shell    *markup.Shell
	engine   *Engine
	exporter *exporter
	limiter  *limiter
	cache    Cache
	log      *slog.Logger
	observer Observer
}

// NewGenerator creates a Generator. No browser is started until the first
// Generate or an explicit Start.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			timeout:      defaultTimeout,
			fontTimeout:  defaultFontTimeout,
			startTimeout: defaultStartTimeout,
		},
		registry: templates.Default(),
		log:      logging.NewNop(),
		observer: nopObserver{},
	}

	for _, opt := range opts {
		opt(g)
	}

	faces, err := assets.LoadFonts(g.cfg.fontsDir)
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}
	g.shell, err = markup.NewShell(markup.Typography{Family: g.cfg.fontFamily, Faces: faces})
	if err != nil {
		return nil, fmt.Errorf("building document shell: %w", err)
	}

	launcher := g.cfg.launcher
	if launcher == nil {
		launcher, err = browser.New(g.cfg.backend, g.cfg.browser)
		if err != nil {
			return nil, err
		}
	}

	g.engine = NewEngine(launcher,
		WithEngineLogger(g.log),
		WithEngineStartTimeout(g.cfg.startTimeout),
		WithEngineObserver(g.observer),
	)
	g.exporter = &exporter{
		fontTimeout: g.cfg.fontTimeout,
		pdf:         browser.A4(),
		log:         g.log,
		observer:    g.observer,
	}
	g.limiter = newLimiter(ResolveSurfaceLimit(g.cfg.maxSurfaces))

	return g, nil
}

// Generate validates raw against the named template, renders it and prints
// the document. Errors match ErrTemplateNotFound, ErrEmptyTemplateName,
// ErrValidation (as *ValidationError), ErrRender, ErrEngineStart,
// ErrEngineClosed, ErrExportFailed or a context error.
func (g *Generator) Generate(ctx context.Context, name string, raw []byte) ([]byte, error) {
	began := time.Now()
	pdf, err := g.generate(ctx, name, raw)
	outcome := Outcome(err)
	g.observer.GenerateDone(name, outcome, time.Since(began))
	if err != nil {
		logging.FromContext(ctx, g.log).Debug("generate failed", "template", name, "outcome", outcome, "error", err)
	}
	return pdf, err
}

func (g *Generator) generate(ctx context.Context, name string, raw []byte) ([]byte, error) {
	doc, err := g.Markup(name, raw)
	if err != nil {
		return nil, err
	}

	key := cacheKey(name, doc)
	if pdf, ok := g.cacheGet(ctx, key); ok {
		return pdf, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.timeout)
	defer cancel()

	if err := g.limiter.acquire(ctx); err != nil {
		return nil, err
	}
	defer g.limiter.release()

	b, err := g.engine.EnsureReady(ctx)
	if err != nil {
		return nil, err
	}

	pdf, err := g.exporter.export(ctx, b, doc)
	if err != nil {
		return nil, err
	}

	g.cacheSet(ctx, key, pdf)
	return pdf, nil
}

// Markup validates raw and returns the complete HTML document for the named
// template without printing it. Identical inputs give identical output.
func (g *Generator) Markup(name string, raw []byte) (string, error) {
	d, err := g.lookup(name)
	if err != nil {
		return "", err
	}

	props, issues := schema.Validate(d.Schema, raw)
	if len(issues) > 0 {
		return "", &ValidationError{Template: name, Issues: issues}
	}

	body, err := d.Render(props)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	doc, err := g.shell.Wrap(markup.Document{Lang: d.Lang, Title: d.Title, Body: body})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return doc, nil
}

func (g *Generator) lookup(name string) (*templates.Descriptor, error) {
	d, err := g.registry.Lookup(name)
	switch {
	case errors.Is(err, templates.ErrEmptyName):
		return nil, fmt.Errorf("%w: %w", ErrEmptyTemplateName, ErrTemplateNotFound)
	case err != nil:
		return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return d, nil
}

// Templates returns the registered template names in ascending order.
func (g *Generator) Templates() []string {
	return g.registry.Names()
}

// TemplateSource returns the source text of the named template.
func (g *Generator) TemplateSource(name string) (string, error) {
	d, err := g.lookup(name)
	if err != nil {
		return "", err
	}
	return d.Source, nil
}

// Schema describes the payload accepted by the named template.
func (g *Generator) Schema(name string) (*openapi3.Schema, error) {
	d, err := g.lookup(name)
	if err != nil {
		return nil, err
	}
	return d.Schema.OpenAPI(), nil
}

// Start launches the browser eagerly. Servers call it at boot so the first
// request does not pay for the launch.
func (g *Generator) Start(ctx context.Context) error {
	_, err := g.engine.EnsureReady(ctx)
	return err
}

// EngineState reports the browser lifecycle state.
func (g *Generator) EngineState() State {
	return g.engine.State()
}

// Close shuts the browser down. Close errors are logged, not returned.
func (g *Generator) Close() error {
	return g.engine.Shutdown(context.Background())
}

func cacheKey(name, doc string) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(doc))
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Generator) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if g.cache == nil {
		return nil, false
	}
	pdf, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx, g.log).Warn("cache lookup failed", "error", err)
		return nil, false
	}
	g.observer.CacheLookup(ok)
	return pdf, ok
}

func (g *Generator) cacheSet(ctx context.Context, key string, pdf []byte) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, key, pdf); err != nil {
		logging.FromContext(ctx, g.log).Warn("cache store failed", "error", err)
	}
}
