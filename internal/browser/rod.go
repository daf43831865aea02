package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-tmpl2pdf/internal/process"
)

// NewRodLauncher returns a Launcher backed by go-rod.
func NewRodLauncher(opts Options) Launcher {
	return LauncherFunc(func(ctx context.Context) (Browser, error) {
		return launchDetached(ctx, func() (Browser, error) {
			return launchRod(opts)
		})
	})
}

func launchRod(opts Options) (Browser, error) {
	l := launcher.New().Headless(true)

	bin := opts.Bin
	if bin == "" && !opts.AutoDownload {
		found, ok := launcher.LookPath()
		if !ok {
			return nil, ErrBrowserNotFound
		}
		bin = found
	}
	// An empty bin lets rod download a matching Chromium.
	if bin != "" {
		l = l.Bin(bin)
	}
	if opts.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	return &rodBrowser{browser: b, launcher: l, pid: l.PID()}, nil
}

// rodBrowser owns one Chrome process started by the rod launcher.
type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	pid      int

	closeOnce sync.Once
	closeErr  error
}

func (b *rodBrowser) NewSurface(ctx context.Context) (Surface, error) {
	incognito, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, err
	}
	// Later calls carry their own context.
	incognito = incognito.Context(context.Background())

	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, err
	}

	return &rodSurface{incognito: incognito, page: page.Context(context.Background())}, nil
}

// Close closes the browser, then kills the process tree so no Chrome
// helper outlives the engine.
func (b *rodBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.browser.Close()
		process.KillProcessGroup(b.pid)
		b.launcher.Kill()
		b.launcher.Cleanup()
	})
	return b.closeErr
}

type rodSurface struct {
	incognito *rod.Browser
	page      *rod.Page
}

func (s *rodSurface) Load(ctx context.Context, html string) error {
	p := s.page.Context(ctx)
	if err := p.SetDocumentContent(html); err != nil {
		return err
	}
	_, err := p.Element("body")
	return err
}

func (s *rodSurface) WaitFonts(ctx context.Context) error {
	_, err := s.page.Context(ctx).Evaluate(rod.Eval(fontsReadyJS).ByPromise())
	return err
}

func (s *rodSurface) EmulateMedia(ctx context.Context, media string) error {
	return proto.EmulationSetEmulatedMedia{Media: media}.Call(s.page.Context(ctx))
}

func (s *rodSurface) PDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	reader, err := s.page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PaperWidth:        floatPtr(opts.PaperWidth),
		PaperHeight:       floatPtr(opts.PaperHeight),
		MarginTop:         floatPtr(opts.MarginTop),
		MarginBottom:      floatPtr(opts.MarginBottom),
		MarginLeft:        floatPtr(opts.MarginLeft),
		MarginRight:       floatPtr(opts.MarginRight),
		PrintBackground:   opts.PrintBackground,
		PreferCSSPageSize: opts.PreferCSSPageSize,
	})
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return data, nil
}

// Close disposes the page and its browser context.
func (s *rodSurface) Close() error {
	return errors.Join(s.page.Close(), s.incognito.Close())
}

// Compile-time interface checks.
var (
	_ Browser = (*rodBrowser)(nil)
	_ Surface = (*rodSurface)(nil)
)
