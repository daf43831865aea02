package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/rod/lib/launcher"
)

// NewChromedpLauncher returns a Launcher backed by chromedp. With
// AutoDownload and no Bin, the browser binary is fetched by rod's launcher.
func NewChromedpLauncher(opts Options) Launcher {
	return LauncherFunc(func(ctx context.Context) (Browser, error) {
		return launchDetached(ctx, func() (Browser, error) {
			return launchChromedp(opts)
		})
	})
}

func allocatorOptions(bin string, noSandbox bool) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}
	if noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

func launchChromedp(opts Options) (Browser, error) {
	bin := opts.Bin
	if bin == "" {
		if found, ok := launcher.LookPath(); ok {
			bin = found
		} else if opts.AutoDownload {
			path, err := launcher.NewBrowser().Get()
			if err != nil {
				return nil, fmt.Errorf("%w: download: %v", ErrLaunch, err)
			}
			bin = path
		} else {
			return nil, ErrBrowserNotFound
		}
	}

	// The allocator must outlive the launch call, so it hangs off Background.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(bin, opts.NoSandbox)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	return &chromedpBrowser{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

type chromedpBrowser struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func (b *chromedpBrowser) NewSurface(ctx context.Context) (Surface, error) {
	if b.browserCtx.Err() != nil {
		return nil, ErrClosed
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx, chromedp.WithNewBrowserContext())
	s := &chromedpSurface{tabCtx: tabCtx, tabCancel: tabCancel}

	// The first Run on tabCtx creates the target; it must not carry the
	// request deadline or the target dies with it.
	created := make(chan error, 1)
	go func() { created <- chromedp.Run(tabCtx) }()
	select {
	case err := <-created:
		if err != nil {
			tabCancel()
			return nil, err
		}
	case <-ctx.Done():
		tabCancel()
		return nil, ctx.Err()
	}
	return s, nil
}

// Close gracefully closes the browser, then releases the allocator which
// kills anything left running.
func (b *chromedpBrowser) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = chromedp.Cancel(b.browserCtx)
		b.browserCancel()
		b.allocCancel()
	})
	return b.closeErr
}

type chromedpSurface struct {
	tabCtx    context.Context
	tabCancel context.CancelFunc
	closeOnce sync.Once
}

// run executes actions on the tab, bounded by the caller's ctx.
func (s *chromedpSurface) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *chromedpSurface) Load(ctx context.Context, html string) error {
	return s.run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *chromedpSurface) WaitFonts(ctx context.Context) error {
	var ok bool
	return s.run(ctx, chromedp.Evaluate("("+fontsReadyJS+")()", &ok, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

func (s *chromedpSurface) EmulateMedia(ctx context.Context, media string) error {
	return s.run(ctx, emulation.SetEmulatedMedia().WithMedia(media))
}

func (s *chromedpSurface) PDF(ctx context.Context, opts PDFOptions) ([]byte, error) {
	var data []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		data, _, err = page.PrintToPDF().
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight).
			WithMarginTop(opts.MarginTop).
			WithMarginBottom(opts.MarginBottom).
			WithMarginLeft(opts.MarginLeft).
			WithMarginRight(opts.MarginRight).
			WithPrintBackground(opts.PrintBackground).
			WithPreferCSSPageSize(opts.PreferCSSPageSize).
			Do(ctx)
		return err
	}))
	return data, err
}

// Close closes the tab and disposes its browser context.
func (s *chromedpSurface) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.tabCtx)
		s.tabCancel()
	})
	return err
}

// Compile-time interface checks.
var (
	_ Browser = (*chromedpBrowser)(nil)
	_ Surface = (*chromedpSurface)(nil)
)
