// Package browser abstracts the headless Chrome backends used to print
// documents.
//
// A Launcher starts one browser process. The Browser hands out Surfaces:
// isolated browsing contexts with a single page, used by exactly one request
// and closed when that request ends. Two backends are provided, go-rod (the
// default) and chromedp.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for backend operations.
var (
	ErrUnknownBackend  = errors.New("unknown browser backend")
	ErrLaunch          = errors.New("failed to launch browser")
	ErrBrowserNotFound = errors.New("no browser binary found")
	ErrClosed          = errors.New("browser closed")
)

// Backend names.
const (
	BackendRod      = "rod"
	BackendChromedp = "chromedp"
)

// MediaScreen is the CSS media type documents are printed with.
const MediaScreen = "screen"

// Browser is a running browser process.
type Browser interface {
	// NewSurface creates an isolated browsing context with one blank page.
	NewSurface(ctx context.Context) (Surface, error)

	// Close terminates the process. Safe to call more than once.
	Close() error
}

// Surface is a page in its own browsing context. Not safe for concurrent use.
type Surface interface {
	// Load replaces the document with html and waits for <body>.
	Load(ctx context.Context, html string) error

	// WaitFonts blocks until document.fonts.ready resolves.
	WaitFonts(ctx context.Context) error

	// EmulateMedia sets the CSS media type used for layout.
	EmulateMedia(ctx context.Context, media string) error

	// PDF prints the current document.
	PDF(ctx context.Context, opts PDFOptions) ([]byte, error)

	// Close disposes the page and its browsing context.
	Close() error
}

// Launcher starts browsers.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Browser, error)

// Launch implements Launcher.
func (f LauncherFunc) Launch(ctx context.Context) (Browser, error) {
	return f(ctx)
}

// Options configure a backend.
type Options struct {
	// Bin is the browser executable. Empty means look it up.
	Bin string

	// NoSandbox disables the Chrome sandbox (containers, CI).
	NoSandbox bool

	// AutoDownload fetches a Chromium build when no browser is found.
	AutoDownload bool
}

// New returns the launcher for backend. An empty backend selects rod.
func New(backend string, opts Options) (Launcher, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendRod:
		return NewRodLauncher(opts), nil
	case BackendChromedp:
		return NewChromedpLauncher(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownBackend, backend, BackendRod, BackendChromedp)
	}
}

// Backends lists the supported backend names.
func Backends() []string {
	return []string{BackendRod, BackendChromedp}
}

// fontsReadyJS resolves once every font face used by the document is loaded.
const fontsReadyJS = `() => document.fonts ? document.fonts.ready.then(() => true) : true`

// launchDetached runs start on its own goroutine so a cancelled ctx does not
// leave a half-started browser behind: a late success is closed.
func launchDetached(ctx context.Context, start func() (Browser, error)) (Browser, error) {
	type result struct {
		b   Browser
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := start()
		done <- result{b, err}
	}()

	select {
	case r := <-done:
		return r.b, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.b != nil {
				_ = r.b.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
