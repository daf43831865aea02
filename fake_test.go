package tmpl2pdf

// Notes:
// - fakeLauncher/fakeBrowser/fakeSurface stand in for Chrome so lifecycle,
//   isolation and failure handling are tested without a browser. The real
//   backends are covered by the integration suite.
// - fakeSurface.PDF returns "%PDF-fake\n" followed by the loaded document, so
//   tests can tell which request a PDF belongs to.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
)

var errFake = errors.New("fake failure")

// Export stages a fakeSurface can be told to fail at.
const (
	stageNewSurface = "new-surface"
	stageLoad       = "load"
	stageFonts      = "fonts"
	stageMedia      = "media"
	stagePDF        = "pdf"
)

// ---------------------------------------------------------------------------
// fakeLauncher
// ---------------------------------------------------------------------------

type fakeLauncher struct {
	delay    time.Duration
	failures atomic.Int32 // launches left to fail
	launches atomic.Int32

	mu       sync.Mutex
	browsers []*fakeBrowser
	failAt   string
	blockFn  bool // surfaces block in WaitFonts until ctx ends
}

func (l *fakeLauncher) Launch(ctx context.Context) (browser.Browser, error) {
	l.launches.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.failures.Load() > 0 {
		l.failures.Add(-1)
		return nil, errFake
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	b := &fakeBrowser{failAt: l.failAt, blockFonts: l.blockFn}
	l.browsers = append(l.browsers, b)
	return b, nil
}

func (l *fakeLauncher) lastBrowser() *fakeBrowser {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.browsers) == 0 {
		return nil
	}
	return l.browsers[len(l.browsers)-1]
}

// ---------------------------------------------------------------------------
// fakeBrowser
// ---------------------------------------------------------------------------

type fakeBrowser struct {
	failAt     string
	blockFonts bool
	closeErr   error

	mu       sync.Mutex
	surfaces []*fakeSurface
	closes   int
}

func (b *fakeBrowser) NewSurface(ctx context.Context) (browser.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closes > 0 {
		return nil, browser.ErrClosed
	}
	if b.failAt == stageNewSurface {
		return nil, errFake
	}
	s := &fakeSurface{failAt: b.failAt, blockFonts: b.blockFonts}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

func (b *fakeBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closes++
	return b.closeErr
}

func (b *fakeBrowser) closeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes
}

func (b *fakeBrowser) allSurfaces() []*fakeSurface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakeSurface(nil), b.surfaces...)
}

// ---------------------------------------------------------------------------
// fakeSurface
// ---------------------------------------------------------------------------

type fakeSurface struct {
	failAt     string
	blockFonts bool

	mu     sync.Mutex
	doc    string
	calls  []string
	media  string
	opts   browser.PDFOptions
	closes int
}

func (s *fakeSurface) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *fakeSurface) Load(ctx context.Context, html string) error {
	s.record(stageLoad)
	if s.failAt == stageLoad {
		return errFake
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != "" {
		return errors.New("surface reused")
	}
	s.doc = html
	return nil
}

func (s *fakeSurface) WaitFonts(ctx context.Context) error {
	s.record(stageFonts)
	if s.blockFonts {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.failAt == stageFonts {
		return errFake
	}
	return nil
}

func (s *fakeSurface) EmulateMedia(ctx context.Context, media string) error {
	s.record(stageMedia)
	if s.failAt == stageMedia {
		return errFake
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media = media
	return nil
}

func (s *fakeSurface) PDF(ctx context.Context, opts browser.PDFOptions) ([]byte, error) {
	s.record(stagePDF)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failAt == stagePDF {
		return nil, errFake
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	return []byte("%PDF-fake\n" + s.doc), nil
}

func (s *fakeSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *fakeSurface) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func (s *fakeSurface) callList() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.calls, ",")
}
