//go:build integration

package browser

// Notes:
// - Runs each backend against a real Chrome. ROD_BROWSER_BIN selects the
//   binary; otherwise the backends look one up or download Chromium.

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"
)

const testTimeout = 60 * time.Second

const testDocument = `<!doctype html><html><head><style>@page{size:A4;margin:0}</style></head>` +
	`<body><h1>Integration</h1></body></html>`

func testOptions() Options {
	return Options{
		Bin:          os.Getenv("ROD_BROWSER_BIN"),
		NoSandbox:    os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true",
		AutoDownload: true,
	}
}

func TestBackends_PrintPDF(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()

			l, err := New(backend, testOptions())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			b, err := l.Launch(ctx)
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			defer b.Close()

			s, err := b.NewSurface(ctx)
			if err != nil {
				t.Fatalf("NewSurface() error = %v", err)
			}
			defer s.Close()

			if err := s.Load(ctx, testDocument); err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if err := s.WaitFonts(ctx); err != nil {
				t.Fatalf("WaitFonts() error = %v", err)
			}
			if err := s.EmulateMedia(ctx, MediaScreen); err != nil {
				t.Fatalf("EmulateMedia() error = %v", err)
			}
			pdf, err := s.PDF(ctx, A4())
			if err != nil {
				t.Fatalf("PDF() error = %v", err)
			}
			if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
				t.Errorf("PDF() output does not start with %%PDF-")
			}

			if err := s.Close(); err != nil {
				t.Errorf("Surface.Close() error = %v", err)
			}
			if err := b.Close(); err != nil {
				t.Errorf("Browser.Close() error = %v", err)
			}
			// Second close is a no-op.
			_ = b.Close()
		})
	}
}
