package tmpl2pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
)

const readyDoc = `<html><head><meta name="tmpl2pdf-ready" content="fonts"></head><body>x</body></html>`

func newTestExporter(fontTimeout time.Duration) *exporter {
	return &exporter{
		fontTimeout: fontTimeout,
		pdf:         browser.A4(),
		log:         logging.NewNop(),
		observer:    nopObserver{},
	}
}

func TestExporter_Success(t *testing.T) {
	t.Parallel()

	b := &fakeBrowser{}
	pdf, err := newTestExporter(time.Second).export(context.Background(), b, readyDoc)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("export() = %q, want PDF bytes", pdf)
	}

	surfaces := b.allSurfaces()
	if len(surfaces) != 1 {
		t.Fatalf("surfaces = %d, want 1", len(surfaces))
	}
	s := surfaces[0]
	if got := s.callList(); got != "load,fonts,media,pdf" {
		t.Errorf("stage order = %q, want load,fonts,media,pdf", got)
	}
	if s.media != browser.MediaScreen {
		t.Errorf("media = %q, want screen", s.media)
	}
	if s.opts != browser.A4() {
		t.Errorf("pdf options = %+v, want A4", s.opts)
	}
	if s.closeCount() != 1 {
		t.Errorf("surface closed %d times, want 1", s.closeCount())
	}
}

func TestExporter_NoReadyMarkerSkipsFontWait(t *testing.T) {
	t.Parallel()

	b := &fakeBrowser{}
	if _, err := newTestExporter(time.Second).export(context.Background(), b, "<p>plain</p>"); err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if got := b.allSurfaces()[0].callList(); got != "load,media,pdf" {
		t.Errorf("stage order = %q, want load,media,pdf", got)
	}
}

func TestExporter_StageFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		failAt    string
		wantStage error
	}{
		{failAt: stageNewSurface, wantStage: ErrPageCreate},
		{failAt: stageLoad, wantStage: ErrPageLoad},
		{failAt: stageMedia, wantStage: ErrMediaEmulation},
		{failAt: stagePDF, wantStage: ErrPDFGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.failAt, func(t *testing.T) {
			t.Parallel()

			b := &fakeBrowser{failAt: tt.failAt}
			_, err := newTestExporter(time.Second).export(context.Background(), b, readyDoc)

			if !errors.Is(err, ErrExportFailed) || !errors.Is(err, tt.wantStage) || !errors.Is(err, errFake) {
				t.Fatalf("export() error = %v, want ErrExportFailed wrapping %v and the cause", err, tt.wantStage)
			}
			for i, s := range b.allSurfaces() {
				if s.closeCount() != 1 {
					t.Errorf("surface %d closed %d times, want 1", i, s.closeCount())
				}
			}
			if b.closeCount() != 0 {
				t.Error("request failure closed the browser")
			}
		})
	}
}

func TestExporter_FontFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	b := &fakeBrowser{failAt: stageFonts}
	if _, err := newTestExporter(time.Second).export(context.Background(), b, readyDoc); err != nil {
		t.Fatalf("export() error = %v, want font failure ignored", err)
	}
}

func TestExporter_FontTimeoutProceeds(t *testing.T) {
	t.Parallel()

	b := &fakeBrowser{blockFonts: true}
	began := time.Now()
	pdf, err := newTestExporter(20*time.Millisecond).export(context.Background(), b, readyDoc)
	if err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if len(pdf) == 0 {
		t.Error("export() returned no PDF")
	}
	if elapsed := time.Since(began); elapsed > time.Second {
		t.Errorf("export() took %v, font wait not bounded", elapsed)
	}
}

func TestExporter_RequestDeadlineDuringFontWait(t *testing.T) {
	t.Parallel()

	b := &fakeBrowser{blockFonts: true}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestExporter(time.Minute).export(ctx, b, readyDoc)
	if !errors.Is(err, ErrExportFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("export() error = %v, want ErrExportFailed wrapping deadline", err)
	}
	if s := b.allSurfaces()[0]; s.closeCount() != 1 {
		t.Errorf("surface closed %d times, want 1", s.closeCount())
	}
}
