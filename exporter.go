package tmpl2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
	"github.com/alnah/go-tmpl2pdf/internal/markup"
)

// defaultFontTimeout bounds the wait for web fonts before printing.
const defaultFontTimeout = 5 * time.Second

// readyMarker is present in documents that want the font wait.
var readyMarker = `name="` + markup.ReadyMeta + `"`

// exporter prints one document per call on a fresh surface.
type exporter struct {
	fontTimeout time.Duration
	pdf         browser.PDFOptions
	log         *slog.Logger
	observer    Observer
}

// export prints doc on its own surface of b. The surface is closed on every
// path; the browser itself is never touched on failure.
func (x *exporter) export(ctx context.Context, b browser.Browser, doc string) ([]byte, error) {
	log := logging.FromContext(ctx, x.log)

	surface, err := b.NewSurface(ctx)
	if err != nil {
		return nil, stageError(ErrPageCreate, err)
	}
	x.observer.SurfaceOpened()
	defer func() {
		if err := surface.Close(); err != nil {
			log.Warn("surface close failed", "error", err)
		}
		x.observer.SurfaceClosed()
	}()

	if err := surface.Load(ctx, doc); err != nil {
		return nil, stageError(ErrPageLoad, err)
	}

	if strings.Contains(doc, readyMarker) {
		if err := x.waitFonts(ctx, log, surface); err != nil {
			return nil, stageError(ErrPageLoad, err)
		}
	}

	if err := surface.EmulateMedia(ctx, browser.MediaScreen); err != nil {
		return nil, stageError(ErrMediaEmulation, err)
	}

	pdf, err := surface.PDF(ctx, x.pdf)
	if err != nil {
		return nil, stageError(ErrPDFGeneration, err)
	}
	return pdf, nil
}

// waitFonts waits up to fontTimeout for fonts. Running out of font time is
// not an error: the page prints with whatever has loaded. Only the end of
// the request context aborts.
func (x *exporter) waitFonts(ctx context.Context, log *slog.Logger, s browser.Surface) error {
	fctx, cancel := context.WithTimeout(ctx, x.fontTimeout)
	defer cancel()

	err := s.WaitFonts(fctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Debug("font wait incomplete, printing anyway", "error", err, "timeout", x.fontTimeout)
	return nil
}

func stageError(stage, err error) error {
	return fmt.Errorf("%w: %w: %w", ErrExportFailed, stage, err)
}
