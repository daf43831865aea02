package tmpl2pdf

import (
	"context"
	"errors"
	"time"
)

// Generation outcomes reported to Observer.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeRenderError = "render_error"
	OutcomeEngineError = "engine_error"
	OutcomeExportError = "export_error"
	OutcomeCanceled    = "canceled"
	OutcomeError       = "error"
)

// Observer receives pipeline events, typically to record metrics.
// Implementations must be safe for concurrent use.
type Observer interface {
	GenerateDone(template, outcome string, elapsed time.Duration)
	EngineStarted(elapsed time.Duration, err error)
	SurfaceOpened()
	SurfaceClosed()
	CacheLookup(hit bool)
}

type nopObserver struct{}

func (nopObserver) GenerateDone(string, string, time.Duration) {}
func (nopObserver) EngineStarted(time.Duration, error)         {}
func (nopObserver) SurfaceOpened()                              {}
func (nopObserver) SurfaceClosed()                              {}
func (nopObserver) CacheLookup(bool)                            {}

// Outcome classifies a Generate error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrTemplateNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, ErrRender):
		return OutcomeRenderError
	case errors.Is(err, ErrEngineStart), errors.Is(err, ErrEngineClosed):
		return OutcomeEngineError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	case errors.Is(err, ErrExportFailed):
		return OutcomeExportError
	default:
		return OutcomeError
	}
}
