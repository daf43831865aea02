package tmpl2pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-tmpl2pdf/internal/schema"
)

// Sentinel errors for library operations.
var (
	// ErrTemplateNotFound indicates no template is registered under the name.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrEmptyTemplateName indicates an empty template name. Errors carrying it
	// also match ErrTemplateNotFound.
	ErrEmptyTemplateName = errors.New("template name is required")

	// ErrValidation indicates the payload violates the template schema.
	// Match it with errors.Is and extract issues with errors.As on
	// *ValidationError.
	ErrValidation = errors.New("payload validation failed")

	// ErrRender indicates the template could not produce markup.
	ErrRender = errors.New("markup rendering failed")

	// ErrExportFailed indicates the document could not be printed.
	ErrExportFailed = errors.New("PDF export failed")

	// ErrEngineStart indicates the browser could not be started.
	ErrEngineStart = errors.New("render engine failed to start")

	// ErrEngineClosed indicates the engine was shut down. Errors carrying it
	// also match ErrEngineStart.
	ErrEngineClosed = errors.New("render engine is closed")
)

// Export stages, wrapped by ErrExportFailed.
var (
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrMediaEmulation = errors.New("failed to emulate media type")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// Issue is a single field-level payload violation. Path is dot separated,
// e.g. "sections.0.title".
type Issue = schema.Issue

// ValidationError carries every issue found in a payload.
type ValidationError struct {
	Template string
	Issues   []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Template, strings.Join(parts, "; "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
