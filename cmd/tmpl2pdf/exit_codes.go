package main

import (
	"errors"
	"os"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/browser"
	"github.com/alnah/go-tmpl2pdf/internal/config"
	"github.com/alnah/go-tmpl2pdf/internal/fileutil"
)

// Exit codes for tmpl2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, template name or payload
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, tmpl2pdf.ErrEngineStart) ||
		errors.Is(err, tmpl2pdf.ErrEngineClosed) ||
		errors.Is(err, tmpl2pdf.ErrExportFailed) ||
		errors.Is(err, browser.ErrLaunch) ||
		errors.Is(err, browser.ErrBrowserNotFound) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadPayload) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrFileTooLarge) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, tmpl2pdf.ErrTemplateNotFound) ||
		errors.Is(err, tmpl2pdf.ErrValidation) ||
		errors.Is(err, browser.ErrUnknownBackend) {
		return ExitUsage
	}

	return ExitGeneral
}
