// Package tmpl2pdf renders structured JSON payloads into PDF documents using
// compiled-in templates and headless Chrome.
//
// # Quick Start
//
// Create a generator, generate, and close when done:
//
//	gen, err := tmpl2pdf.NewGenerator()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	pdf, err := gen.Generate(ctx, "lebenslauf_0001", []byte(`{
//	    "name": "Ada Lovelace",
//	    "email": "ada@example.com",
//	    "skills": ["Mathematics"]
//	}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("lebenslauf.pdf", pdf, 0644)
//
// # Pipeline
//
// Generate runs these stages:
//
//  1. Template lookup by name (Templates lists the registered names)
//  2. Strict payload validation; every issue is reported at once
//  3. Markup rendering with html/template and the document shell
//  4. Admission: at most ResolveSurfaceLimit documents print concurrently
//  5. Export on an isolated browser context of the shared Chrome process
//
// Markup is deterministic. Use Markup to inspect the HTML without printing.
//
// # Errors
//
// Failures are classified with errors.Is:
//
//	var verr *tmpl2pdf.ValidationError
//	switch {
//	case errors.Is(err, tmpl2pdf.ErrEmptyTemplateName): // 400
//	case errors.Is(err, tmpl2pdf.ErrTemplateNotFound):  // 404
//	case errors.As(err, &verr):                         // 400 with verr.Issues
//	case err != nil:                                    // 500
//	}
//
// # Browser Lifecycle
//
// One browser process is shared by all requests. It starts on first use (or
// on Start) exactly once, even under concurrent load. A failed start is
// retried by the next request. Close shuts it down; the generator then
// reports ErrEngineClosed, which also matches ErrEngineStart.
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. With WithAutoDownload the go-rod
// launcher downloads a managed Chromium on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, use WithNoSandbox. Use WithBrowserBin
// to specify a custom Chrome binary.
package tmpl2pdf
