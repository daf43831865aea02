// Package markup wraps rendered template bodies into complete, self-contained
// HTML documents ready for the exporter.
//
// The shell carries everything a page needs: the A4 page box, the typography
// set with optional inlined font faces, precompiled utility CSS and the code
// highlighting stylesheet. Documents never reference the network.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/alnah/go-tmpl2pdf/internal/assets"
	"github.com/alnah/go-tmpl2pdf/internal/richtext"
)

// ErrShellRender indicates the document shell failed to execute.
var ErrShellRender = errors.New("document shell rendering failed")

// ReadyMeta is the meta name that tells the exporter to await
// document.fonts.ready before printing.
const ReadyMeta = "tmpl2pdf-ready"

// Document defaults.
const (
	DefaultLang  = "de"
	DefaultTitle = "Lebenslauf"
)

// Fallback font stacks, used after the configured family.
const (
	sansFallback = `"Helvetica Neue", Arial, "Liberation Sans", "DejaVu Sans", sans-serif`
	monoFallback = `"DejaVu Sans Mono", "Liberation Mono", Menlo, monospace`
)

const shellSource = `<!doctype html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="` + ReadyMeta + `" content="fonts">
<title>{{.Title}}</title>
<style>{{.CSS}}</style>
</head>
<body class="bg-white">
<div id="root">{{.Body}}</div>
</body>
</html>
`

var shellTemplate = template.Must(template.New("shell").Parse(shellSource))

// Typography selects the document font family and the faces to inline.
// An empty Family with faces uses the first face's family.
type Typography struct {
	Family string
	Faces  []assets.FontFace
}

// Document is a rendered template body plus its head metadata.
type Document struct {
	Lang  string
	Title string
	Body  template.HTML
}

// Shell renders Documents. It is immutable and safe for concurrent use.
type Shell struct {
	css template.CSS
}

// NewShell builds a shell with the given typography.
func NewShell(typo Typography) (*Shell, error) {
	css, err := buildCSS(typo)
	if err != nil {
		return nil, err
	}
	// #nosec G203 -- assembled from embedded styles and validated font names
	return &Shell{css: template.CSS(sanitizeCSS(css))}, nil
}

// Wrap returns the full HTML document for doc. Output is deterministic.
func (s *Shell) Wrap(doc Document) (string, error) {
	if doc.Lang == "" {
		doc.Lang = DefaultLang
	}
	if doc.Title == "" {
		doc.Title = DefaultTitle
	}

	var buf bytes.Buffer
	err := shellTemplate.Execute(&buf, struct {
		Document
		CSS template.CSS
	}{doc, s.css})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrShellRender, err)
	}
	return buf.String(), nil
}

func buildCSS(typo Typography) (string, error) {
	base, err := assets.LoadStyle(assets.BaseStyle)
	if err != nil {
		return "", err
	}
	utilities, err := assets.LoadStyle(assets.UtilitiesStyle)
	if err != nil {
		return "", err
	}

	family := typo.Family
	if family == "" && len(typo.Faces) > 0 {
		family = typo.Faces[0].Family
	}
	if strings.ContainsAny(family, `"'\;{}<>`) {
		return "", fmt.Errorf("%w: invalid font family %q", ErrShellRender, family)
	}
	body := sansFallback
	if family != "" {
		body = fmt.Sprintf("%q, %s", family, sansFallback)
	}

	var b strings.Builder
	for _, face := range typo.Faces {
		fmt.Fprintf(&b, "@font-face{font-family:%q;font-weight:%d;font-style:%s;font-display:block;src:url(%s) format(%q);}\n",
			face.Family, face.Weight, face.Style, face.DataURI(), face.Format)
	}
	fmt.Fprintf(&b, ":root{--font-body:%s;--font-heading:%s;--font-mono:%s;}\n", body, body, monoFallback)
	b.WriteString(base)
	b.WriteString(utilities)
	b.WriteString(richtext.Stylesheet())
	return b.String(), nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
