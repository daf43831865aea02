// Package richtext renders the Markdown subset accepted in rich-content
// payload fields into sanitized HTML fragments.
//
// The pipeline is goldmark (GFM, raw HTML omitted) with class-based chroma
// highlighting for fenced code, followed by a bluemonday allowlist policy.
// The result is safe to embed with html/template as template.HTML.
package richtext

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrConversion indicates Markdown conversion failed.
var ErrConversion = errors.New("rich content conversion failed")

// highlightStyle is the chroma style used for fenced code blocks.
const highlightStyle = "github"

var alignPattern = regexp.MustCompile(`^(left|right|center)$`)

// Renderer converts rich content to sanitized HTML. Safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a Renderer.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			// WithUnsafe is never set: raw HTML in payloads is dropped.
		),
	)
	return &Renderer{md: md, policy: newPolicy()}
}

// Render converts src to a sanitized fragment. Empty input yields "".
func (r *Renderer) Render(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}

	// #nosec G203 -- output of an allowlist sanitizer
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "hr", "strong", "em", "b", "i", "del", "s",
		"ul", "ol", "li", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"table", "thead", "tbody", "tr", "th", "td",
		"pre", "code", "span", "a",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("pre", "code", "span")
	p.AllowAttrs("align").Matching(alignPattern).OnElements("th", "td")
	return p
}

var (
	stylesheetOnce sync.Once
	stylesheet     string
)

// Stylesheet returns the CSS for highlighted code blocks. The output is
// stable across calls.
func Stylesheet() string {
	stylesheetOnce.Do(func() {
		var buf bytes.Buffer
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err := formatter.WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
			return
		}
		stylesheet = buf.String()
	})
	return stylesheet
}
