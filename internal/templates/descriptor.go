package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/alnah/go-tmpl2pdf/internal/richtext"
	"github.com/alnah/go-tmpl2pdf/internal/schema"
)

// Sentinel errors for template rendering.
var (
	ErrDecode = errors.New("payload does not match template props")
	ErrRender = errors.New("template rendering failed")
)

//go:embed sources/*.gohtml
var sources embed.FS

var richRenderer = sync.OnceValue(richtext.New)

// Descriptor describes one template. Descriptors are immutable.
type Descriptor struct {
	Name   string
	Title  string // document <title>
	Lang   string // document language
	Schema *schema.ObjectType
	Source string // template source as embedded

	render func(props map[string]any) (template.HTML, error)
}

// Render executes the template with a validated, normalized payload.
// Output is deterministic for identical props.
func (d *Descriptor) Render(props map[string]any) (template.HTML, error) {
	return d.render(props)
}

// newDescriptor compiles an embedded source whose data is the props type P.
func newDescriptor[P any](name, title string, s *schema.ObjectType) *Descriptor {
	src, err := sources.ReadFile("sources/" + name + ".gohtml")
	if err != nil {
		panic(fmt.Sprintf("templates: missing source for %q: %v", name, err))
	}

	tmpl := template.Must(template.New(name).
		Option("missingkey=error").
		Funcs(template.FuncMap{"rich": renderRich}).
		Parse(string(src)))

	d := &Descriptor{
		Name:   name,
		Title:  title,
		Lang:   "de",
		Schema: s,
		Source: string(src),
	}
	d.render = func(props map[string]any) (template.HTML, error) {
		var data P
		if err := decodeProps(props, &data); err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrRender, name, err)
		}
		// #nosec G203 -- produced by html/template with contextual escaping
		return template.HTML(buf.String()), nil
	}
	return d
}

func decodeProps(props map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "json",
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if err := dec.Decode(props); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func renderRich(src string) (template.HTML, error) {
	return richRenderer().Render(src)
}
