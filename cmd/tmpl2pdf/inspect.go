package main

import (
	"encoding/json"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/yamlutil"
)

// parseInspect parses a command that takes no flags and exactly want positional
// arguments.
func parseInspect(name string, args []string, want int, usage string, w io.Writer) ([]string, error) {
	fs := newFlagSet(name, w)
	rest, err := parseFlags(fs, args)
	if err != nil {
		return nil, err
	}
	if len(rest) != want {
		return nil, fmt.Errorf("%w: usage: tmpl2pdf %s", ErrUsage, usage)
	}
	return rest, nil
}

// runTemplates lists the registered template names, one per line.
func runTemplates(args []string, env *Environment) error {
	if _, err := parseInspect("templates", args, 0, "templates", env.Stderr); err != nil {
		return err
	}
	gen, err := tmpl2pdf.NewGenerator()
	if err != nil {
		return err
	}
	defer gen.Close()

	for _, name := range gen.Templates() {
		fmt.Fprintln(env.Stdout, name)
	}
	return nil
}

// runSchema prints the payload schema of a template as OpenAPI JSON.
func runSchema(args []string, env *Environment) error {
	rest, err := parseInspect("schema", args, 1, "schema <template>", env.Stderr)
	if err != nil {
		return err
	}
	gen, err := tmpl2pdf.NewGenerator()
	if err != nil {
		return err
	}
	defer gen.Close()

	s, err := gen.Schema(rest[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// runPreview prints the source text of a template.
func runPreview(args []string, env *Environment) error {
	rest, err := parseInspect("preview", args, 1, "preview <template>", env.Stderr)
	if err != nil {
		return err
	}
	gen, err := tmpl2pdf.NewGenerator()
	if err != nil {
		return err
	}
	defer gen.Close()

	src, err := gen.TemplateSource(rest[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(env.Stdout, src)
	return err
}

// runConfig prints the effective configuration as YAML after the config
// file, env vars and flags are merged.
func runConfig(args []string, env *Environment) error {
	fs := newFlagSet("config", env.Stderr)
	f := &cmdFlags{}
	addConfigFlags(fs, f)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: config takes no arguments, got %q", ErrUsage, rest)
	}

	cfg, err := resolveConfig(fs, f, env)
	if err != nil {
		return err
	}
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}

// addConfigFlags registers every flag that feeds the configuration.
func addConfigFlags(fs *flag.FlagSet, f *cmdFlags) {
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addRenderFlags(fs, &f.render)
	addServeFlags(fs, &f.serve)
}
