package main

import (
	"context"
	"fmt"

	tmpl2pdf "github.com/alnah/go-tmpl2pdf"
	"github.com/alnah/go-tmpl2pdf/internal/fileutil"
)

// Payload and output limits.
const (
	maxPayloadSize  = 1 << 20
	filePermissions = 0o644
)

// runRender generates one document from a payload file or stdin.
func runRender(ctx context.Context, args []string, env *Environment) error {
	fs := newFlagSet("render", env.Stderr)
	f := &cmdFlags{}
	addCommonFlags(fs, &f.common)
	addEngineFlags(fs, &f.engine)
	addRenderFlags(fs, &f.render)
	addOutputFlags(fs, &f.out)

	rest, err := parseFlags(fs, args)
	if err != nil {
		return err
	}
	if len(rest) < 1 || len(rest) > 2 {
		return fmt.Errorf("%w: usage: tmpl2pdf render <template> [payload|-]", ErrUsage)
	}
	name := rest[0]
	payloadPath := "-"
	if len(rest) == 2 {
		payloadPath = rest[1]
	}

	cfg, err := resolveConfig(fs, f, env)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, env.Stderr)
	if err != nil {
		return err
	}

	raw, err := fileutil.ReadFileLimited(payloadPath, env.Stdin, maxPayloadSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadPayload, err)
	}

	gen, err := tmpl2pdf.NewGenerator(generatorOptions(cfg, log, env)...)
	if err != nil {
		return err
	}
	defer func() {
		if err := gen.Close(); err != nil {
			log.Warn("closing generator", "err", err)
		}
	}()

	var out []byte
	ext := ".pdf"
	if f.out.htmlOnly {
		ext = ".html"
		doc, err := gen.Markup(name, raw)
		if err != nil {
			return err
		}
		out = []byte(doc)
	} else {
		out, err = gen.Generate(ctx, name, raw)
		if err != nil {
			return err
		}
	}

	outPath := f.out.output
	if outPath == "" {
		outPath = name + ext
	}
	if outPath == "-" {
		if _, err := env.Stdout.Write(out); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}

	if err := fileutil.WriteFileAtomic(outPath, out, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	log.Info("wrote document", "template", name, "path", outPath, "bytes", len(out))
	return nil
}
