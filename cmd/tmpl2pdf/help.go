package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tmpl2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Serve the PDF generator over HTTP")
	fmt.Fprintln(w, "  render     Render one payload to PDF or HTML")
	fmt.Fprintln(w, "  templates  List registered templates")
	fmt.Fprintln(w, "  schema     Print the payload schema of a template")
	fmt.Fprintln(w, "  preview    Print the source of a template")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check the browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tmpl2pdf help <command>' for details on a specific command.")
}

// commandHelp describes one command for 'tmpl2pdf help <command>'.
type commandHelp struct {
	usage   string
	summary string
	flags   func(fs *flag.FlagSet)
}

var commandHelps = map[string]commandHelp{
	"serve": {
		usage:   "tmpl2pdf serve [flags]",
		summary: "Start the browser and serve POST /pdf-generator/generate/{template}.",
		flags: func(fs *flag.FlagSet) {
			f := &cmdFlags{}
			addConfigFlags(fs, f)
		},
	},
	"render": {
		usage:   "tmpl2pdf render <template> [payload|-] [flags]",
		summary: "Validate a JSON payload and write the document. The payload is read from stdin when omitted or '-'.",
		flags: func(fs *flag.FlagSet) {
			f := &cmdFlags{}
			addCommonFlags(fs, &f.common)
			addEngineFlags(fs, &f.engine)
			addRenderFlags(fs, &f.render)
			addOutputFlags(fs, &f.out)
		},
	},
	"templates": {usage: "tmpl2pdf templates", summary: "List registered template names, one per line."},
	"schema":    {usage: "tmpl2pdf schema <template>", summary: "Print the OpenAPI schema of the payload accepted by a template."},
	"preview":   {usage: "tmpl2pdf preview <template>", summary: "Print the source text of a template."},
	"config": {
		usage:   "tmpl2pdf config [flags]",
		summary: "Print the configuration after the file, TMPL2PDF_* env vars and flags are merged.",
		flags: func(fs *flag.FlagSet) {
			f := &cmdFlags{}
			addConfigFlags(fs, f)
		},
	},
	"doctor": {
		usage:   "tmpl2pdf doctor [--json] [flags]",
		summary: "Check the browser, environment, fonts and cache.",
		flags: func(fs *flag.FlagSet) {
			f := &cmdFlags{}
			addConfigFlags(fs, f)
			fs.Bool("json", false, "machine-readable output")
		},
	},
}

// runHelp prints help for the command named in args, or the main usage.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	h, ok := commandHelps[args[0]]
	if !ok {
		fmt.Fprintf(env.Stdout, "Unknown command %q.\n\n", args[0])
		printUsage(env.Stdout)
		return
	}

	fmt.Fprintf(env.Stdout, "Usage: %s\n\n%s\n", h.usage, h.summary)
	if h.flags == nil {
		return
	}
	fs := newFlagSet(args[0], env.Stdout)
	h.flags(fs)
	fmt.Fprintln(env.Stdout)
	fmt.Fprintln(env.Stdout, "Flags:")
	fmt.Fprint(env.Stdout, fs.FlagUsages())
}
