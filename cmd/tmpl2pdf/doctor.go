package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-tmpl2pdf/internal/assets"
	"github.com/alnah/go-tmpl2pdf/internal/cache"
	"github.com/alnah/go-tmpl2pdf/internal/config"
	"github.com/alnah/go-tmpl2pdf/internal/hints"
	"github.com/alnah/go-tmpl2pdf/internal/templates"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

const doctorProbeTimeout = 3 * time.Second

// lookBrowser locates an installed browser. Replaced in tests.
var lookBrowser = launcher.LookPath

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"`
	Browser   browserInfo   `json:"browser"`
	Env       envInfo       `json:"environment"`
	Templates templatesInfo `json:"templates"`
	Fonts     fontsInfo     `json:"fonts"`
	Cache     cacheInfo     `json:"cache"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

type browserInfo struct {
	Backend string `json:"backend"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
}

type templatesInfo struct {
	Names []string `json:"names"`
}

type fontsInfo struct {
	Dir   string `json:"dir,omitempty"`
	Faces int    `json:"faces"`
}

type cacheInfo struct {
	Addr      string `json:"addr,omitempty"`
	Reachable bool   `json:"reachable"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = usage.
func runDoctorCmd(args []string, env *Environment) int {
	fs := newFlagSet("doctor", env.Stderr)
	f := &cmdFlags{}
	addConfigFlags(fs, f)
	jsonOutput := fs.Bool("json", false, "machine-readable output")

	if _, err := parseFlags(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		printError(env.Stderr, err)
		return ExitUsage
	}

	cfg, err := resolveConfig(fs, f, env)
	if err != nil {
		printError(env.Stderr, err)
		return exitCodeFor(err)
	}

	result := runDoctor(cfg)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks against cfg.
func runDoctor(cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env:    envInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	checkBrowser(result, cfg.Engine)
	checkEnvironment(result, cfg.Engine)
	checkTemplates(result)
	checkFonts(result, cfg.Render.FontsDir)
	checkCache(result, cfg.Cache.RedisAddr)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkBrowser detects the browser the engine would launch.
func checkBrowser(result *doctorResult, ec config.EngineConfig) {
	result.Browser.Backend = ec.Backend
	result.Browser.Sandbox = !ec.NoSandbox

	path := ec.BrowserBin
	if path == "" {
		var found bool
		path, found = lookBrowser()
		if !found {
			if ec.AutoDownload {
				result.Warnings = append(result.Warnings,
					"No browser installed; Chromium will be downloaded on first render")
				return
			}
			result.Errors = append(result.Errors,
				"Chrome/Chromium not found. Install Chrome, set ROD_BROWSER_BIN or pass --auto-download")
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Browser not found at %s", path))
		return
	}
	result.Browser.Found = true
	result.Browser.Path = path

	ctx, cancel := context.WithTimeout(context.Background(), doctorProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- configured browser binary
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get browser version: %v", err))
		return
	}
	result.Browser.Version = strings.TrimSpace(string(out))
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, ec config.EngineConfig) {
	result.Env.Container, result.Env.ContainerHint = isContainer()
	result.Env.CI = hints.InCI()

	if (result.Env.Container || result.Env.CI) && !ec.NoSandbox {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but the sandbox is enabled. Set ROD_NO_SANDBOX=1 or pass --no-sandbox")
	}
}

// isContainer reports whether we run in a container and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("TMPL2PDF_CONTAINER") == "1" {
		return true, "TMPL2PDF_CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkTemplates verifies the built-in registry.
func checkTemplates(result *doctorResult) {
	result.Templates.Names = templates.Default().Names()
	if len(result.Templates.Names) == 0 {
		result.Errors = append(result.Errors, "No templates registered")
	}
}

// checkFonts loads the configured font directory.
func checkFonts(result *doctorResult, dir string) {
	result.Fonts.Dir = dir
	if dir == "" {
		return
	}
	faces, err := assets.LoadFonts(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Fonts: %v", err))
		return
	}
	result.Fonts.Faces = len(faces)
	if len(faces) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("No font files in %s", dir))
	}
}

// checkCache pings the configured Redis. An unreachable cache is a
// warning: generation works without it.
func checkCache(result *doctorResult, addr string) {
	result.Cache.Addr = addr
	if addr == "" {
		return
	}
	store := cache.New(addr)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), doctorProbeTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Cache unreachable at %s: %v", addr, err))
		return
	}
	result.Cache.Reachable = true
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "tmpl2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "tmpl2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Browser (%s)\n", r.Browser.Backend)
	if r.Browser.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Browser.Path)
		if r.Browser.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Browser.Version)
		}
		if r.Browser.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled")
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Templates")
	fmt.Fprintf(w, "  [OK] %s\n", strings.Join(r.Templates.Names, ", "))
	if r.Fonts.Dir != "" {
		fmt.Fprintf(w, "  [OK] Fonts: %d face(s) from %s\n", r.Fonts.Faces, r.Fonts.Dir)
	}
	fmt.Fprintln(w)

	if r.Cache.Addr != "" {
		fmt.Fprintln(w, "Cache")
		if r.Cache.Reachable {
			fmt.Fprintf(w, "  [OK] Redis at %s\n", r.Cache.Addr)
		} else {
			fmt.Fprintf(w, "  [WARN] Redis at %s unreachable\n", r.Cache.Addr)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to render")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
