package hints

// Notes:
// - ForBrowserConnect tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable
// These are acceptable gaps: we test observable behavior through environment manipulation.

import (
	"strings"
	"testing"
)

// clearCI unsets every variable InCI looks at.
func clearCI(t *testing.T) {
	t.Helper()
	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(v, "")
	}
}

// ---------------------------------------------------------------------------
// TestForBrowserConnect - Environment-aware launch hints
// ---------------------------------------------------------------------------

func TestForBrowserConnect(t *testing.T) {
	tests := []struct {
		name        string
		container   bool
		ci          string
		noSandbox   string
		browserBin  string
		contains    []string
		notContains []string
		wantEmpty   bool
	}{
		{
			name:     "CI suggests sandbox and binary",
			ci:       "true",
			contains: []string{"ROD_NO_SANDBOX", "ROD_BROWSER_BIN", "--auto-download"},
		},
		{
			name:      "container suggests sandbox",
			container: true,
			contains:  []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "sandbox already disabled",
			container:   true,
			noSandbox:   "1",
			notContains: []string{"ROD_NO_SANDBOX"},
		},
		{
			name:        "binary already set",
			browserBin:  "/usr/bin/chromium",
			notContains: []string{"ROD_BROWSER_BIN"},
			wantEmpty:   true,
		},
		{
			name:       "everything configured",
			container:  true,
			ci:         "true",
			noSandbox:  "1",
			browserBin: "/usr/bin/chromium",
			wantEmpty:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := IsInContainer
			defer func() { IsInContainer = orig }()
			IsInContainer = func() bool { return tt.container }

			clearCI(t)
			t.Setenv("CI", tt.ci)
			t.Setenv("ROD_NO_SANDBOX", tt.noSandbox)
			t.Setenv("ROD_BROWSER_BIN", tt.browserBin)

			hint := ForBrowserConnect()

			if tt.wantEmpty {
				if hint != "" {
					t.Errorf("expected empty hint, got %q", hint)
				}
				return
			}
			if !strings.HasPrefix(hint, "\n  hint: ") {
				t.Errorf("expected hint prefix, got %q", hint)
			}
			for _, want := range tt.contains {
				if !strings.Contains(hint, want) {
					t.Errorf("hint %q missing %q", hint, want)
				}
			}
			for _, bad := range tt.notContains {
				if strings.Contains(hint, bad) {
					t.Errorf("hint %q should not contain %q", hint, bad)
				}
			}
		})
	}
}

func TestInCI(t *testing.T) {
	clearCI(t)
	if InCI() {
		t.Error("InCI() = true with no CI variables")
	}
	t.Setenv("GITLAB_CI", "true")
	if !InCI() {
		t.Error("InCI() = false with GITLAB_CI set")
	}
}

// ---------------------------------------------------------------------------
// Static hints
// ---------------------------------------------------------------------------

func TestForTimeout(t *testing.T) {
	t.Parallel()

	hint := ForTimeout()
	for _, want := range []string{"--timeout", "--start-timeout"} {
		if !strings.Contains(hint, want) {
			t.Errorf("hint %q missing %q", hint, want)
		}
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{"empty paths", nil, "--config"},
		{"with user path", []string{"./work.yaml", "/home/u/.config/go-tmpl2pdf/work.yaml"}, "create /home/u/.config/go-tmpl2pdf/work.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hint := ForConfigNotFound(tt.paths)
			if !strings.Contains(hint, tt.contains) {
				t.Errorf("expected hint to contain %q, got %q", tt.contains, hint)
			}
		})
	}
}

func TestForTemplateNotFound(t *testing.T) {
	t.Parallel()

	if got := ForTemplateNotFound(nil); got != "" {
		t.Errorf("expected empty hint, got %q", got)
	}
	got := ForTemplateNotFound([]string{"lebenslauf_0001", "lebenslauf_0002"})
	if !strings.Contains(got, "lebenslauf_0001, lebenslauf_0002") {
		t.Errorf("hint %q should list templates", got)
	}
}

func TestFormat_Consistency(t *testing.T) {
	t.Parallel()

	hints := []string{
		ForTimeout(),
		ForOutputDirectory(),
		ForValidation("lebenslauf_0001"),
		ForConfigNotFound(nil),
	}

	for _, h := range hints {
		if !strings.HasPrefix(h, "\n  hint: ") {
			t.Errorf("hint format inconsistent: %q", h)
		}
	}
}
