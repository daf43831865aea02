package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// ---------------------------------------------------------------------------
// TestRecorder - Event to metric mapping
// ---------------------------------------------------------------------------

func TestRecorder_GenerateDone(t *testing.T) {
	t.Parallel()

	r := New()
	r.GenerateDone("lebenslauf_0001", "ok", 120*time.Millisecond)
	r.GenerateDone("lebenslauf_0001", "ok", 80*time.Millisecond)
	r.GenerateDone("lebenslauf_0001", "invalid", time.Millisecond)

	if got := testutil.ToFloat64(r.generations.WithLabelValues("lebenslauf_0001", "ok")); got != 2 {
		t.Errorf("ok generations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.generations.WithLabelValues("lebenslauf_0001", "invalid")); got != 1 {
		t.Errorf("invalid generations = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestRecorder_EngineStarted(t *testing.T) {
	t.Parallel()

	r := New()
	r.EngineStarted(time.Second, nil)
	r.EngineStarted(time.Second, errors.New("no chrome"))
	r.EngineStarted(time.Second, nil)

	if got := testutil.ToFloat64(r.engineStarts.WithLabelValues("ok")); got != 2 {
		t.Errorf("ok starts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.engineStarts.WithLabelValues("error")); got != 1 {
		t.Errorf("failed starts = %v, want 1", got)
	}
}

func TestRecorder_Surfaces(t *testing.T) {
	t.Parallel()

	r := New()
	r.SurfaceOpened()
	r.SurfaceOpened()
	r.SurfaceClosed()

	if got := testutil.ToFloat64(r.surfaces); got != 1 {
		t.Errorf("surfaces_open = %v, want 1", got)
	}
}

func TestRecorder_CacheLookup(t *testing.T) {
	t.Parallel()

	r := New()
	r.CacheLookup(true)
	r.CacheLookup(false)
	r.CacheLookup(false)

	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("misses = %v, want 2", got)
	}
}

// ---------------------------------------------------------------------------
// TestRecorder_Handler - Exposition endpoint
// ---------------------------------------------------------------------------

func TestRecorder_Handler(t *testing.T) {
	t.Parallel()

	r := New()
	r.GenerateDone("lebenslauf_0002", "ok", time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`tmpl2pdf_generations_total{outcome="ok",template="lebenslauf_0002"} 1`,
		"tmpl2pdf_surfaces_open 0",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
