package tmpl2pdf

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
)

// waitFor polls cond until it holds or a second has passed.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// ---------------------------------------------------------------------------
// EnsureReady
// ---------------------------------------------------------------------------

func TestEngine_SingleStartUnderConcurrency(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{delay: 50 * time.Millisecond}
	e := NewEngine(l)
	defer e.Shutdown(context.Background())

	const callers = 32
	var wg sync.WaitGroup
	got := make([]browser.Browser, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], errs[i] = e.EnsureReady(context.Background())
		}()
	}
	wg.Wait()

	for i := range got {
		if errs[i] != nil {
			t.Fatalf("caller %d: EnsureReady() error = %v", i, errs[i])
		}
		if got[i] != got[0] {
			t.Fatalf("caller %d received a different browser", i)
		}
	}
	if n := l.launches.Load(); n != 1 {
		t.Errorf("launches = %d, want 1", n)
	}
	if e.Starts() != 1 {
		t.Errorf("Starts() = %d, want 1", e.Starts())
	}
	if e.State() != StateReady {
		t.Errorf("State() = %v, want ready", e.State())
	}
}

func TestEngine_ReadyIsReused(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{}
	e := NewEngine(l)
	defer e.Shutdown(context.Background())

	first, err := e.EnsureReady(context.Background())
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	second, _ := e.EnsureReady(context.Background())
	if first != second || l.launches.Load() != 1 {
		t.Errorf("second EnsureReady relaunched (launches = %d)", l.launches.Load())
	}
}

func TestEngine_FailedStartIsRetried(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{delay: 50 * time.Millisecond}
	l.failures.Store(1)
	e := NewEngine(l)
	defer e.Shutdown(context.Background())

	// Every caller sharing the failed start sees the failure.
	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.EnsureReady(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if !errors.Is(err, ErrEngineStart) || !errors.Is(err, errFake) {
			t.Fatalf("caller %d: error = %v, want ErrEngineStart wrapping the cause", i, err)
		}
	}
	if e.State() != StateUninitialized {
		t.Fatalf("State() after failure = %v, want uninitialized", e.State())
	}

	if _, err := e.EnsureReady(context.Background()); err != nil {
		t.Fatalf("retry EnsureReady() error = %v", err)
	}
	if n := l.launches.Load(); n != 2 {
		t.Errorf("launches = %d, want 2", n)
	}
}

func TestEngine_StartTimeout(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{delay: time.Second}
	e := NewEngine(l, WithEngineStartTimeout(20*time.Millisecond))
	defer e.Shutdown(context.Background())

	_, err := e.EnsureReady(context.Background())
	if !errors.Is(err, ErrEngineStart) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("EnsureReady() error = %v, want ErrEngineStart wrapping deadline", err)
	}
	if e.State() != StateUninitialized {
		t.Errorf("State() = %v, want uninitialized", e.State())
	}
}

func TestEngine_CallerGivesUpStartContinues(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{delay: 50 * time.Millisecond}
	e := NewEngine(l)
	defer e.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := e.EnsureReady(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("EnsureReady() error = %v, want deadline exceeded", err)
	}

	waitFor(t, "engine ready", func() bool { return e.State() == StateReady })
	if n := l.launches.Load(); n != 1 {
		t.Errorf("launches = %d, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Shutdown / Restart
// ---------------------------------------------------------------------------

func TestEngine_ShutdownIsTerminal(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{}
	e := NewEngine(l)

	if _, err := e.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	b := l.lastBrowser()

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
	if b.closeCount() != 1 {
		t.Errorf("browser closed %d times, want 1", b.closeCount())
	}
	if e.State() != StateClosed {
		t.Errorf("State() = %v, want closed", e.State())
	}

	done := make(chan error, 1)
	go func() {
		_, err := e.EnsureReady(context.Background())
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, ErrEngineClosed) || !errors.Is(err, ErrEngineStart) {
			t.Errorf("EnsureReady() after Shutdown error = %v, want ErrEngineClosed and ErrEngineStart", err)
		}
	case <-time.After(time.Second):
		t.Fatal("EnsureReady() after Shutdown hung")
	}
	if l.launches.Load() != 1 {
		t.Errorf("closed engine relaunched the browser")
	}
}

func TestEngine_ShutdownSwallowsCloseErrors(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{}
	e := NewEngine(l)
	if _, err := e.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	l.lastBrowser().closeErr = errFake

	if err := e.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestEngine_ShutdownBeforeStart(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{}
	e := NewEngine(l)

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := e.EnsureReady(context.Background()); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("EnsureReady() error = %v, want ErrEngineClosed", err)
	}
	if l.launches.Load() != 0 {
		t.Error("browser launched after Shutdown")
	}
}

func TestEngine_ShutdownDuringStart(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{delay: 50 * time.Millisecond}
	e := NewEngine(l)

	started := make(chan error, 1)
	go func() {
		_, err := e.EnsureReady(context.Background())
		started <- err
	}()
	waitFor(t, "start in flight", func() bool { return e.State() == StateStarting })

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := <-started; !errors.Is(err, ErrEngineClosed) {
		t.Errorf("in-flight EnsureReady() error = %v, want ErrEngineClosed", err)
	}

	b := l.lastBrowser()
	if b == nil || b.closeCount() != 1 {
		t.Errorf("browser from the interrupted start was not closed")
	}
	if e.State() != StateClosed {
		t.Errorf("State() = %v, want closed", e.State())
	}
}

func TestEngine_Restart(t *testing.T) {
	t.Parallel()

	l := &fakeLauncher{}
	e := NewEngine(l)
	defer e.Shutdown(context.Background())

	first, err := e.EnsureReady(context.Background())
	if err != nil {
		t.Fatalf("EnsureReady() error = %v", err)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	second, err := e.Restart(context.Background())
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if second == first {
		t.Error("Restart() returned the closed browser")
	}
	if e.State() != StateReady || l.launches.Load() != 2 {
		t.Errorf("after Restart: state = %v, launches = %d", e.State(), l.launches.Load())
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	want := map[State]string{
		StateUninitialized: "uninitialized",
		StateStarting:      "starting",
		StateReady:         "ready",
		StateClosing:       "closing",
		StateClosed:        "closed",
		State(42):          "state(42)",
	}
	for s, w := range want {
		if s.String() != w {
			t.Errorf("State(%d).String() = %q, want %q", int(s), s.String(), w)
		}
	}
}
