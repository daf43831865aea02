package tmpl2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alnah/go-tmpl2pdf/internal/browser"
	"github.com/alnah/go-tmpl2pdf/internal/logging"
)

// State is the lifecycle state of an Engine.
type State int32

// Engine states. A failed start returns to StateUninitialized.
const (
	StateUninitialized State = iota
	StateStarting
	StateReady
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// errEngineClosed is returned once the engine is shut down. It matches both
// ErrEngineStart and ErrEngineClosed.
var errEngineClosed = fmt.Errorf("%w: %w", ErrEngineStart, ErrEngineClosed)

// defaultStartTimeout bounds one browser launch.
const defaultStartTimeout = 60 * time.Second

// Engine owns the single shared browser process.
//
// The browser is started lazily by the first EnsureReady call. Concurrent
// callers share one start; a failed start is reported to all of them and the
// next call retries. After Shutdown the engine stays closed until Restart.
type Engine struct {
	launcher     browser.Launcher
	startTimeout time.Duration
	log          *slog.Logger
	observer     Observer

	group  singleflight.Group
	starts atomic.Int64

	mu      sync.Mutex
	state   State
	browser browser.Browser
	gen     uint64        // bumped by Shutdown; stale starts close their browser
	closed  chan struct{} // closed on reaching StateClosed
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the engine logger.
func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// WithEngineStartTimeout bounds each browser launch.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithEngineStartTimeout(d time.Duration) EngineOption {
	if d <= 0 {
		panic("tmpl2pdf: WithEngineStartTimeout duration must be positive")
	}
	return func(e *Engine) { e.startTimeout = d }
}

// WithEngineObserver receives engine start events.
func WithEngineObserver(o Observer) EngineOption {
	return func(e *Engine) { e.observer = o }
}

// NewEngine returns an uninitialized engine. No process is started.
func NewEngine(l browser.Launcher, opts ...EngineOption) *Engine {
	e := &Engine{
		launcher:     l,
		startTimeout: defaultStartTimeout,
		log:          logging.NewNop(),
		observer:     nopObserver{},
		closed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Starts reports how many times a browser launch was attempted.
func (e *Engine) Starts() int64 {
	return e.starts.Load()
}

// EnsureReady returns the running browser, starting it if needed.
// The launch itself is not bound to ctx: a caller that gives up does not
// abort a start other callers are waiting on.
func (e *Engine) EnsureReady(ctx context.Context) (browser.Browser, error) {
	e.mu.Lock()
	switch e.state {
	case StateReady:
		b := e.browser
		e.mu.Unlock()
		return b, nil
	case StateClosing, StateClosed:
		e.mu.Unlock()
		return nil, errEngineClosed
	}
	gen := e.gen
	e.mu.Unlock()

	ch := e.group.DoChan(startKey(gen), func() (any, error) {
		return e.start(gen)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(browser.Browser), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func startKey(gen uint64) string {
	return "start-" + strconv.FormatUint(gen, 10)
}

func (e *Engine) start(gen uint64) (browser.Browser, error) {
	e.mu.Lock()
	switch {
	case e.gen != gen, e.state == StateClosing, e.state == StateClosed:
		e.mu.Unlock()
		return nil, errEngineClosed
	case e.state == StateReady:
		b := e.browser
		e.mu.Unlock()
		return b, nil
	}
	e.state = StateStarting
	e.mu.Unlock()

	e.starts.Add(1)
	e.log.Debug("starting browser", "timeout", e.startTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), e.startTimeout)
	defer cancel()
	began := time.Now()
	b, err := e.launcher.Launch(ctx)
	elapsed := time.Since(began)
	e.observer.EngineStarted(elapsed, err)

	e.mu.Lock()
	if e.gen != gen || e.state != StateStarting {
		// Shutdown ran while launching.
		e.mu.Unlock()
		if b != nil {
			e.closeBrowser(b)
		}
		return nil, errEngineClosed
	}
	if err != nil {
		e.state = StateUninitialized
		e.mu.Unlock()
		e.log.Error("browser start failed", "error", err, "elapsed", elapsed)
		return nil, fmt.Errorf("%w: %w", ErrEngineStart, err)
	}
	e.browser = b
	e.state = StateReady
	e.mu.Unlock()

	e.log.Info("browser ready", "elapsed", elapsed)
	return b, nil
}

// Shutdown closes the browser and moves the engine to StateClosed. An
// in-flight start is awaited (bounded by ctx) and its browser closed. Close
// errors are logged, never returned. Safe to call repeatedly.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	switch e.state {
	case StateClosed:
		e.mu.Unlock()
		return nil
	case StateClosing:
		closed := e.closed
		e.mu.Unlock()
		select {
		case <-closed:
		case <-ctx.Done():
		}
		return nil
	}
	prev := e.state
	gen := e.gen
	b := e.browser
	e.state = StateClosing
	e.browser = nil
	e.mu.Unlock()

	if prev == StateStarting {
		// Joins the in-flight start; it sees StateClosing and closes its own browser.
		select {
		case <-e.group.DoChan(startKey(gen), func() (any, error) { return e.start(gen) }):
		case <-ctx.Done():
			e.log.Warn("shutdown stopped waiting for browser start", "error", ctx.Err())
		}
	}
	if b != nil {
		e.closeBrowser(b)
	}

	e.mu.Lock()
	e.gen++
	e.state = StateClosed
	close(e.closed)
	e.mu.Unlock()

	e.log.Debug("engine closed")
	return nil
}

// Restart shuts the engine down if needed, reopens it and starts a new
// browser.
func (e *Engine) Restart(ctx context.Context) (browser.Browser, error) {
	if err := e.Shutdown(ctx); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.state == StateClosed {
		e.state = StateUninitialized
		e.closed = make(chan struct{})
	}
	e.mu.Unlock()

	return e.EnsureReady(ctx)
}

func (e *Engine) closeBrowser(b browser.Browser) {
	if err := b.Close(); err != nil {
		e.log.Warn("browser close failed", "error", err)
	}
}
