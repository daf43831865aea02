package tmpl2pdf

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Surface limit constants.
const (
	// MinSurfaces ensures at least one request can render.
	MinSurfaces = 1

	// MaxSurfaces caps concurrent pages to bound browser memory.
	MaxSurfaces = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ResolveSurfaceLimit determines how many surfaces may be open at once.
// Priority: explicit value > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveSurfaceLimit(n int) int {
	if n > 0 {
		return n
	}

	// GOMAXPROCS is container-aware once automaxprocs has run.
	available := runtime.GOMAXPROCS(0)
	n = available / cpuDivisor

	if n < MinSurfaces {
		return MinSurfaces
	}
	if n > MaxSurfaces {
		return MaxSurfaces
	}
	return n
}

// limiter admits at most size concurrent exports. Waiters give up when
// their context ends.
type limiter struct {
	sem  *semaphore.Weighted
	size int
}

func newLimiter(size int) *limiter {
	if size < MinSurfaces {
		size = MinSurfaces
	}
	return &limiter{sem: semaphore.NewWeighted(int64(size)), size: size}
}

// acquire blocks until a slot is free or ctx ends, returning ctx.Err().
func (l *limiter) acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *limiter) release() {
	l.sem.Release(1)
}
