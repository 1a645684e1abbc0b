package core

// import_limiter.go serializes imports.
//
// The loader drops and recreates the destination table outside its
// transaction, so two imports interleaving on one table would corrupt each
// other. The limiter is a one-slot semaphore held for the whole
// extract -> reset -> insert -> commit sequence. A request that cannot get the
// slot within maxWait fails with ErrImportBusy rather than queueing forever.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrImportBusy is returned when another import holds the slot for longer
// than the configured wait.
var ErrImportBusy = errors.New("too many imports in progress, please try again later")

// DefaultMaxWaitTime is how long to wait for the slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ImportLimiter allows one import at a time.
type ImportLimiter struct {
	slot    chan struct{}
	maxWait time.Duration

	mu       sync.RWMutex
	active   bool
	since    time.Time
	rejected int
}

// NewImportLimiter creates a limiter; maxWait <= 0 selects DefaultMaxWaitTime.
func NewImportLimiter(maxWait time.Duration) *ImportLimiter {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ImportLimiter{
		slot:    make(chan struct{}, 1),
		maxWait: maxWait,
	}
}

// Acquire waits for the slot. It returns ctx.Err() if ctx ends first and
// ErrImportBusy if maxWait passes. Callers must Release after a nil return.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slot <- struct{}{}:
		l.markActive()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.mu.Lock()
		l.rejected++
		l.mu.Unlock()
		return ErrImportBusy
	}
}

// Release frees the slot. Must be called exactly once per successful acquire.
func (l *ImportLimiter) Release() {
	l.mu.Lock()
	l.active = false
	l.since = time.Time{}
	l.mu.Unlock()

	<-l.slot
}

func (l *ImportLimiter) markActive() {
	l.mu.Lock()
	l.active = true
	l.since = time.Now()
	l.mu.Unlock()
}

// Active reports whether an import currently holds the slot.
func (l *ImportLimiter) Active() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no import is running or ctx ends.
// The slot is taken and immediately given back, so a new import may start
// right after this returns.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
		<-l.slot
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ImportLimiterStatus is a snapshot of the limiter for monitoring.
type ImportLimiterStatus struct {
	Active   bool          `json:"active"`
	Running  time.Duration `json:"running_ns"`
	Rejected int           `json:"rejected"`
}

// Status returns the current limiter state.
func (l *ImportLimiter) Status() ImportLimiterStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()

	st := ImportLimiterStatus{Active: l.active, Rejected: l.rejected}
	if l.active {
		st.Running = time.Since(l.since)
	}
	return st
}
