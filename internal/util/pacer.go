package util

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a fixed minimum interval between successive operations.
// The first call to Wait returns immediately; later calls block until the
// interval since the previous operation has elapsed.
type Pacer struct {
	interval time.Duration
	last     time.Time
	mu       sync.Mutex
}

// NewPacer creates a Pacer with the given inter-operation interval.
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{interval: interval}
}

// Wait blocks until the pacing interval has elapsed or the context is
// cancelled, then marks the current operation as started.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	var wait time.Duration
	if !p.last.IsZero() {
		if elapsed := time.Since(p.last); elapsed < p.interval {
			wait = p.interval - elapsed
		}
	}
	p.mu.Unlock()

	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
	return nil
}
