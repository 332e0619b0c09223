package fetch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Pacer applies fixed blocking pauses between requests.
// It paces one sequential caller; there is no token bucket or per-host bookkeeping.
type Pacer struct {
	slept atomic.Int64 // Total nanoseconds spent waiting
	log   *logrus.Entry
}

// NewPacer creates a Pacer
func NewPacer(log *logrus.Entry) *Pacer {
	return &Pacer{log: log}
}

// Wait sleeps for d, returning early with the context error if ctx is cancelled.
// A non-positive d returns immediately.
func (p *Pacer) Wait(ctx context.Context, d time.Duration, reason string) error {
	if d <= 0 {
		return ctx.Err()
	}
	p.log.WithFields(logrus.Fields{"sleep": d, "reason": reason}).Debug("Pacing")

	timer := time.NewTimer(d)
	defer timer.Stop()
	start := time.Now()
	select {
	case <-timer.C:
		p.slept.Add(int64(d))
		return nil
	case <-ctx.Done():
		p.slept.Add(int64(time.Since(start)))
		return ctx.Err()
	}
}

// Slept reports the cumulative time spent in Wait
func (p *Pacer) Slept() time.Duration {
	return time.Duration(p.slept.Load())
}
