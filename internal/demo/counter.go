package demo

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/centraunit/labelwire"
)

// Counter logs a tick for every number in a range.
type Counter struct {
	log     *slog.Logger
	current atomic.Int64
	done    atomic.Bool
}

func (*Counter) Wiring() labelwire.Node { return labelwire.Args("logger") }

func NewCounter(log *slog.Logger) *Counter {
	if log == nil {
		log = slog.Default()
	}
	return &Counter{log: log}
}

// Count ticks from start to end inclusive, waiting interval after each
// tick. It returns ctx.Err() if ctx is cancelled first.
func (c *Counter) Count(ctx context.Context, start, end int, interval time.Duration) error {
	c.done.Store(false)
	for i := start; i <= end; i++ {
		c.current.Store(int64(i))
		c.log.Info("I waited!", "tick", i, "of", end)

		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	c.done.Store(true)
	return nil
}

// Current returns the last tick, or 0 before the first.
func (c *Counter) Current() int64 { return c.current.Load() }

// Done reports whether the last Count call reached its end.
func (c *Counter) Done() bool { return c.done.Load() }
