// Package demo is a small application assembled entirely through a
// labelwire container: a logger, a counter wired with the logger, an app
// wired with the counter and an optional HTTP status server that gives
// each request its own scope.
package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/centraunit/labelwire"
)

// App drives the counter with the configured range.
type App struct {
	counter *Counter
	cfg     *Config
}

func (*App) Wiring() labelwire.Node { return labelwire.Args("counter", "config") }

func NewApp(counter *Counter, cfg *Config) (*App, error) {
	if counter == nil {
		return nil, fmt.Errorf("app requires a counter")
	}
	if cfg == nil {
		return nil, fmt.Errorf("app requires a config")
	}
	return &App{counter: counter, cfg: cfg}, nil
}

// Start counts through the configured range.
func (a *App) Start(ctx context.Context) error {
	return a.counter.Count(ctx, a.cfg.CountStart, a.cfg.CountEnd, a.cfg.CountInterval)
}

// Register adds the demo's recipes to c. cfg and log are registered as
// ready-made singletons.
func Register(c *labelwire.Container, cfg *Config, log *slog.Logger) error {
	steps := []func() error{
		func() error { return c.SingletonFn("config", func(...any) any { return cfg }) },
		func() error { return c.SingletonFn("logger", func(...any) any { return log }) },
		func() error { return c.Singleton("counter", NewCounter) },
		func() error { return c.Singleton("app", NewApp) },
		func() error { return c.Scoped([]string{"request", "scoped"}, NewRequestInfo) },
		func() error { return c.Transient([]string{"status", "view"}, NewStatus) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
