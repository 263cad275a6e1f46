package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/centraunit/labelwire"
	"github.com/centraunit/labelwire/internal/demo"
)

// main is the entrypoint for the labelwire demo application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		slog.Error("FATAL!", "error", err)
		stop()
		os.Exit(1)
	}
}

// run parses flags, assembles the container and starts the app.
func run(ctx context.Context, outW io.Writer, args []string) error {
	fs := flag.NewFlagSet("labelwire-demo", flag.ContinueOnError)
	fs.SetOutput(outW)
	envFile := fs.String("env", "", "path to an env file (default: .env if present)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := demo.LoadConfig(*envFile)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := demo.NewLogger(cfg.LogLevel, cfg.LogFormat, outW)

	c := labelwire.New(labelwire.WithLogger(logger.With("component", "container")))
	if err := demo.Register(c, cfg, logger); err != nil {
		return err
	}

	app, err := labelwire.Resolve[*demo.App](c, "app")
	if err != nil {
		return err
	}

	if cfg.HTTPAddr == "" {
		return ignoreCanceled(app.Start(ctx))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- demo.Serve(ctx, cfg.HTTPAddr, demo.NewRouter(c, logger), logger)
	}()

	countErr := make(chan error, 1)
	go func() {
		countErr <- ignoreCanceled(app.Start(ctx))
	}()

	// Whichever side stops first with an error stops the other.
	select {
	case err := <-serveErr:
		cancel()
		if err != nil {
			err = fmt.Errorf("status server: %w", err)
		}
		return errors.Join(err, <-countErr)
	case err := <-countErr:
		if err != nil {
			cancel()
			return errors.Join(err, <-serveErr)
		}
	}
	logger.Info("counting finished, serving status until interrupted")
	return <-serveErr
}

// ignoreCanceled treats an interrupt as a clean exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
