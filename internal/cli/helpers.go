// Package cli carries the shared wiring behind the flipper commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/flipper/internal/config"
	"github.com/aretw0/flipper/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger builds the application logger from the configuration plus
// command overrides. Debug forces the debug level. The fallback format
// applies when the configuration does not name one, so the daemon can
// default to JSON while interactive commands stay on text.
func NewLogger(cfg *config.Config, debug bool, fallback logging.Format) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	if debug {
		level = slog.LevelDebug
	}

	format := fallback
	if cfg.Log.Format != "" {
		format = logging.Format(cfg.Log.Format)
	}
	if format == "" {
		format = logging.FormatText
	}

	return logging.New(level, format)
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// isInterrupted reports whether err is a signal-driven cancellation
// rather than a pipeline failure.
func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
