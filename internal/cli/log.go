// Package cli implements the cellgen command-line interface.
//
// The CLI is built using cobra and logs through charmbracelet/log. Layouts
// and rendered artifacts are cached under the XDG cache directory; archived
// layouts live under the XDG data directory.
//
// # Commands
//
// The main commands are:
//   - route: Route a plan file and write SVG, JSON, DOT or graph output
//   - tech: List, inspect and export technologies
//   - serve: Run the HTTP API
//   - cache: Manage the local layout and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation for a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
	fields []any
}

func newProgress(l *log.Logger, keyvals ...any) *progress {
	return &progress{logger: l, start: time.Now(), fields: keyvals}
}

// done logs msg with the progress fields, keyvals and the elapsed time
// rounded to the millisecond, e.g. `Routed plan=inv.toml cell=inv elapsed=12ms`.
func (p *progress) done(msg string, keyvals ...any) {
	kv := append(append([]any(nil), p.fields...), keyvals...)
	kv = append(kv, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, kv...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
