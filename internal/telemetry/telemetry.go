// Package telemetry is the structured-logging surface the engine's
// ambient concerns use (spec.md §7's "debug log, skip" error kind and the
// Scheduler's "nothing to do" notice). It wraps
// logrus the way coderisk's ingestion orchestrator does: one *logrus.Logger
// constructed at startup, fields attached per call site via WithFields.
package telemetry

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	global     *logrus.Logger
	globalOnce sync.Once
)

// Logger returns the process-wide logrus logger, constructing it with
// text-formatted output to stderr on first use.
func Logger() *logrus.Logger {
	globalOnce.Do(func() {
		global = logrus.New()
		global.SetOutput(os.Stderr)
		global.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		global.SetLevel(logrus.InfoLevel)
	})
	return global
}

// SetDebug toggles debug-level logging, used by the CLI's --verbose flag.
func SetDebug(enabled bool) {
	if enabled {
		Logger().SetLevel(logrus.DebugLevel)
	} else {
		Logger().SetLevel(logrus.InfoLevel)
	}
}

// Debugf logs a debug-level message with printf-style formatting — the
// mechanism behind spec.md §4.3's "Could not find file … probably a
// double rename" skip notice.
func Debugf(format string, args ...interface{}) {
	Logger().Debugf(format, args...)
}

// WithFields attaches structured fields to a log entry, mirroring the
// teacher's orchestrator.WithFields(logrus.Fields{...}) idiom.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Logger().WithFields(fields)
}
