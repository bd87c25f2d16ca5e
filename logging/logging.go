// Package logging provides the small structured-logging surface used across
// trajgen. It wraps zap the same way the logging the core is modeled after
// does: a Logger interface for production code to depend on, and a
// zap.SugaredLogger underneath so callers get leveled, keyed fields without
// paying for formatting when the level is disabled.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the logging surface every trajgen package depends on. An Update
// call that only samples the current trajectory logs nothing; one that
// recalculates logs at Info on success and Warn/Error on failure.
type Logger interface {
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a Logger that tags every line with name, joined to
	// the parent's own name with a dot (e.g. "planner.dof2").
	Sublogger(name string) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
	name  string
}

func (l *zapLogger) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Debugw(msg string, kv ...interface{})        { l.sugar.Debugw(msg, kv...) }
func (l *zapLogger) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *zapLogger) Infow(msg string, kv ...interface{})         { l.sugar.Infow(msg, kv...) }
func (l *zapLogger) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Warnw(msg string, kv ...interface{})         { l.sugar.Warnw(msg, kv...) }
func (l *zapLogger) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }
func (l *zapLogger) Errorw(msg string, kv ...interface{})        { l.sugar.Errorw(msg, kv...) }

func (l *zapLogger) Sublogger(name string) Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &zapLogger{sugar: l.sugar.With("logger", full), name: full}
}

// NewDevelopment returns a human-readable, Debug-level Logger suitable for
// interactive use (example drivers, offline calculate() callers).
func NewDevelopment() Logger {
	cfg := zap.NewDevelopmentConfig()
	z, err := cfg.Build()
	if err != nil {
		// zap.NewDevelopmentConfig().Build() only fails on a broken sink,
		// which NewDevelopmentConfig never configures; fall back to NOP
		// rather than propagating a constructor failure.
		z = zap.NewNop()
	}
	return &zapLogger{sugar: z.Sugar()}
}

// NewTestLogger returns a Logger that writes through testing.T.Log, matching
// the teacher's NewTestLogger(t) convention used throughout its test suite.
func NewTestLogger(tb testing.TB) Logger {
	z := zaptest.NewLogger(tb, zaptest.Level(zapcore.DebugLevel))
	return &zapLogger{sugar: z.Sugar()}
}
