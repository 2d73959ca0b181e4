package system

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewTestLogger returns a sugared logger that writes through tb.Log, so log
// lines only show up for failing tests or with -v. Stacktraces are suppressed
// to keep expected warnings readable.
func NewTestLogger(tb testing.TB) *zap.SugaredLogger {
	return zaptest.NewLogger(tb,
		zaptest.Level(zap.DebugLevel),
		zaptest.WrapOptions(zap.AddStacktrace(zap.DPanicLevel)),
	).Sugar()
}
