// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package system holds process-level helpers shared by the mailshot binary and
// its tests, most notably logger construction.
package system

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the diagnostic logger of the CLI. Diagnostics go to w
// (stderr when nil) so they never interleave with the campaign progress printed
// on stdout. The production encoder only emits warnings and errors unless
// verbose is set, in which case the development config at debug level is used.
func NewLogger(verbose bool, w io.Writer) *zap.SugaredLogger {
	if w == nil {
		w = os.Stderr
	}
	cfg := zap.NewProductionEncoderConfig()
	level := zapcore.WarnLevel
	if verbose {
		cfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
	}
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.TimeKey = "ts"

	var encoder zapcore.Encoder
	if verbose {
		encoder = zapcore.NewConsoleEncoder(cfg)
	} else {
		encoder = zapcore.NewJSONEncoder(cfg)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core).Sugar().Named("mailshot")
}

// CampaignFields returns key/value pairs identifying a campaign run, suitable
// for SugaredLogger.With.
func CampaignFields(runID, source string) []interface{} {
	if source == "" {
		return []interface{}{"run", runID}
	}
	return []interface{}{"run", runID, "source", source}
}
