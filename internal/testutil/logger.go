// Package testutil holds shared helpers for package tests.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a debug-level slog.Logger routed through t.Log, so
// compiler and normalizer traces show up next to the failing assertion.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(logTB{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// logTB adapts a testing.TB to io.Writer.
type logTB struct {
	tb testing.TB
}

func (w logTB) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(p))
	return len(p), nil
}
