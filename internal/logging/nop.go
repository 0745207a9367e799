// Package logging provides internal logging utilities for casspark.
package logging

import "github.com/arloliu/casspark/types"

// NopLogger discards every message at every level.
//
// It backs the harness default so components can log unconditionally
// without nil-checking their logger first.
type NopLogger struct{}

var _ types.Logger = (*NopLogger)(nil)

// NewNopLogger returns a logger that drops everything.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (l *NopLogger) Debug(_ string, _ ...any) {}
func (l *NopLogger) Info(_ string, _ ...any)  {}
func (l *NopLogger) Warn(_ string, _ ...any)  {}
func (l *NopLogger) Error(_ string, _ ...any) {}

// Fatal drops the message like every other level. It never exits the
// process, so a missing logger configuration cannot kill a test run.
func (l *NopLogger) Fatal(_ string, _ ...any) {}
