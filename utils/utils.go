// Package utils carries small helpers shared across the engine.
package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrTestsFailed signals main to exit nonzero after a run with failures.
var ErrTestsFailed = errors.New("one or more tests failed")

// LogError logs an error with contextual fields, tolerating nil errors so
// call sites stay one-liners.
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if logger == nil {
		fmt.Println("failed to log the error, logger is nil")
		return
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Error(msg, fields...)
}

// Recover converts a goroutine panic into a logged error instead of a
// crashed run.
func Recover(logger *zap.Logger) {
	if r := recover(); r != nil {
		LogError(logger, fmt.Errorf("%v", r), "recovered from panic")
	}
}

const (
	maxStringLen     = 50
	maxSerializedLen = 100
)

// TruncateString bounds a plain string for diagnostics output.
func TruncateString(s string) string {
	if len(s) <= maxStringLen {
		return s
	}
	return s[:maxStringLen] + "..."
}

// Stringify renders any value for a failure message, serializing composites
// and truncating so assertion diagnostics stay readable.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "undefined"
	case string:
		return TruncateString(val)
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		s := string(b)
		if len(s) > maxSerializedLen {
			return s[:maxSerializedLen] + "..."
		}
		return s
	}
}
