package logger

import (
	"log/slog"
	"runtime"
	"strconv"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// slog drops empty attributes, so log.Info("msg", logger.Error(err)) needs no nil check.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ============================================================================
// Error Handling
// ============================================================================

// Errors groups multiple non-nil errors under the key "errors".
// Uses index-based keys to preserve error order. Returns empty Attr for all nil errors.
func Errors(errs ...error) slog.Attr {
	count := 0
	for _, err := range errs {
		if err != nil {
			count++
		}
	}
	if count == 0 {
		return slog.Attr{}
	}

	as := make([]slog.Attr, 0, count)
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ============================================================================
// Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed calculates and logs the duration since the start time.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ============================================================================
// Carousel
// ============================================================================

// CarouselID creates an attribute for a carousel instance ID.
func CarouselID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("carousel_id", id)
}

// ConsumerIndex creates an attribute for the index of a consumer.
func ConsumerIndex(index int) slog.Attr {
	return slog.Int("consumer", index)
}

// Sequence creates an attribute for a message sequence number.
// Returns empty Attr for zero, which marks an unsequenced message.
func Sequence(seq uint64) slog.Attr {
	if seq == 0 {
		return slog.Attr{}
	}
	return slog.Uint64("sequence", seq)
}

// PayloadSize creates an attribute for a message size in bytes.
func PayloadSize(n int) slog.Attr {
	return slog.Int("payload_size", n)
}

// Policy creates an attribute for a backpressure policy name.
func Policy(name string) slog.Attr {
	return slog.String("policy", name)
}

// ============================================================================
// Generic Metadata
// ============================================================================

// ID creates a generic identifier attribute with a custom key.
func ID(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Action creates an attribute for action names.
func Action(action string) slog.Attr {
	return slog.String("action", action)
}

// Result creates an attribute for operation results (success/failure).
func Result(result string) slog.Attr {
	return slog.String("result", result)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Key creates a generic key-value attribute.
func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// ============================================================================
// Debugging
// ============================================================================

// Stack captures and returns the current stack trace.
func Stack() slog.Attr {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]
	return slog.String("stack", string(buf))
}

// Caller returns information about the calling function.
func Caller() slog.Attr {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return slog.Attr{}
	}
	return slog.String("caller", file+":"+strconv.Itoa(line))
}
