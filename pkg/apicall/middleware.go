package apicall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rhuss/apiclient/pkg/observability"
)

// ErrAdapterPanic is reported when an adapter panics before calling back.
var ErrAdapterPanic = errors.New("adapter panicked")

// Middleware wraps the adapter registered under name.
type Middleware func(name string, next Adapter) Adapter

// Chain composes middleware. Chain(a, b, c) produces a(b(c(adapter))).
func Chain(middlewares ...Middleware) Middleware {
	return func(name string, next Adapter) Adapter {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](name, next)
		}
		return next
	}
}

// DefaultMiddleware is the chain used by servers and the CLI.
func DefaultMiddleware(logger *slog.Logger) []Middleware {
	return []Middleware{RequestID(), Logging(logger), Metrics(), Recovery()}
}

// requestIDKeyType is the context key type for request IDs.
type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a context carrying id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID assigns a UUID request ID unless ctx already carries one.
func RequestID() Middleware {
	return func(_ string, next Adapter) Adapter {
		return func(ctx context.Context, input string, creds Credentials, cb Callback) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, uuid.NewString())
			}
			next(ctx, input, creds, cb)
		}
	}
}

// Logging emits one structured record when the callback fires.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(name string, next Adapter) Adapter {
		return func(ctx context.Context, input string, creds Credentials, cb Callback) {
			start := time.Now()
			next(ctx, input, creds, func(res Result, err error) {
				attrs := []slog.Attr{
					slog.String("request_id", RequestIDFromContext(ctx)),
					slog.String("call", name),
					slog.Duration("duration", time.Since(start)),
				}
				if err != nil {
					attrs = append(attrs, slog.String("error", err.Error()))
					logger.LogAttrs(ctx, slog.LevelWarn, "call failed", attrs...)
				} else {
					logger.LogAttrs(ctx, slog.LevelInfo, "call completed", attrs...)
				}
				cb(res, err)
			})
		}
	}
}

// Metrics records dispatch outcome and callback latency.
func Metrics() Middleware {
	return func(name string, next Adapter) Adapter {
		return func(ctx context.Context, input string, creds Credentials, cb Callback) {
			start := time.Now()
			next(ctx, input, creds, func(res Result, err error) {
				outcome := observability.OutcomeOK
				if err != nil {
					outcome = observability.OutcomeError
				}
				observability.DispatchesTotal.WithLabelValues(name, outcome).Inc()
				observability.DispatchDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
				cb(res, err)
			})
		}
	}
}

// Recovery guarantees the callback fires at most once and converts an
// adapter panic into ErrAdapterPanic when the callback has not fired yet.
func Recovery() Middleware {
	return func(name string, next Adapter) Adapter {
		return func(ctx context.Context, input string, creds Credentials, cb Callback) {
			var fired atomic.Bool
			guarded := func(res Result, err error) {
				if !fired.CompareAndSwap(false, true) {
					slog.Warn("dropping repeated callback", "call", name)
					return
				}
				cb(res, err)
			}

			defer func() {
				if r := recover(); r != nil {
					slog.Error("adapter panicked", "call", name, "panic", fmt.Sprint(r))
					guarded(nil, fmt.Errorf("%w: %s: %v", ErrAdapterPanic, name, r))
				}
			}()
			next(ctx, input, creds, guarded)
		}
	}
}
