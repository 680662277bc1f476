package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rhuss/apiclient/pkg/debug"
	"github.com/rhuss/apiclient/pkg/observability"
)

// OnComplete receives the outcome of one exchange: the HTTP status and the
// full body on success, or StatusIsolated and the error on failure.
type OnComplete func(status int, body string, err error)

// Retrieve performs one exchange and invokes onComplete at most once. It
// returns after onComplete has returned. Failures never propagate to the
// caller: they are logged with host and path and reported as StatusIsolated.
//
// Panics raised on other goroutines started by the transport cannot be
// recovered here.
func Retrieve(ctx context.Context, t Transport, d Descriptor, onComplete OnComplete) {
	x := &exchange{
		transport:  t,
		desc:       d,
		onComplete: onComplete,
		start:      time.Now(),
	}
	x.run(ctx)
}

// Go runs Retrieve on a new goroutine.
func Go(ctx context.Context, t Transport, d Descriptor, onComplete OnComplete) {
	go Retrieve(ctx, t, d, onComplete)
}

// exchange is the failure domain of a single request.
type exchange struct {
	transport  Transport
	desc       Descriptor
	onComplete OnComplete
	start      time.Time
	done       bool
}

func (x *exchange) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			x.fail(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()

	if x.transport == nil {
		x.fail(errors.New("no transport"))
		return
	}
	if err := x.desc.Validate(); err != nil {
		x.fail(err)
		return
	}

	if x.desc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.desc.Timeout)
		defer cancel()
	}

	debug.Log(debug.Retrieve, "request",
		"scheme", x.scheme(),
		"method", x.desc.method(),
		"target", x.desc.String(),
		"timeout", x.desc.Timeout,
	)

	resp, err := x.transport.Do(ctx, x.desc)
	if err != nil {
		x.fail(fmt.Errorf("request %s: %w", x.desc, err))
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		x.fail(fmt.Errorf("reading response from %s: %w", x.desc, err))
		return
	}

	debug.Log(debug.Retrieve, "response",
		"target", x.desc.String(),
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(x.start),
	)
	if debug.TraceIsEnabled(debug.Retrieve) {
		debug.Trace(debug.Retrieve, "response body", "body", debug.Truncate(string(body), 8192))
	}

	observability.RetrievalsTotal.WithLabelValues(x.scheme(), observability.OutcomeCompleted).Inc()
	x.deliver(resp.StatusCode, string(body), nil)
}

// fail logs err and reports it unless a completion was already delivered.
func (x *exchange) fail(err error) {
	attrs := []any{
		"host", x.desc.Host,
		"path", x.desc.Path,
		"error", err,
	}
	if x.done {
		slog.Error("retrieve failed after completion", attrs...)
		return
	}

	slog.Error("retrieve failed", attrs...)
	observability.RetrievalsTotal.WithLabelValues(x.scheme(), observability.OutcomeIsolated).Inc()
	x.deliver(StatusIsolated, "", err)
}

// deliver invokes onComplete once. A panic inside the callback is logged
// and swallowed; it never leads to a second invocation.
func (x *exchange) deliver(status int, body string, err error) {
	if x.done {
		return
	}
	x.done = true
	observability.RetrievalDuration.WithLabelValues(x.scheme()).Observe(time.Since(x.start).Seconds())

	if x.onComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("retrieve completion handler panicked",
				"host", x.desc.Host,
				"path", x.desc.Path,
				"status", status,
				"panic", fmt.Sprint(r),
			)
		}
	}()
	x.onComplete(status, body, err)
}

func (x *exchange) scheme() string {
	if x.transport == nil {
		return "none"
	}
	return x.transport.Scheme()
}
