package apicall

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rhuss/apiclient/pkg/debug"
	"github.com/rhuss/apiclient/pkg/observability"
)

// ErrUnknownCall is returned by Call when no adapter is registered under the
// requested name. Dispatch never returns it.
var ErrUnknownCall = errors.New("unknown call")

// Dispatcher routes call names to adapters wrapped in a middleware chain.
// All methods are safe for concurrent use.
type Dispatcher struct {
	table   *Table
	wrapped map[string]Adapter
	wg      sync.WaitGroup
}

// NewDispatcher wraps every adapter of table in middlewares. The first
// middleware is the outermost wrapper.
func NewDispatcher(table *Table, middlewares ...Middleware) *Dispatcher {
	chain := Chain(middlewares...)
	d := &Dispatcher{
		table:   table,
		wrapped: make(map[string]Adapter, table.Len()),
	}
	for _, name := range table.Names() {
		a, _ := table.Lookup(name)
		d.wrapped[name] = chain(name, a)
	}
	return d
}

// Dispatch invokes the adapter registered under name with the same
// arguments and reports whether one was found. An unknown name is a no-op:
// cb is not invoked and no error is raised.
func (d *Dispatcher) Dispatch(ctx context.Context, input, name string, creds Credentials, cb Callback) bool {
	a, ok := d.wrapped[name]
	if !ok {
		debug.Log(debug.Dispatch, "ignoring unknown call", "call", name)
		observability.DispatchesTotal.WithLabelValues("unknown", "ignored").Inc()
		return false
	}
	if cb == nil {
		cb = func(Result, error) {}
	}
	a(ctx, input, creds, cb)
	return true
}

// Go is Dispatch on a tracked goroutine. Wait blocks until every call
// started with Go has returned.
func (d *Dispatcher) Go(ctx context.Context, input, name string, creds Credentials, cb Callback) bool {
	if _, ok := d.wrapped[name]; !ok {
		return d.Dispatch(ctx, input, name, creds, cb)
	}

	d.wg.Add(1)
	observability.DispatchesInFlight.Inc()
	go func() {
		defer d.wg.Done()
		defer observability.DispatchesInFlight.Dec()
		d.Dispatch(ctx, input, name, creds, cb)
	}()
	return true
}

// Wait blocks until all calls started with Go have returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Names returns the registered call names in sorted order.
func (d *Dispatcher) Names() []string {
	return d.table.Names()
}

// Call dispatches name and waits for its callback or for ctx to end.
func (d *Dispatcher) Call(ctx context.Context, name, input string, creds Credentials) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	ch := make(chan outcome, 1)

	ok := d.Go(ctx, input, name, creds, func(res Result, err error) {
		select {
		case ch <- outcome{res: res, err: err}:
		default:
		}
	})
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCall, name)
	}

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("call %q abandoned: %w", name, ctx.Err())
	}
}
