// Package apicall defines the adapter protocol and the dispatcher that routes
// a logical call name ("weather", "youtubelookup", ...) to its adapter.
//
// An Adapter turns an input string and opaque Credentials into one outbound
// call and reports a provider-specific Result through a Callback. The
// Dispatcher looks adapters up in an immutable Table; unknown call names are
// ignored without invoking the callback.
package apicall

import (
	"context"
	"maps"
	"slices"
)

// Credentials is per-adapter secret material passed through untouched.
// Key-based providers use APIKey; client-credential providers use
// ClientID and ClientSecret.
type Credentials struct {
	APIKey       string
	ClientID     string
	ClientSecret string
}

// Result is the provider-specific outcome of a call. Each adapter family
// defines its own concrete type.
type Result interface {
	// Call returns the name of the call that produced the result.
	Call() string
}

// Callback receives the outcome of a call. Exactly one of res and err is
// meaningful: err is set when the adapter could not produce a result.
type Callback func(res Result, err error)

// Adapter performs one logical call. It must not retain state across calls.
type Adapter func(ctx context.Context, input string, creds Credentials, cb Callback)

// Table maps call names to adapters. It is immutable once built.
type Table struct {
	adapters map[string]Adapter
}

// NewTable copies adapters into a new Table. Nil adapters are skipped.
func NewTable(adapters map[string]Adapter) *Table {
	t := &Table{adapters: make(map[string]Adapter, len(adapters))}
	for name, a := range adapters {
		if a != nil {
			t.adapters[name] = a
		}
	}
	return t
}

// Lookup returns the adapter registered under name.
func (t *Table) Lookup(name string) (Adapter, bool) {
	if t == nil {
		return nil, false
	}
	a, ok := t.adapters[name]
	return a, ok
}

// Names returns the registered call names in sorted order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.adapters))
}

// Len returns the number of registered adapters.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.adapters)
}
