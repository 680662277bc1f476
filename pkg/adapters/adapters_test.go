package adapters

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"testing"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/retrieve"
)

// outcome captures one callback invocation.
type outcome struct {
	calls int
	res   apicall.Result
	err   error
}

// call runs adapter name synchronously and returns what the callback saw.
func call(t *testing.T, opts Options, name, input string, creds apicall.Credentials) outcome {
	t.Helper()
	a, ok := Builtins(opts)[name]
	if !ok {
		t.Fatalf("no builtin adapter %q", name)
	}
	var o outcome
	a(context.Background(), input, creds, func(res apicall.Result, err error) {
		o.calls++
		o.res, o.err = res, err
	})
	if o.calls != 1 {
		t.Fatalf("%s: callback invoked %d times, want 1", name, o.calls)
	}
	return o
}

// serve starts a plaintext server and returns its host:port.
func serve(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parsing server url: %v", err)
	}
	return u.Host
}

// quietLogs discards the default logger for the duration of a test.
func quietLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func plainTransport(t *testing.T) retrieve.Transport {
	t.Helper()
	tr, err := retrieve.Plain()
	if err != nil {
		t.Fatalf("Plain() error: %v", err)
	}
	return tr
}

func TestBuiltinsNames(t *testing.T) {
	var names []string
	for name := range Builtins(Options{}) {
		names = append(names, name)
	}
	sort.Strings(names)

	want := []string{"anagram", "forecast", "socketlookup", "translate", "weather", "wolfram", "youtubelookup"}
	if len(names) != len(want) {
		t.Fatalf("Builtins() names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Builtins() names = %v, want %v", names, want)
			break
		}
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		in       string
		wantHost string
		wantPort int
	}{
		{"anagramgenius.com", "anagramgenius.com", 0},
		{"127.0.0.1:8080", "127.0.0.1", 8080},
		{"cytu.be:http", "cytu.be:http", 0},
		{"[::1]:9000", "::1", 9000},
	}
	for _, tt := range tests {
		host, port := endpoint(tt.in)
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("endpoint(%q) = (%q, %d), want (%q, %d)", tt.in, host, port, tt.wantHost, tt.wantPort)
		}
	}
}
