package adapters

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rhuss/apiclient/pkg/apicall"
)

func TestSocketLookup(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"single quotes", `var DEFAULT_SOCKET=1;var IO_URL='http://cytu.be:8880';`, "http://cytu.be:8880"},
		{"double quotes", `x=1;var IO_URL="https://sync.example.org:443";`, "https://sync.example.org:443"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := serve(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/sioconfig" {
					t.Errorf("path = %q, want /sioconfig", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			})

			exited := false
			opts := Options{Plain: plainTransport(t), Exit: func(int) { exited = true }}
			o := call(t, opts, SocketLookup, host, apicall.Credentials{})

			if exited {
				t.Fatal("exit hook called on success")
			}
			if o.err != nil {
				t.Fatalf("unexpected error: %v", o.err)
			}
			if got := o.res.(SocketConfig).URL; got != tt.want {
				t.Errorf("URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSocketLookup_NoMatch(t *testing.T) {
	host := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`var SOMETHING_ELSE=1;`))
	})

	o := call(t, Options{Plain: plainTransport(t), Exit: func(int) { t.Error("unexpected exit") }}, SocketLookup, host, apicall.Credentials{})
	if !errors.Is(o.err, ErrNoMatch) {
		t.Errorf("error = %v, want ErrNoMatch", o.err)
	}
}

func TestSocketLookup_FatalStatus(t *testing.T) {
	tests := []struct {
		name string
		host func(t *testing.T) string
	}{
		{"not found", func(t *testing.T) string {
			return serve(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			})
		}},
		{"unreachable", func(*testing.T) string { return "127.0.0.1:1" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := quietLogs(t)
			code := -1
			a := Builtins(Options{Plain: plainTransport(t), Exit: func(c int) { code = c }})[SocketLookup]

			var got error
			calls := 0
			a(t.Context(), tt.host(t), apicall.Credentials{}, func(_ apicall.Result, err error) {
				calls++
				got = err
			})

			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			// The hook returned, so the failure is reported instead.
			if calls != 1 || !errors.Is(got, ErrSocketUnavailable) {
				t.Errorf("callback calls = %d, error = %v, want one ErrSocketUnavailable", calls, got)
			}
			if !strings.Contains(logs.String(), "socket config lookup failed") {
				t.Errorf("missing fatal log record:\n%s", logs.String())
			}
		})
	}
}

func TestSocketLookup_AllowedHosts(t *testing.T) {
	host := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`;var IO_URL='http://sync.local:8880';`))
	})
	opts := Options{
		Plain:       plainTransport(t),
		SocketHosts: []string{host},
		Exit:        func(int) { t.Error("unexpected exit") },
	}

	if o := call(t, opts, SocketLookup, host, apicall.Credentials{}); o.err != nil {
		t.Errorf("allowed host: unexpected error %v", o.err)
	}

	quietLogs(t)
	o := call(t, opts, SocketLookup, "169.254.169.254", apicall.Credentials{})
	if !errors.Is(o.err, ErrHostNotAllowed) {
		t.Errorf("error = %v, want ErrHostNotAllowed", o.err)
	}
}
