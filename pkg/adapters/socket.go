package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/retrieve"
)

var socketURLPattern = regexp.MustCompile(`;var IO_URL=['? | "?](.*)['? | "?];`)

// socketLookup reads the socket URL from a server's /sioconfig script.
// The server is required infrastructure: any non-200 outcome, including an
// isolated failure, terminates the process through the exit hook. A hook
// that returns turns the outcome into ErrSocketUnavailable.
func (o Options) socketLookup(ctx context.Context, input string, _ apicall.Credentials, cb apicall.Callback) {
	if len(o.SocketHosts) > 0 && !slices.Contains(o.SocketHosts, input) {
		slog.Warn("socket config lookup rejected", "host", input)
		cb(nil, fmt.Errorf("socketlookup %q: %w", input, ErrHostNotAllowed))
		return
	}

	host, port := endpoint(input)
	d := retrieve.Descriptor{
		Host:    host,
		Port:    port,
		Path:    "/sioconfig",
		Timeout: o.Timeout,
	}

	retrieve.Retrieve(ctx, o.Plain, d, func(status int, body string, err error) {
		if status != http.StatusOK {
			slog.Error("socket config lookup failed",
				"host", input,
				"status", status,
				"error", err,
			)
			o.Exit(1)
			cb(nil, fmt.Errorf("socketlookup %s: status %d: %w", input, status, ErrSocketUnavailable))
			return
		}

		m := socketURLPattern.FindStringSubmatch(body)
		if m == nil {
			cb(nil, fmt.Errorf("socketlookup %s: %w", input, ErrNoMatch))
			return
		}
		cb(SocketConfig{URL: m[1]}, nil)
	})
}
