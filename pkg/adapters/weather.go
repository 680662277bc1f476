package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/retrieve"
)

// weather returns the Weather Underground adapter for one feature path.
// The report body is passed through without inspecting the status.
func (o Options) weather(kind, feature string) apicall.Adapter {
	return func(ctx context.Context, input string, creds apicall.Credentials, cb apicall.Callback) {
		loc, err := Location(input)
		if err != nil {
			slog.Warn("weather lookup rejected", "call", kind, "input", input, "error", err)
			cb(nil, err)
			return
		}

		host, port := endpoint(o.WeatherHost)
		d := retrieve.Descriptor{
			Host:    host,
			Port:    port,
			Path:    "/api/" + url.PathEscape(creds.APIKey) + feature + "/q/" + loc + ".json",
			Timeout: o.Timeout,
		}

		retrieve.Retrieve(ctx, o.Plain, d, func(status int, body string, err error) {
			if err != nil {
				cb(nil, err)
				return
			}
			cb(WeatherReport{Kind: kind, StatusCode: status, Body: body}, nil)
		})
	}
}

// Location turns free-form input into a Weather Underground query path.
// A single token is used as is. With several tokens the last one is the
// country and the rest form the place name: "New York US" is "US/New_York".
func Location(input string) (string, error) {
	fields := strings.Fields(input)
	switch len(fields) {
	case 0:
		return "", fmt.Errorf("%w: %q", ErrInvalidLocation, input)
	case 1:
		return escapeSegments(fields[0]), nil
	}

	country := fields[len(fields)-1]
	place := strings.Join(fields[:len(fields)-1], "_")
	return url.PathEscape(country) + "/" + escapeSegments(place), nil
}

// escapeSegments path-escapes s while keeping its slashes.
func escapeSegments(s string) string {
	parts := strings.Split(s, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
