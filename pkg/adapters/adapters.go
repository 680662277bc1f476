// Package adapters implements the built-in provider adapters.
//
// Each adapter builds a request descriptor from its input and credentials,
// runs it through the retrieval primitive (wolfram and translate use
// dedicated clients instead) and turns the raw body into a provider-specific
// result. Failures are reported through the callback; the socketlookup
// adapter additionally treats an unreachable socket config as fatal.
package adapters

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/mstranslator"
	"github.com/rhuss/apiclient/pkg/retrieve"
	"github.com/rhuss/apiclient/pkg/wolfram"
)

// Call names served by Builtins.
const (
	Anagram       = "anagram"
	Weather       = "weather"
	Forecast      = "forecast"
	SocketLookup  = "socketlookup"
	YouTubeLookup = "youtubelookup"
	Wolfram       = "wolfram"
	Translate     = "translate"
)

// Default provider hosts.
const (
	DefaultAnagramHost = "anagramgenius.com"
	DefaultWeatherHost = "api.wunderground.com"
	DefaultYouTubeHost = "www.googleapis.com"
)

var (
	// ErrNoMatch is reported when a response lacks the expected pattern.
	ErrNoMatch = errors.New("no match in response")

	// ErrInvalidLocation is reported for blank weather and forecast input.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidInput is reported for malformed translate input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrHostNotAllowed is reported for socketlookup hosts outside
	// Options.SocketHosts.
	ErrHostNotAllowed = errors.New("host not allowed")

	// ErrSocketUnavailable is reported when the socket config could not be
	// read and the exit hook returned.
	ErrSocketUnavailable = errors.New("socket config unavailable")
)

// WolframClient answers knowledge queries.
type WolframClient interface {
	Query(ctx context.Context, input string) ([]wolfram.Pod, error)
}

// Translator performs the two-step token and translate exchange.
type Translator interface {
	Token(ctx context.Context) (string, error)
	Translate(ctx context.Context, token string, q mstranslator.Query) (string, error)
}

// Options configures the built-in adapters. Zero values select defaults.
type Options struct {
	// Plain and TLS are the transports for http and https providers.
	Plain retrieve.Transport
	TLS   retrieve.Transport

	// Hosts may carry a port ("127.0.0.1:8080").
	AnagramHost string
	WeatherHost string
	YouTubeHost string

	// SocketHosts restricts socketlookup to these inputs when non-empty.
	SocketHosts []string

	// Timeout bounds each request. YouTubeTimeout applies to youtubelookup.
	Timeout        time.Duration
	YouTubeTimeout time.Duration

	// NewWolfram builds a client for an app id.
	NewWolfram func(appID string) WolframClient

	// NewTranslator builds a client for client credentials.
	NewTranslator func(creds apicall.Credentials) Translator

	// Exit terminates the process. Defaults to os.Exit. A hook that returns
	// makes socketlookup failures non-fatal.
	Exit func(code int)
}

// withDefaults fills unset fields. Transport construction errors cannot
// happen without options, so they are ignored here.
func (o Options) withDefaults() Options {
	if o.Plain == nil {
		o.Plain, _ = retrieve.Plain()
	}
	if o.TLS == nil {
		o.TLS, _ = retrieve.TLS()
	}
	if o.AnagramHost == "" {
		o.AnagramHost = DefaultAnagramHost
	}
	if o.WeatherHost == "" {
		o.WeatherHost = DefaultWeatherHost
	}
	if o.YouTubeHost == "" {
		o.YouTubeHost = DefaultYouTubeHost
	}
	if o.Timeout == 0 {
		o.Timeout = 20 * time.Second
	}
	if o.YouTubeTimeout == 0 {
		o.YouTubeTimeout = 10 * time.Second
	}
	if o.NewWolfram == nil {
		timeout := o.Timeout
		o.NewWolfram = func(appID string) WolframClient {
			return wolfram.NewClient(appID, "", timeout)
		}
	}
	if o.NewTranslator == nil {
		timeout := o.Timeout
		o.NewTranslator = func(creds apicall.Credentials) Translator {
			return mstranslator.NewClient(mstranslator.Config{
				ClientID:     creds.ClientID,
				ClientSecret: creds.ClientSecret,
				Timeout:      timeout,
			})
		}
	}
	if o.Exit == nil {
		o.Exit = os.Exit
	}
	return o
}

// Builtins returns the full adapter set keyed by call name.
func Builtins(opts Options) map[string]apicall.Adapter {
	o := opts.withDefaults()
	return map[string]apicall.Adapter{
		Anagram:       o.anagram,
		Weather:       o.weather(Weather, "/conditions"),
		Forecast:      o.weather(Forecast, "/conditions/forecast"),
		SocketLookup:  o.socketLookup,
		YouTubeLookup: o.youtubeLookup,
		Wolfram:       o.wolframQuery,
		Translate:     o.translate,
	}
}

// endpoint splits an optional port off host.
func endpoint(host string) (string, int) {
	h, p, err := net.SplitHostPort(host)
	if err != nil {
		return host, 0
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return host, 0
	}
	return h, port
}
