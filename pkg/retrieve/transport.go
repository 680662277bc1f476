package retrieve

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"golang.org/x/net/proxy"
)

// Transport opens one request for a Descriptor and returns the response
// with its body unread. The body is the chunk stream; EOF ends it.
type Transport interface {
	// Scheme is "http" or "https".
	Scheme() string

	// DefaultPort is used when a Descriptor carries no port.
	DefaultPort() int

	// Do sends the request. Implementations must honor ctx cancellation.
	Do(ctx context.Context, d Descriptor) (*http.Response, error)
}

// HTTPTransport implements Transport on top of net/http.
type HTTPTransport struct {
	scheme      string
	defaultPort int
	client      *http.Client
	userAgent   string
}

// Compile-time check that HTTPTransport implements Transport.
var _ Transport = (*HTTPTransport)(nil)

// Option configures an HTTPTransport.
type Option func(*options)

type options struct {
	client    *http.Client
	tlsConfig *tls.Config
	proxyURL  string
	userAgent string
}

// WithClient uses c as is. TLS and proxy options are ignored when set.
func WithClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithTLSConfig sets the TLS client configuration.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithProxy routes requests through rawURL. Supported schemes are
// socks5, socks5h, http and https. An empty URL disables the option.
func WithProxy(rawURL string) Option {
	return func(o *options) { o.proxyURL = rawURL }
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// Plain returns the plaintext HTTP transport (default port 80).
func Plain(opts ...Option) (*HTTPTransport, error) {
	return newHTTPTransport("http", 80, opts)
}

// TLS returns the TLS-wrapped HTTP transport (default port 443).
func TLS(opts ...Option) (*HTTPTransport, error) {
	return newHTTPTransport("https", 443, opts)
}

func newHTTPTransport(scheme string, defaultPort int, opts []Option) (*HTTPTransport, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	t := &HTTPTransport{
		scheme:      scheme,
		defaultPort: defaultPort,
		userAgent:   o.userAgent,
		client:      o.client,
	}
	if t.client != nil {
		return t, nil
	}

	base := http.DefaultTransport.(*http.Transport).Clone()
	if o.tlsConfig != nil {
		base.TLSClientConfig = o.tlsConfig
	}
	if o.proxyURL != "" {
		if err := applyProxy(base, o.proxyURL); err != nil {
			return nil, fmt.Errorf("%s transport: %w", scheme, err)
		}
	}
	var rt http.RoundTripper = base
	if o.userAgent != "" {
		rt = userAgentTransport{base: base, userAgent: o.userAgent}
	}
	t.client = &http.Client{Transport: rt}
	return t, nil
}

// Client returns the underlying client. It carries the proxy and user agent
// settings, so provider SDK clients can share them.
func (t *HTTPTransport) Client() *http.Client { return t.client }

// userAgentTransport sets User-Agent on requests that do not carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (u userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", u.userAgent)
	return u.base.RoundTrip(req)
}

// Scheme returns the URL scheme of the transport.
func (t *HTTPTransport) Scheme() string { return t.scheme }

// DefaultPort returns the port used when a Descriptor has none.
func (t *HTTPTransport) DefaultPort() int { return t.defaultPort }

// Do builds the URL from d and sends the request.
func (t *HTTPTransport) Do(ctx context.Context, d Descriptor) (*http.Response, error) {
	target := t.scheme + "://" + d.hostPort(t.defaultPort) + d.Path

	req, err := http.NewRequestWithContext(ctx, d.method(), target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.client.Do(req)
}

// applyProxy installs a SOCKS5 dialer or an HTTP proxy on tr.
func applyProxy(tr *http.Transport, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing proxy url: %w", err)
	}

	switch u.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("creating SOCKS5 dialer: %w", err)
		}
		tr.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			tr.DialContext = cd.DialContext
		} else {
			tr.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	case "http", "https":
		tr.Proxy = http.ProxyURL(u)
	default:
		return fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	return nil
}
