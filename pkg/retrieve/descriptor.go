package retrieve

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusIsolated is the status reported when an exchange fails before a
// response could be delivered.
const StatusIsolated = http.StatusServiceUnavailable

var (
	// ErrInvalidDescriptor is returned for descriptors missing a host or path.
	ErrInvalidDescriptor = errors.New("invalid request descriptor")

	// ErrPanic wraps a value recovered from a panic during an exchange.
	ErrPanic = errors.New("panic during exchange")
)

// Descriptor addresses one outbound call.
type Descriptor struct {
	// Host is the target host name or IP, without scheme or port.
	Host string

	// Path is the request path including any query string, e.g.
	// "/sioconfig" or "/server.php?source_text=a&vulgar=1".
	Path string

	// Port overrides the transport default when non-zero.
	Port int

	// Method defaults to GET.
	Method string

	// Timeout bounds the whole exchange when positive.
	Timeout time.Duration
}

// Validate checks the addressing invariants.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Host) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidDescriptor)
	}
	if d.Path == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidDescriptor)
	}
	if !strings.HasPrefix(d.Path, "/") {
		return fmt.Errorf("%w: path %q must start with /", ErrInvalidDescriptor, d.Path)
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidDescriptor, d.Port)
	}
	return nil
}

// method returns the effective HTTP method.
func (d Descriptor) method() string {
	if d.Method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(d.Method)
}

// hostPort returns the URL authority. The port is omitted when it matches
// the transport default so the Host header stays bare.
func (d Descriptor) hostPort(defaultPort int) string {
	if d.Port == 0 || d.Port == defaultPort {
		return d.Host
	}
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// String renders host and path, the form used in failure logs.
func (d Descriptor) String() string {
	return d.Host + d.Path
}
