package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure. Provider
// credentials are optional: a call without them fails at the provider.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be in range.
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}

	for i, k := range c.Server.APIKeys {
		if k.Key == "" {
			errs = append(errs, fmt.Errorf("server.api_keys[%d]: key or key_file is required", i))
		}
	}

	// JWT claim checks are meaningless without a secret.
	if c.Server.JWT.Secret == "" && (c.Server.JWT.Issuer != "" || c.Server.JWT.Audience != "") {
		errs = append(errs, fmt.Errorf("server.jwt.secret or server.jwt.secret_file is required when issuer or audience is set"))
	}

	if c.Calls.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("calls.timeout must be > 0, got %v", c.Calls.Timeout))
	}
	if c.Calls.YouTubeTimeout <= 0 {
		errs = append(errs, fmt.Errorf("calls.youtube_timeout must be > 0, got %v", c.Calls.YouTubeTimeout))
	}

	// calls.proxy_url must use a supported scheme.
	if c.Calls.ProxyURL != "" {
		u, err := url.Parse(c.Calls.ProxyURL)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("calls.proxy_url: %w", err))
		case u.Host == "":
			errs = append(errs, fmt.Errorf("calls.proxy_url %q has no host", c.Calls.ProxyURL))
		default:
			switch u.Scheme {
			case "socks5", "socks5h", "http", "https":
				// valid
			default:
				errs = append(errs, fmt.Errorf("calls.proxy_url scheme must be socks5, socks5h, http or https, got %q", u.Scheme))
			}
		}
	}

	// The translator needs both halves of the client credentials.
	if (c.Calls.Translate.ClientID == "") != (c.Calls.Translate.ClientSecret == "") {
		errs = append(errs, fmt.Errorf("calls.translate.client_id and calls.translate.client_secret must be set together"))
	}

	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		errs = append(errs, fmt.Errorf("mcp.path must start with /, got %q", c.MCP.Path))
	}
	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("observability.metrics.path must start with /, got %q", c.Observability.Metrics.Path))
	}

	switch c.Logging.Format {
	case "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}
