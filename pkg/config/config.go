// Package config provides unified configuration for the apiclient server
// and CLI.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. .env file in the working directory (variables already set win)
//  3. YAML config file (discovered or explicitly specified)
//  4. Environment variable overrides (APICLIENT_ prefix)
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import (
	"time"

	"github.com/rhuss/apiclient/pkg/adapters"
	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/gateway"
)

// Config holds all configuration for apiclient.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Calls         CallsConfig         `yaml:"calls"`
	MCP           MCPConfig           `yaml:"mcp"`
	Observability ObservabilityConfig `yaml:"observability"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 60s

	// APIKeys and JWT protect /v1 and /mcp when either is set.
	APIKeys []APIKeyConfig `yaml:"api_keys"`
	JWT     JWTConfig      `yaml:"jwt"`
}

// JWTConfig enables HMAC-signed JWT bearer tokens.
type JWTConfig struct {
	Secret       string `yaml:"secret"`
	SecretFile   string `yaml:"secret_file"` // _file variant for secret
	Issuer       string `yaml:"issuer"`
	Audience     string `yaml:"audience"`
	SubjectClaim string `yaml:"subject_claim"` // default: "sub"
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key" json:"key"`
	KeyFile string `yaml:"key_file" json:"key_file"` // _file variant for key
	Subject string `yaml:"subject" json:"subject"`
}

// CallsConfig holds per-provider settings and the shared transport knobs.
type CallsConfig struct {
	Timeout        time.Duration `yaml:"timeout"`         // default: 20s
	YouTubeTimeout time.Duration `yaml:"youtube_timeout"` // default: 10s
	ProxyURL       string        `yaml:"proxy_url"`       // socks5://, http:// or https://
	UserAgent      string        `yaml:"user_agent"`      // default: "apiclient"

	Anagram      HostConfig         `yaml:"anagram"`
	Weather      KeyedConfig        `yaml:"weather"`
	YouTube      KeyedConfig        `yaml:"youtube"`
	Wolfram      WolframConfig      `yaml:"wolfram"`
	Translate    TranslateConfig    `yaml:"translate"`
	SocketLookup SocketLookupConfig `yaml:"socketlookup"`
}

// SocketLookupConfig limits which hosts socketlookup may fetch. The server
// gateway leaves socketlookup out when the list is empty.
type SocketLookupConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts"`
}

// HostConfig overrides a provider host.
type HostConfig struct {
	Host string `yaml:"host"`
}

// KeyedConfig is a provider reached with a single API key.
type KeyedConfig struct {
	Host       string `yaml:"host"`
	APIKey     string `yaml:"api_key"`
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
}

// WolframConfig holds WolframAlpha settings.
type WolframConfig struct {
	AppID     string `yaml:"app_id"`
	AppIDFile string `yaml:"app_id_file"` // _file variant for app_id
	BaseURL   string `yaml:"base_url"`
}

// TranslateConfig holds Microsoft Translator client credentials.
type TranslateConfig struct {
	ClientID         string `yaml:"client_id"`
	ClientSecret     string `yaml:"client_secret"`
	ClientSecretFile string `yaml:"client_secret_file"` // _file variant for client_secret
	TokenURL         string `yaml:"token_url"`
	BaseURL          string `yaml:"base_url"`
	Scope            string `yaml:"scope"`
}

// MCPConfig holds settings for the MCP tool surface.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/mcp"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // DEBUG, INFO, WARN, ERROR, TRACE; default: INFO
	Format string `yaml:"format"` // "text" or "json", default: "text"
	Debug  string `yaml:"debug"`  // comma-separated debug categories
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Calls: CallsConfig{
			Timeout:        20 * time.Second,
			YouTubeTimeout: 10 * time.Second,
			UserAgent:      "apiclient",
		},
		MCP: MCPConfig{
			Enabled: true,
			Path:    "/mcp",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// Credentials returns the credentials handed to each call's adapter.
// Calls that need no secrets are absent.
func (c *Config) Credentials() map[string]apicall.Credentials {
	weather := apicall.Credentials{APIKey: c.Calls.Weather.APIKey}
	return map[string]apicall.Credentials{
		adapters.Weather:       weather,
		adapters.Forecast:      weather,
		adapters.YouTubeLookup: {APIKey: c.Calls.YouTube.APIKey},
		adapters.Wolfram:       {APIKey: c.Calls.Wolfram.AppID},
		adapters.Translate: {
			ClientID:     c.Calls.Translate.ClientID,
			ClientSecret: c.Calls.Translate.ClientSecret,
		},
	}
}

// GatewayAuth returns the credentials the gateway accepts.
func (c *Config) GatewayAuth() gateway.AuthConfig {
	var auth gateway.AuthConfig
	for _, k := range c.Server.APIKeys {
		auth.APIKeys = append(auth.APIKeys, gateway.APIKey{Key: k.Key, Subject: k.Subject})
	}
	if jwt := c.Server.JWT; jwt.Secret != "" {
		auth.JWT = &gateway.JWTConfig{
			Secret:       []byte(jwt.Secret),
			Issuer:       jwt.Issuer,
			Audience:     jwt.Audience,
			SubjectClaim: jwt.SubjectClaim,
		}
	}
	return auth
}
