package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. .env file (does not override variables already set)
//  3. YAML config file (explicit path, APICLIENT_CONFIG env, ./config.yaml, /etc/apiclient/config.yaml)
//  4. APICLIENT_* environment variables
//  5. File reference resolution (_file suffix)
//  6. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports the variables of path into the process environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. APICLIENT_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/apiclient/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("APICLIENT_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/apiclient/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps APICLIENT_* environment variables to config fields.
// Malformed numbers and durations are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	str := func(name string, dst *string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v := os.Getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(name string, dst *bool) {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	if v := os.Getenv("APICLIENT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("APICLIENT_PORT: %w", err))
		} else {
			cfg.Server.Port = port
		}
	}

	dur("APICLIENT_TIMEOUT", &cfg.Calls.Timeout)
	dur("APICLIENT_YOUTUBE_TIMEOUT", &cfg.Calls.YouTubeTimeout)
	str("APICLIENT_PROXY_URL", &cfg.Calls.ProxyURL)
	str("APICLIENT_USER_AGENT", &cfg.Calls.UserAgent)

	str("APICLIENT_ANAGRAM_HOST", &cfg.Calls.Anagram.Host)
	str("APICLIENT_WEATHER_HOST", &cfg.Calls.Weather.Host)
	str("APICLIENT_WEATHER_API_KEY", &cfg.Calls.Weather.APIKey)
	str("APICLIENT_YOUTUBE_HOST", &cfg.Calls.YouTube.Host)
	str("APICLIENT_YOUTUBE_API_KEY", &cfg.Calls.YouTube.APIKey)
	str("APICLIENT_WOLFRAM_APP_ID", &cfg.Calls.Wolfram.AppID)
	str("APICLIENT_WOLFRAM_BASE_URL", &cfg.Calls.Wolfram.BaseURL)
	str("APICLIENT_TRANSLATE_CLIENT_ID", &cfg.Calls.Translate.ClientID)
	str("APICLIENT_TRANSLATE_CLIENT_SECRET", &cfg.Calls.Translate.ClientSecret)
	str("APICLIENT_TRANSLATE_TOKEN_URL", &cfg.Calls.Translate.TokenURL)
	str("APICLIENT_TRANSLATE_BASE_URL", &cfg.Calls.Translate.BaseURL)
	if v := os.Getenv("APICLIENT_SOCKETLOOKUP_HOSTS"); v != "" {
		cfg.Calls.SocketLookup.AllowedHosts = splitList(v)
	}

	boolean("APICLIENT_MCP_ENABLED", &cfg.MCP.Enabled)
	boolean("APICLIENT_METRICS_ENABLED", &cfg.Observability.Metrics.Enabled)

	str("APICLIENT_LOG_FORMAT", &cfg.Logging.Format)

	str("APICLIENT_JWT_SECRET", &cfg.Server.JWT.Secret)
	str("APICLIENT_JWT_ISSUER", &cfg.Server.JWT.Issuer)
	str("APICLIENT_JWT_AUDIENCE", &cfg.Server.JWT.Audience)

	// APICLIENT_API_KEYS: JSON array of API key configs.
	if v := os.Getenv("APICLIENT_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("APICLIENT_API_KEYS: %w", err))
		} else {
			cfg.Server.APIKeys = keys
		}
	}

	return errors.Join(errs...)
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKeyConfig, error) {
	var keys []APIKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	refs := []struct {
		name string
		file string
		dst  *string
	}{
		{"calls.weather.api_key_file", cfg.Calls.Weather.APIKeyFile, &cfg.Calls.Weather.APIKey},
		{"calls.youtube.api_key_file", cfg.Calls.YouTube.APIKeyFile, &cfg.Calls.YouTube.APIKey},
		{"calls.wolfram.app_id_file", cfg.Calls.Wolfram.AppIDFile, &cfg.Calls.Wolfram.AppID},
		{"calls.translate.client_secret_file", cfg.Calls.Translate.ClientSecretFile, &cfg.Calls.Translate.ClientSecret},
		{"server.jwt.secret_file", cfg.Server.JWT.SecretFile, &cfg.Server.JWT.Secret},
	}

	for _, ref := range refs {
		if ref.file == "" || *ref.dst != "" {
			continue
		}
		val, err := readSecretFile(ref.file)
		if err != nil {
			return fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.dst = val
	}

	// server.api_keys[*].key_file -> server.api_keys[*].key
	for i := range cfg.Server.APIKeys {
		if cfg.Server.APIKeys[i].KeyFile != "" && cfg.Server.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Server.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("server.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Server.APIKeys[i].Key = val
		}
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
