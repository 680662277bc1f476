// Package debug configures process logging and category-gated debug output
// for apiclient.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): APICLIENT_DEBUG env or config
//   - Levels (HOW MUCH detail): APICLIENT_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log(debug.Retrieve, "request", "url", u)
//	if debug.Enabled(debug.Adapters) { /* expensive formatting */ }
//
// Categories: retrieve, adapters, dispatch, gateway, mcp, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Debug categories.
const (
	Retrieve = "retrieve"
	Adapters = "adapters"
	Dispatch = "dispatch"
	Gateway  = "gateway"
	MCP      = "mcp"
	Config   = "config"
)

// LevelTrace is below slog.LevelDebug. At TRACE, raw response bodies are logged.
const LevelTrace = slog.LevelDebug - 4

// categories is read-only after Init.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("APICLIENT_DEBUG"))
}

// Init installs the default slog logger and the enabled categories.
// Environment variables override the config values.
func Init(configCategories, configLevel, format string) {
	cats := os.Getenv("APICLIENT_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("APICLIENT_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}
	slog.SetDefault(NewLogger(os.Stderr, ParseLevel(level), format))
}

// NewLogger builds a logger writing text (default) or JSON records to w.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug record tagged with category. No-op when disabled.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a trace-level record for the given category.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceIsEnabled reports whether TRACE output is active for the category.
func TraceIsEnabled(category string) bool {
	if !Enabled(category) {
		return false
	}
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// ParseLevel converts a level string to a slog.Level. Unknown values map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
