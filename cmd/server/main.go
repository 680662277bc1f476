// Command server runs the apiclient gateway.
//
// It serves the JSON call API under /v1/calls, the MCP tools at /mcp,
// Prometheus metrics at /metrics and a health check at /healthz.
//
// Configuration is read from a YAML file (--config, APICLIENT_CONFIG,
// ./config.yaml or /etc/apiclient/config.yaml), a .env file and APICLIENT_*
// environment variables. See pkg/config for the full list.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/rhuss/apiclient/pkg/adapters"
	"github.com/rhuss/apiclient/pkg/apicall"
	"github.com/rhuss/apiclient/pkg/config"
	"github.com/rhuss/apiclient/pkg/debug"
	"github.com/rhuss/apiclient/pkg/gateway"
	"github.com/rhuss/apiclient/pkg/observability"
)

// version is set at build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", "", "path to the YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	debug.Init(cfg.Logging.Debug, cfg.Logging.Level, cfg.Logging.Format)

	table, err := serverAdapters(cfg)
	if err != nil {
		return err
	}
	d := apicall.NewDispatcher(
		apicall.NewTable(table),
		apicall.DefaultMiddleware(slog.Default())...,
	)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      newHandler(cfg, d),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting",
			"port", cfg.Server.Port,
			"version", version,
			"calls", d.Names(),
			"mcp", cfg.MCP.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		// Calls started by handlers that already returned may still be
		// waiting on a provider.
		d.Wait()
		return nil
	})

	return g.Wait()
}

// serverAdapters returns the call table served by the gateway. A socket
// server outage is reported to the caller instead of stopping the process,
// and socketlookup is only served for configured hosts.
func serverAdapters(cfg *config.Config) (map[string]apicall.Adapter, error) {
	opts, err := cfg.AdapterOptions()
	if err != nil {
		return nil, err
	}
	opts.Exit = func(code int) {
		slog.Warn("socket config unavailable, keeping gateway up", "exit_code", code)
	}

	table := adapters.Builtins(opts)
	if len(opts.SocketHosts) == 0 {
		delete(table, adapters.SocketLookup)
		slog.Info("socketlookup disabled, no calls.socketlookup.allowed_hosts configured")
	}
	return table, nil
}

// newHandler assembles the routes enabled by cfg.
func newHandler(cfg *config.Config, d *apicall.Dispatcher) http.Handler {
	gcfg := gateway.Config{
		// Leave room for the adapter's own timeout to fire first.
		Timeout:     cfg.Calls.Timeout + 5*time.Second,
		Credentials: cfg.Credentials(),
	}

	auth := cfg.GatewayAuth()

	mux := http.NewServeMux()
	mux.Handle("/v1/", gateway.RequireAuth(auth, gateway.NewServer(d, gcfg).Handler()))
	if cfg.MCP.Enabled {
		mcpHandler := gateway.MCPHandler(gateway.NewMCPServer(d, gcfg, version))
		mux.Handle(cfg.MCP.Path, gateway.RequireAuth(auth, mcpHandler))
	}
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, observability.Handler())
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return observability.MetricsMiddleware(mux)
}
