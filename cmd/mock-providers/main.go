// Command mock-providers runs deterministic stand-ins for the anagram,
// weather, socket config, YouTube, WolframAlpha and translator services
// for local development.
//
// Configuration:
//
//	MOCK_PORT     - Listen port (default: 9090)
//	MOCK_TLS_CERT - Certificate file; with MOCK_TLS_KEY serves HTTPS
//	MOCK_TLS_KEY  - Private key file
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rhuss/apiclient/pkg/providermock"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}
	cert, key := os.Getenv("MOCK_TLS_CERT"), os.Getenv("MOCK_TLS_KEY")

	srv := &http.Server{Addr: ":" + port, Handler: providermock.Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock providers starting", "port", port, "tls", cert != "")
		var err error
		if cert != "" && key != "" {
			err = srv.ListenAndServeTLS(cert, key)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock providers failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock providers shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
